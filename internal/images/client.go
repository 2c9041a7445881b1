package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Image categories recognised by the storage service.
const (
	CategoryProfile   = "profile"
	CategoryBookCover = "book_cover"
)

// ErrUploadRejected indicates the storage service refused the file.
var ErrUploadRejected = errors.New("upload rejected")

// UploadResult mirrors the storage service's upload response.
type UploadResult struct {
	Filename string `json:"filename"`
	FileURL  string `json:"file_url"`
	Category string `json:"category"`
}

// Client talks to the image-storage service over HTTP with a shared
// API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload streams the file to the storage service and returns the
// stored file's public URL.
func (c *Client) Upload(ctx context.Context, category, filename string, file io.Reader) (UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadResult{}, err
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Image-Category", category)

	resp, err := c.http.Do(req)
	if err != nil {
		return UploadResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return UploadResult{}, fmt.Errorf("%w: status %d: %s", ErrUploadRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UploadResult{}, fmt.Errorf("decode upload response: %w", err)
	}
	if result.FileURL == "" {
		return UploadResult{}, fmt.Errorf("%w: empty file_url", ErrUploadRejected)
	}
	return result, nil
}
