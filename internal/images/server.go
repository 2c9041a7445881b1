package images

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxUploadBytes = 10 << 20

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Server is the image-storage service: it accepts multipart uploads
// authenticated by a shared API key and serves the stored files.
type Server struct {
	dir     string
	apiKey  string
	baseURL string
	log     *logrus.Logger
}

func NewServer(dir, apiKey, baseURL string, log *logrus.Logger) (*Server, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Server{
		dir:     dir,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}, nil
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/files/{category}/{name}", s.handleServe).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	return r
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-API-KEY") != s.apiKey {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
		return
	}
	category := sanitizeCategory(r.Header.Get("Image-Category"))
	if category == "" {
		http.Error(w, "Image-Category header is required", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file form field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		http.Error(w, "unsupported file extension", http.StatusBadRequest)
		return
	}

	name := uuid.NewString() + ext
	dir := filepath.Join(s.dir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.WithError(err).Error("create category directory")
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		s.log.WithError(err).Error("create file")
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		s.log.WithError(err).Error("write file")
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	s.log.WithFields(logrus.Fields{
		"category": category,
		"filename": name,
		"size":     header.Size,
	}).Info("image stored")

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(UploadResult{
		Filename: name,
		FileURL:  fmt.Sprintf("%s/files/%s/%s", s.baseURL, category, name),
		Category: category,
	})
}

func (s *Server) handleServe(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	category := sanitizeCategory(vars["category"])
	name := filepath.Base(vars["name"])
	if category == "" || name == "." || name == "/" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.dir, category, name))
}

// CleanupOlderThan removes stored files whose modification time is
// older than the retention window. Failures are logged per file and do
// not stop the sweep.
func (s *Server) CleanupOlderThan(retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	removed := 0
	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			s.log.WithError(err).WithField("path", path).Warn("cleanup: walk")
			return nil
		}
		if info.IsDir() || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			s.log.WithError(err).WithField("path", path).Warn("cleanup: remove")
			return nil
		}
		removed++
		return nil
	})
	return removed, err
}

func sanitizeCategory(category string) string {
	category = strings.TrimSpace(strings.ToLower(category))
	for _, r := range category {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return ""
		}
	}
	return category
}
