package httpapi

import (
	"net/http"
	"strconv"

	"biblioteca.dev/internal/images"
)

const maxImageBytes = 10 << 20

// uploadProfilePicture proxies the file to the image-storage service
// and persists the returned URL on the user record.
func (a *API) uploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.requireOrSelf(r, "admin.update", userID); !ok {
		permissionDenied(w, r)
		return
	}
	if a.opts.Images == nil {
		writeError(w, r, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file form field is required")
		return
	}
	defer file.Close()

	result, err := a.opts.Images.Upload(r.Context(), images.CategoryProfile, header.Filename, file)
	if err != nil {
		a.log.WithError(err).Error("profile image upload")
		writeError(w, r, http.StatusBadGateway, "image upload failed")
		return
	}
	if err := a.opts.Users.SetProfilePicture(r.Context(), userID, result.FileURL); err != nil {
		handleLibraryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// uploadBookCover stores a cover image and persists its URL on the
// book identified by the book_id form field.
func (a *API) uploadBookCover(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(r, "book.create"); !ok {
		permissionDenied(w, r)
		return
	}
	if a.opts.Images == nil {
		writeError(w, r, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	bookID, err := strconv.ParseInt(r.FormValue("book_id"), 10, 64)
	if err != nil || bookID <= 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "book_id must be a positive integer")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file form field is required")
		return
	}
	defer file.Close()

	// Reject uploads for unknown books before touching storage.
	if _, err := a.opts.Books.Get(r.Context(), bookID); err != nil {
		handleLibraryError(w, r, err)
		return
	}

	result, err := a.opts.Images.Upload(r.Context(), images.CategoryBookCover, header.Filename, file)
	if err != nil {
		a.log.WithError(err).Error("book cover upload")
		writeError(w, r, http.StatusBadGateway, "image upload failed")
		return
	}
	if err := a.opts.Books.SetCover(r.Context(), bookID, result.FileURL); err != nil {
		handleLibraryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
