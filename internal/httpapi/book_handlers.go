package httpapi

import (
	"net/http"
	"strconv"

	"biblioteca.dev/internal/library"
)

func (a *API) listBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := library.BookFilter{
		Titulo: q.Get("titulo"),
		Autor:  q.Get("autor"),
		Genero: q.Get("genero"),
	}
	var err error
	if filter.Skip, err = queryInt(q.Get("skip"), 0); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "skip must be a non-negative integer")
		return
	}
	if filter.Limit, err = queryInt(q.Get("limit"), 100); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "limit must be a non-negative integer")
		return
	}
	books, err := a.opts.Books.List(r.Context(), filter)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	if books == nil {
		books = []library.Livro{}
	}
	writeJSON(w, http.StatusOK, books)
}

func (a *API) getBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b, err := a.opts.Books.Get(r.Context(), id)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) createBook(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(r, "book.create"); !ok {
		permissionDenied(w, r)
		return
	}
	var req library.NewBook
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	b, err := a.opts.Books.Create(r.Context(), req)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) updateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.require(r, "book.update"); !ok {
		permissionDenied(w, r)
		return
	}
	var req library.NewBook
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	b, err := a.opts.Books.Update(r.Context(), id, req)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.require(r, "book.delete"); !ok {
		permissionDenied(w, r)
		return
	}
	if err := a.opts.Books.Delete(r.Context(), id); err != nil {
		handleLibraryError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
