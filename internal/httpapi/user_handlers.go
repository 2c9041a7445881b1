package httpapi

import (
	"net/http"

	"biblioteca.dev/internal/auth"
	"biblioteca.dev/internal/library"
)

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(r, "admin.read"); !ok {
		permissionDenied(w, r)
		return
	}
	users, err := a.opts.Users.List(r.Context())
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	if users == nil {
		users = []library.Usuario{}
	}
	writeJSON(w, http.StatusOK, users)
}

// createUser is the privileged variant of registration: the caller may
// assign any policy group.
func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(r, "admin.create"); !ok {
		permissionDenied(w, r)
		return
	}
	var req library.NewUser
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	u, err := a.opts.Users.Create(r.Context(), req)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.requireOrSelf(r, "admin.read", id); !ok {
		permissionDenied(w, r)
		return
	}
	u, err := a.opts.Users.Get(r.Context(), id)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		permissionDenied(w, r)
		return
	}
	isAdmin := identity.Can("admin.update")
	isSelf := identity.Can("client.update_self") && identity.UserID == id
	if !isAdmin && !isSelf {
		permissionDenied(w, r)
		return
	}
	var req library.NewUser
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// Self-service edits cannot change the policy group.
	if !isAdmin {
		req.GrupoPolitica = ""
	}
	u, err := a.opts.Users.Update(r.Context(), id, req)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.require(r, "admin.delete"); !ok {
		permissionDenied(w, r)
		return
	}
	if err := a.opts.Users.Delete(r.Context(), id); err != nil {
		handleLibraryError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
