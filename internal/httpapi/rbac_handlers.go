package httpapi

import (
	"net/http"
	"strings"

	"biblioteca.dev/internal/audit"
	"biblioteca.dev/internal/rbac"
)

type groupRequest struct {
	Nome string `json:"nome"`
}

type permissionRequest struct {
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
	Namespace string `json:"namespace"`
}

func (a *API) listGroups(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(r, "policy_group.read"); !ok {
		permissionDenied(w, r)
		return
	}
	groups, err := a.opts.RBAC.Groups(r.Context())
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	if groups == nil {
		groups = []rbac.PolicyGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (a *API) createGroup(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(r, "policy_group.create"); !ok {
		permissionDenied(w, r)
		return
	}
	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	g, err := a.opts.RBAC.CreateGroup(r.Context(), req.Nome)
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (a *API) getGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.require(r, "policy_group.read"); !ok {
		permissionDenied(w, r)
		return
	}
	g, err := a.opts.RBAC.Group(r.Context(), id)
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (a *API) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.require(r, "policy_group.update"); !ok {
		permissionDenied(w, r)
		return
	}
	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	g, err := a.opts.RBAC.UpdateGroup(r.Context(), id, req.Nome)
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (a *API) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.require(r, "policy_group.delete"); !ok {
		permissionDenied(w, r)
		return
	}
	if err := a.opts.RBAC.DeleteGroup(r.Context(), id); err != nil {
		handleRBACError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listPermissions(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(r, "admin.read"); !ok {
		permissionDenied(w, r)
		return
	}
	perms, err := a.opts.RBAC.Permissions(r.Context())
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	if perms == nil {
		perms = []rbac.Permissao{}
	}
	writeJSON(w, http.StatusOK, perms)
}

func (a *API) createPermission(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(r, "admin.create"); !ok {
		permissionDenied(w, r)
		return
	}
	var req permissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.opts.RBAC.CreatePermission(r.Context(), rbac.Permissao{
		Nome:      req.Nome,
		Descricao: req.Descricao,
		Namespace: req.Namespace,
	})
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) getPermission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.require(r, "admin.read"); !ok {
		permissionDenied(w, r)
		return
	}
	p, err := a.opts.RBAC.Permission(r.Context(), id)
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) updatePermission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.require(r, "admin.update"); !ok {
		permissionDenied(w, r)
		return
	}
	var req permissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.opts.RBAC.UpdatePermission(r.Context(), id, rbac.Permissao{
		Nome:      req.Nome,
		Descricao: req.Descricao,
		Namespace: req.Namespace,
	})
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deletePermission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.require(r, "admin.delete"); !ok {
		permissionDenied(w, r)
		return
	}
	if err := a.opts.RBAC.DeletePermission(r.Context(), id); err != nil {
		handleRBACError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listAssociations(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(r, "admin.read"); !ok {
		permissionDenied(w, r)
		return
	}
	assocs, err := a.opts.RBAC.Associations(r.Context())
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	if assocs == nil {
		assocs = []rbac.Associacao{}
	}
	writeJSON(w, http.StatusOK, assocs)
}

func (a *API) createAssociation(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(r, "admin.create"); !ok {
		permissionDenied(w, r)
		return
	}
	var req rbac.Associacao
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	assoc, err := a.opts.RBAC.Associate(r.Context(), req)
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "rbac.association.create", map[string]any{
		"grupo_politica_nome": assoc.GrupoPoliticaNome,
		"permissao_namespace": assoc.PermissaoNamespace,
	})
	writeJSON(w, http.StatusCreated, assoc)
}

// deleteAssociation identifies the pair by query parameters since the
// relation has a composite natural key.
func (a *API) deleteAssociation(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(r, "admin.delete"); !ok {
		permissionDenied(w, r)
		return
	}
	q := r.URL.Query()
	assoc := rbac.Associacao{
		GrupoPoliticaNome:  strings.TrimSpace(q.Get("grupo_politica_nome")),
		PermissaoNamespace: strings.TrimSpace(q.Get("permissao_namespace")),
	}
	if err := a.opts.RBAC.Dissociate(r.Context(), assoc); err != nil {
		handleRBACError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "rbac.association.delete", map[string]any{
		"grupo_politica_nome": assoc.GrupoPoliticaNome,
		"permissao_namespace": assoc.PermissaoNamespace,
	})
	w.WriteHeader(http.StatusNoContent)
}
