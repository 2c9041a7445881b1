package httpapi

import (
	"net/http"

	"biblioteca.dev/internal/audit"
	"biblioteca.dev/internal/auth"
	"biblioteca.dev/internal/library"
)

type loanStatusRequest struct {
	Status string `json:"status"`
}

func (a *API) createLoan(w http.ResponseWriter, r *http.Request) {
	identity, ok := a.require(r, "loan.create")
	if !ok {
		permissionDenied(w, r)
		return
	}
	var req library.NewLoan
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// Non-admin callers borrow for themselves.
	if req.UsuarioID == 0 || !identity.Can("admin.create") {
		req.UsuarioID = identity.UserID
	}
	l, err := a.opts.Loans.Create(r.Context(), req)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "loan.create", map[string]any{
		"emprestimo_id": l.ID,
		"livro_id":      l.LivroID,
	})
	writeJSON(w, http.StatusCreated, l)
}

// listLoans returns the caller's own loans. Admins see everything.
func (a *API) listLoans(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		permissionDenied(w, r)
		return
	}
	if identity.Can("admin.read") {
		loans, err := a.opts.Loans.List(r.Context())
		if err != nil {
			handleLibraryError(w, r, err)
			return
		}
		if loans == nil {
			loans = []library.Emprestimo{}
		}
		writeJSON(w, http.StatusOK, loans)
		return
	}
	if !identity.Can("loan.read_by_client") {
		permissionDenied(w, r)
		return
	}
	loans, err := a.opts.Loans.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	if loans == nil {
		loans = []library.Emprestimo{}
	}
	writeJSON(w, http.StatusOK, loans)
}

func (a *API) getLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	l, err := a.opts.Loans.Get(r.Context(), id)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	if _, ok := a.requireOrSelf(r, "admin.read", l.UsuarioID); !ok {
		permissionDenied(w, r)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// updateLoan drives the loan lifecycle: Renovado renews, Devolvido
// returns.
func (a *API) updateLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.require(r, "loan.renew"); !ok {
		permissionDenied(w, r)
		return
	}
	var req loanStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	l, err := a.opts.Loans.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "loan.status", map[string]any{
		"emprestimo_id": l.ID,
		"status":        l.Status,
	})
	writeJSON(w, http.StatusOK, l)
}

func (a *API) deleteLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := a.require(r, "loan.renew"); !ok {
		permissionDenied(w, r)
		return
	}
	if err := a.opts.Loans.Delete(r.Context(), id); err != nil {
		handleLibraryError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
