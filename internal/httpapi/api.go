package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"biblioteca.dev/internal/auth"
	"biblioteca.dev/internal/images"
	"biblioteca.dev/internal/library"
	"biblioteca.dev/internal/obs"
	"biblioteca.dev/internal/rbac"
)

// ReadyProbe reports backend readiness (DB ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options carries the API's collaborators and tuning knobs.
type Options struct {
	Auth   *auth.Service
	Issuer *auth.Issuer
	Users  *library.UserService
	Books  *library.BookService
	Loans  *library.LoanService
	RBAC   *rbac.Service
	Images *images.Client

	ReadyProbe ReadyProbe
	Version    string
	Log        *logrus.Logger

	RateBurst    int
	RatePerSec   int
	MaxBodyBytes int64
}

// API is the HTTP layer.
type API struct {
	router *mux.Router
	opts   Options
	log    *logrus.Logger
}

func New(opts Options) *API {
	if opts.Log == nil {
		opts.Log = obs.Logger()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}
	a := &API{
		router: mux.NewRouter(),
		opts:   opts,
		log:    opts.Log,
	}
	a.routes()
	return a
}

func (a *API) routes() {
	r := a.router

	r.HandleFunc("/healthz", a.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", a.readyz).Methods(http.MethodGet)
	r.Handle("/metrics", obs.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/auth", a.register).Methods(http.MethodPost)
	r.HandleFunc("/auth/token", a.login).Methods(http.MethodPost)

	r.HandleFunc("/usuarios", a.listUsers).Methods(http.MethodGet)
	r.HandleFunc("/usuarios", a.createUser).Methods(http.MethodPost)
	r.HandleFunc("/usuarios/{id}", a.getUser).Methods(http.MethodGet)
	r.HandleFunc("/usuarios/{id}", a.updateUser).Methods(http.MethodPut)
	r.HandleFunc("/usuarios/{id}", a.deleteUser).Methods(http.MethodDelete)

	r.HandleFunc("/livros", a.listBooks).Methods(http.MethodGet)
	r.HandleFunc("/livros", a.createBook).Methods(http.MethodPost)
	r.HandleFunc("/livros/{id}", a.getBook).Methods(http.MethodGet)
	r.HandleFunc("/livros/{id}", a.updateBook).Methods(http.MethodPut)
	r.HandleFunc("/livros/{id}", a.deleteBook).Methods(http.MethodDelete)

	r.HandleFunc("/emprestimos", a.createLoan).Methods(http.MethodPost)
	r.HandleFunc("/emprestimos", a.listLoans).Methods(http.MethodGet)
	r.HandleFunc("/emprestimos/{id}", a.getLoan).Methods(http.MethodGet)
	r.HandleFunc("/emprestimos/{id}", a.updateLoan).Methods(http.MethodPut)
	r.HandleFunc("/emprestimos/{id}", a.deleteLoan).Methods(http.MethodDelete)

	r.HandleFunc("/permissoes", a.listPermissions).Methods(http.MethodGet)
	r.HandleFunc("/permissoes", a.createPermission).Methods(http.MethodPost)
	r.HandleFunc("/permissoes/{id}", a.getPermission).Methods(http.MethodGet)
	r.HandleFunc("/permissoes/{id}", a.updatePermission).Methods(http.MethodPut)
	r.HandleFunc("/permissoes/{id}", a.deletePermission).Methods(http.MethodDelete)

	r.HandleFunc("/grupos_politica", a.listGroups).Methods(http.MethodGet)
	r.HandleFunc("/grupos_politica", a.createGroup).Methods(http.MethodPost)
	r.HandleFunc("/grupos_politica/{id}", a.getGroup).Methods(http.MethodGet)
	r.HandleFunc("/grupos_politica/{id}", a.updateGroup).Methods(http.MethodPut)
	r.HandleFunc("/grupos_politica/{id}", a.deleteGroup).Methods(http.MethodDelete)

	r.HandleFunc("/grupo_politica_permissoes", a.listAssociations).Methods(http.MethodGet)
	r.HandleFunc("/grupo_politica_permissoes", a.createAssociation).Methods(http.MethodPost)
	r.HandleFunc("/grupo_politica_permissoes", a.deleteAssociation).Methods(http.MethodDelete)

	r.HandleFunc("/images/profile/{user_id}", a.uploadProfilePicture).Methods(http.MethodPost)
	r.HandleFunc("/images/book_cover", a.uploadBookCover).Methods(http.MethodPost)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})
}

// Handler assembles the middleware chain around the router.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.router
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.opts.MaxBodyBytes)
	if a.opts.RateBurst > 0 && a.opts.RatePerSec > 0 {
		h = RateLimit(h, a.opts.RateBurst, a.opts.RatePerSec)
	}
	h = obs.Instrument(h)
	h = Logging(h, a.log)
	h = RequestID(h)
	return h
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "biblioteca-api",
		"version": a.opts.Version,
	})
}

func (a *API) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.opts.ReadyProbe.Check(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
