package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"biblioteca.dev/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/auth",
	"/auth/token",
	"/metrics",
	"/healthz",
	"/readyz",
}

// withAuth validates the bearer token on every non-public request and
// stores the resulting identity in the context. It never touches
// storage: the permission list rides inside the token.
func (a *API) withAuth(next http.Handler) http.Handler {
	if a.opts.Issuer == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		claims, err := a.opts.Issuer.Validate(token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), auth.NewIdentity(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isPublic(r *http.Request) bool {
	path := r.URL.Path
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	// The catalogue is browsable without an account.
	if r.Method == http.MethodGet && (path == "/livros" || strings.HasPrefix(path, "/livros/")) {
		return true
	}
	return false
}

// require checks a single namespace against the token's permission
// snapshot.
func (a *API) require(r *http.Request, namespace string) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, false
	}
	return id, id.Can(namespace)
}

// requireOrSelf grants access when the token carries the namespace or
// when the caller owns the resource.
func (a *API) requireOrSelf(r *http.Request, namespace string, ownerID int64) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, false
	}
	return id, id.CanOrSelf(namespace, ownerID)
}

func permissionDenied(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusForbidden, "permission denied")
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
