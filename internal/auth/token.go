package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultIssuerName = "biblioteca-api"

// Claims is the JWT payload issued at login. The permission list is a
// snapshot of the user's policy group at issuance time; it is never
// re-validated against live group state until the next login.
type Claims struct {
	UserID      int64    `json:"id"`
	PolicyGroup string   `json:"grupo_politica"`
	Permissions []string `json:"permissoes"`
	jwt.RegisteredClaims
}

// Issuer signs and validates access tokens with a symmetric key.
type Issuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	name   string
	now    func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if fn != nil {
			i.now = fn
		}
	}
}

// WithIssuerName overrides the iss claim.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) {
		if strings.TrimSpace(name) != "" {
			i.name = strings.TrimSpace(name)
		}
	}
}

// NewIssuer constructs an Issuer. Only the HMAC family of signing
// algorithms is supported (HS256, HS384, HS512).
func NewIssuer(secret, algorithm string, ttl time.Duration, opts ...IssuerOption) (*Issuer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be greater than zero")
	}
	method := jwt.GetSigningMethod(strings.ToUpper(strings.TrimSpace(algorithm)))
	if method == nil {
		return nil, fmt.Errorf("auth: unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", algorithm)
	}
	issuer := &Issuer{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		name:   defaultIssuerName,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer, nil
}

// Issue signs a token asserting the given identity and its permission
// snapshot. The subject is the user's email.
func (i *Issuer) Issue(email string, userID int64, policyGroup string, permissions []string) (string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || userID <= 0 {
		return "", time.Time{}, errors.New("auth: subject and user id are required")
	}
	now := i.now().UTC()
	expires := now.Add(i.ttl)
	claims := Claims{
		UserID:      userID,
		PolicyGroup: policyGroup,
		Permissions: dedupeNamespaces(permissions),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.name,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Validate verifies signature and expiry and returns the decoded claims.
// Tokens missing a subject or user id are rejected. Validate never
// touches persistent storage; authorization is entirely token-local.
func (i *Issuer) Validate(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != i.method.Alg() {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	claims.Permissions = dedupeNamespaces(claims.Permissions)
	return claims, nil
}

func dedupeNamespaces(namespaces []string) []string {
	if len(namespaces) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(namespaces))
	var out []string
	for _, ns := range namespaces {
		ns = strings.TrimSpace(ns)
		if ns == "" {
			continue
		}
		if _, ok := seen[ns]; ok {
			continue
		}
		seen[ns] = struct{}{}
		out = append(out, ns)
	}
	return out
}
