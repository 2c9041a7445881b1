package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Credential is the minimal user record needed to authenticate a login.
type Credential struct {
	UserID      int64
	Email       string
	SenhaHash   string
	PolicyGroup string
}

// CredentialStore looks up stored credentials by email.
type CredentialStore interface {
	Credential(ctx context.Context, email string) (Credential, error)
}

// PermissionResolver flattens a policy group into its permission
// namespaces via the group-permission association.
type PermissionResolver interface {
	NamespacesForGroup(ctx context.Context, nome string) ([]string, error)
}

// Service authenticates credentials and issues access tokens embedding the
// flattened permission set of the user's policy group.
type Service struct {
	creds  CredentialStore
	perms  PermissionResolver
	issuer *Issuer
}

// NewService constructs a Service.
func NewService(creds CredentialStore, perms PermissionResolver, issuer *Issuer) (*Service, error) {
	if creds == nil || perms == nil || issuer == nil {
		return nil, errors.New("auth: credential store, permission resolver and issuer are required")
	}
	return &Service{creds: creds, perms: perms, issuer: issuer}, nil
}

// Session is a freshly issued access token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Login verifies the email/password pair and returns a signed token whose
// permission list is the group's namespace set at this moment. Unknown
// email and wrong password both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, senha string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || senha == "" {
		return Session{}, ErrInvalidCredentials
	}
	cred, err := s.creds.Credential(ctx, email)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(cred.SenhaHash, senha); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	namespaces, err := s.perms.NamespacesForGroup(ctx, cred.PolicyGroup)
	if err != nil {
		return Session{}, err
	}
	token, expires, err := s.issuer.Issue(cred.Email, cred.UserID, cred.PolicyGroup, namespaces)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expires}, nil
}
