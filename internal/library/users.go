package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"biblioteca.dev/internal/auth"
)

// DefaultPolicyGroup is assigned to self-registered users.
const DefaultPolicyGroup = "cliente"

// NewUser carries the payload for user creation and update.
type NewUser struct {
	Nome             string `json:"nome"`
	Email            string `json:"email"`
	Telefone         string `json:"telefone"`
	EnderecoCompleto string `json:"endereco_completo"`
	Senha            string `json:"senha"`
	GrupoPolitica    string `json:"grupo_politica"`
}

// UserService manages library users.
type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) (*UserService, error) {
	if store == nil {
		return nil, errors.New("user store is required")
	}
	return &UserService{store: store}, nil
}

// Register creates a self-service account. The policy group is always
// the default; callers cannot grant themselves another one.
func (s *UserService) Register(ctx context.Context, in NewUser) (Usuario, error) {
	in.GrupoPolitica = DefaultPolicyGroup
	return s.create(ctx, in)
}

// Create creates a user with the given policy group. Intended for
// privileged callers; an empty group falls back to the default.
func (s *UserService) Create(ctx context.Context, in NewUser) (Usuario, error) {
	if strings.TrimSpace(in.GrupoPolitica) == "" {
		in.GrupoPolitica = DefaultPolicyGroup
	}
	return s.create(ctx, in)
}

func (s *UserService) create(ctx context.Context, in NewUser) (Usuario, error) {
	u := Usuario{
		Nome:             strings.TrimSpace(in.Nome),
		Email:            normalizeEmail(in.Email),
		Telefone:         strings.TrimSpace(in.Telefone),
		EnderecoCompleto: strings.TrimSpace(in.EnderecoCompleto),
		GrupoPolitica:    strings.TrimSpace(in.GrupoPolitica),
	}
	if err := validateUser(u, in.Senha); err != nil {
		return Usuario{}, err
	}
	hash, err := auth.HashPassword(in.Senha)
	if err != nil {
		return Usuario{}, fmt.Errorf("hash password: %w", err)
	}
	u.SenhaHash = hash
	if err := s.store.InsertUser(ctx, &u); err != nil {
		return Usuario{}, err
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (Usuario, error) {
	if id <= 0 {
		return Usuario{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.User(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]Usuario, error) {
	return s.store.Users(ctx)
}

// Update replaces the mutable profile fields. A blank senha keeps the
// current hash; a blank grupo_politica keeps the current group.
func (s *UserService) Update(ctx context.Context, id int64, in NewUser) (Usuario, error) {
	if id <= 0 {
		return Usuario{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	u, err := s.store.User(ctx, id)
	if err != nil {
		return Usuario{}, err
	}
	u.Nome = strings.TrimSpace(in.Nome)
	u.Email = normalizeEmail(in.Email)
	u.Telefone = strings.TrimSpace(in.Telefone)
	u.EnderecoCompleto = strings.TrimSpace(in.EnderecoCompleto)
	if g := strings.TrimSpace(in.GrupoPolitica); g != "" {
		u.GrupoPolitica = g
	}
	if err := validateUser(u, ""); err != nil {
		return Usuario{}, err
	}
	if in.Senha != "" {
		hash, err := auth.HashPassword(in.Senha)
		if err != nil {
			return Usuario{}, fmt.Errorf("hash password: %w", err)
		}
		u.SenhaHash = hash
	}
	if err := s.store.UpdateUser(ctx, &u); err != nil {
		return Usuario{}, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.DeleteUser(ctx, id)
}

func (s *UserService) SetProfilePicture(ctx context.Context, id int64, url string) error {
	if id <= 0 {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("%w: image url is required", ErrInvalidInput)
	}
	return s.store.SetProfilePicture(ctx, id, url)
}

// Credential satisfies the login lookup without exposing the full user
// record to the auth layer.
func (s *UserService) Credential(ctx context.Context, email string) (auth.Credential, error) {
	u, err := s.store.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return auth.Credential{}, err
	}
	return auth.Credential{
		UserID:      u.ID,
		Email:       u.Email,
		SenhaHash:   u.SenhaHash,
		PolicyGroup: u.GrupoPolitica,
	}, nil
}

func validateUser(u Usuario, senha string) error {
	if u.Nome == "" {
		return fmt.Errorf("%w: nome is required", ErrInvalidInput)
	}
	if !validEmail(u.Email) {
		return fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	if senha != "" && len(senha) < 8 {
		return fmt.Errorf("%w: senha must have at least 8 characters", ErrInvalidInput)
	}
	if u.SenhaHash == "" && senha == "" {
		return fmt.Errorf("%w: senha is required", ErrInvalidInput)
	}
	return nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
