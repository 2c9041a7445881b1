package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service validates input and delegates persistence to a Store.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("rbac store is required")
	}
	return &Service{store: store}, nil
}

func (s *Service) CreateGroup(ctx context.Context, nome string) (PolicyGroup, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return PolicyGroup{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	return s.store.InsertGroup(ctx, nome)
}

func (s *Service) Groups(ctx context.Context) ([]PolicyGroup, error) {
	return s.store.Groups(ctx)
}

func (s *Service) Group(ctx context.Context, id int64) (PolicyGroup, error) {
	if id <= 0 {
		return PolicyGroup{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	return s.store.Group(ctx, id)
}

func (s *Service) UpdateGroup(ctx context.Context, id int64, nome string) (PolicyGroup, error) {
	if id <= 0 {
		return PolicyGroup{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return PolicyGroup{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	return s.store.UpdateGroup(ctx, id, nome)
}

func (s *Service) DeleteGroup(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	return s.store.DeleteGroup(ctx, id)
}

func (s *Service) CreatePermission(ctx context.Context, p Permissao) (Permissao, error) {
	if err := validatePermission(&p); err != nil {
		return Permissao{}, err
	}
	if err := s.store.InsertPermission(ctx, &p); err != nil {
		return Permissao{}, err
	}
	return p, nil
}

func (s *Service) Permissions(ctx context.Context) ([]Permissao, error) {
	return s.store.Permissions(ctx)
}

func (s *Service) Permission(ctx context.Context, id int64) (Permissao, error) {
	if id <= 0 {
		return Permissao{}, fmt.Errorf("%w: permission id is required", ErrInvalidInput)
	}
	return s.store.Permission(ctx, id)
}

func (s *Service) UpdatePermission(ctx context.Context, id int64, p Permissao) (Permissao, error) {
	if id <= 0 {
		return Permissao{}, fmt.Errorf("%w: permission id is required", ErrInvalidInput)
	}
	if err := validatePermission(&p); err != nil {
		return Permissao{}, err
	}
	return s.store.UpdatePermission(ctx, id, p)
}

func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: permission id is required", ErrInvalidInput)
	}
	return s.store.DeletePermission(ctx, id)
}

// Associate links a policy group to a permission. The store rejects
// duplicate pairs (ErrConflict) and unknown names (ErrNotFound) through
// the composite key and its foreign keys.
func (s *Service) Associate(ctx context.Context, a Associacao) (Associacao, error) {
	if err := normalizeAssociation(&a); err != nil {
		return Associacao{}, err
	}
	if err := s.store.InsertAssociation(ctx, a); err != nil {
		return Associacao{}, err
	}
	return a, nil
}

func (s *Service) Associations(ctx context.Context) ([]Associacao, error) {
	return s.store.Associations(ctx)
}

func (s *Service) Dissociate(ctx context.Context, a Associacao) error {
	if err := normalizeAssociation(&a); err != nil {
		return err
	}
	return s.store.DeleteAssociation(ctx, a)
}

// NamespacesForGroup flattens a group into its permission namespaces.
// Used by the token issuer at login.
func (s *Service) NamespacesForGroup(ctx context.Context, nome string) ([]string, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	return s.store.NamespacesForGroup(ctx, nome)
}

func validatePermission(p *Permissao) error {
	p.Nome = strings.TrimSpace(p.Nome)
	p.Descricao = strings.TrimSpace(p.Descricao)
	p.Namespace = strings.TrimSpace(p.Namespace)
	if p.Nome == "" {
		return fmt.Errorf("%w: permission name is required", ErrInvalidInput)
	}
	if !ValidNamespace(p.Namespace) {
		return fmt.Errorf("%w: namespace must have the form resource.action", ErrInvalidInput)
	}
	return nil
}

func normalizeAssociation(a *Associacao) error {
	a.GrupoPoliticaNome = strings.TrimSpace(a.GrupoPoliticaNome)
	a.PermissaoNamespace = strings.TrimSpace(a.PermissaoNamespace)
	if a.GrupoPoliticaNome == "" || a.PermissaoNamespace == "" {
		return fmt.Errorf("%w: group name and permission namespace are required", ErrInvalidInput)
	}
	return nil
}

// ValidNamespace reports whether ns is a dotted resource.action pair of
// lowercase letters, digits and underscores.
func ValidNamespace(ns string) bool {
	resource, action, ok := strings.Cut(ns, ".")
	if !ok || resource == "" || action == "" {
		return false
	}
	return validSegment(resource) && validSegment(action)
}

func validSegment(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
