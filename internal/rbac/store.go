package rbac

import "context"

// Store describes persistence operations for groups, permissions and their
// associations.
type Store interface {
	InsertGroup(ctx context.Context, nome string) (PolicyGroup, error)
	Groups(ctx context.Context) ([]PolicyGroup, error)
	Group(ctx context.Context, id int64) (PolicyGroup, error)
	UpdateGroup(ctx context.Context, id int64, nome string) (PolicyGroup, error)
	DeleteGroup(ctx context.Context, id int64) error

	InsertPermission(ctx context.Context, p *Permissao) error
	Permissions(ctx context.Context) ([]Permissao, error)
	Permission(ctx context.Context, id int64) (Permissao, error)
	UpdatePermission(ctx context.Context, id int64, p Permissao) (Permissao, error)
	DeletePermission(ctx context.Context, id int64) error

	InsertAssociation(ctx context.Context, a Associacao) error
	Associations(ctx context.Context) ([]Associacao, error)
	DeleteAssociation(ctx context.Context, a Associacao) error

	NamespacesForGroup(ctx context.Context, nome string) ([]string, error)
}
