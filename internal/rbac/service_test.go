package rbac

import (
	"context"
	"errors"
	"testing"
)

type stubStore struct {
	Store

	insertedPerm  *Permissao
	insertedAssoc *Associacao
	namespaces    []string
	err           error
}

func (s *stubStore) InsertPermission(_ context.Context, p *Permissao) error {
	if s.err != nil {
		return s.err
	}
	p.ID = 1
	s.insertedPerm = p
	return nil
}

func (s *stubStore) InsertAssociation(_ context.Context, a Associacao) error {
	if s.err != nil {
		return s.err
	}
	s.insertedAssoc = &a
	return nil
}

func (s *stubStore) NamespacesForGroup(_ context.Context, _ string) ([]string, error) {
	return s.namespaces, s.err
}

func TestCreatePermissionValidatesNamespace(t *testing.T) {
	svc, err := NewService(&stubStore{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	cases := []struct {
		namespace string
		ok        bool
	}{
		{"book.create", true},
		{"loan.read_by_client", true},
		{"client.update_self", true},
		{"book", false},
		{"book.", false},
		{".create", false},
		{"Book.Create", false},
		{"book create", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := svc.CreatePermission(context.Background(), Permissao{
			Nome:      "perm",
			Namespace: tc.namespace,
		})
		if tc.ok && err != nil {
			t.Errorf("namespace %q: unexpected error %v", tc.namespace, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidInput) {
			t.Errorf("namespace %q: want ErrInvalidInput, got %v", tc.namespace, err)
		}
	}
}

func TestCreatePermissionTrimsInput(t *testing.T) {
	store := &stubStore{}
	svc, _ := NewService(store)

	p, err := svc.CreatePermission(context.Background(), Permissao{
		Nome:      "  criar livro  ",
		Namespace: " book.create ",
	})
	if err != nil {
		t.Fatalf("CreatePermission: %v", err)
	}
	if p.Nome != "criar livro" || p.Namespace != "book.create" {
		t.Fatalf("unexpected permission after trim: %+v", p)
	}
	if p.ID != 1 {
		t.Fatalf("expected store-assigned id, got %d", p.ID)
	}
}

func TestCreateGroupRequiresName(t *testing.T) {
	svc, _ := NewService(&stubStore{})

	if _, err := svc.CreateGroup(context.Background(), "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestAssociatePropagatesConflict(t *testing.T) {
	svc, _ := NewService(&stubStore{err: ErrConflict})

	_, err := svc.Associate(context.Background(), Associacao{
		GrupoPoliticaNome:  "admin",
		PermissaoNamespace: "book.create",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestAssociateRequiresBothKeys(t *testing.T) {
	svc, _ := NewService(&stubStore{})

	_, err := svc.Associate(context.Background(), Associacao{GrupoPoliticaNome: "admin"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestNamespacesForGroup(t *testing.T) {
	store := &stubStore{namespaces: []string{"book.read", "loan.create"}}
	svc, _ := NewService(store)

	got, err := svc.NamespacesForGroup(context.Background(), "cliente")
	if err != nil {
		t.Fatalf("NamespacesForGroup: %v", err)
	}
	if len(got) != 2 || got[0] != "book.read" || got[1] != "loan.create" {
		t.Fatalf("unexpected namespaces: %v", got)
	}
}
