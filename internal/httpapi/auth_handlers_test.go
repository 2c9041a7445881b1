package httpapi

import (
	"net/http"
	"slices"
	"testing"
	"time"

	"biblioteca.dev/internal/auth"
	"biblioteca.dev/internal/library"
	"biblioteca.dev/internal/rbac"
)

func TestRegisterForcesClienteGroup(t *testing.T) {
	api := newTestAPI(t)

	resp := api.post("/auth", map[string]any{
		"nome":           "Ana Souza",
		"email":          "ana@example.com",
		"senha":          "segredo123",
		"grupo_politica": "admin",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	u := decode[library.Usuario](t, resp)
	if u.GrupoPolitica != "cliente" {
		t.Fatalf("grupo_politica = %q, want cliente", u.GrupoPolitica)
	}

	// Same email again is a conflict.
	resp = api.post("/auth", map[string]any{
		"nome":  "Ana Souza",
		"email": "ana@example.com",
		"senha": "segredo123",
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate email: expected 400, got %d", resp.StatusCode)
	}
}

func TestLoginEmbedsPermissionSnapshot(t *testing.T) {
	api := newTestAPI(t)

	// Seed the cliente group with its permissions.
	if _, err := api.store.InsertGroup(t.Context(), "cliente"); err != nil {
		t.Fatalf("seed group: %v", err)
	}
	for _, ns := range []string{"book.read_by_title", "loan.read_by_client", "client.update_self"} {
		p := rbac.Permissao{Nome: ns, Namespace: ns}
		if err := api.store.InsertPermission(t.Context(), &p); err != nil {
			t.Fatalf("seed permission: %v", err)
		}
		err := api.store.InsertAssociation(t.Context(), rbac.Associacao{
			GrupoPoliticaNome:  "cliente",
			PermissaoNamespace: ns,
		})
		if err != nil {
			t.Fatalf("seed association: %v", err)
		}
	}

	resp := api.post("/auth", map[string]any{
		"nome":  "Bruno Lima",
		"email": "bruno@example.com",
		"senha": "segredo123",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.post("/auth/token", map[string]any{
		"email": "bruno@example.com",
		"senha": "segredo123",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	session := decode[tokenResponse](t, resp)
	if session.TokenType != "bearer" {
		t.Fatalf("token_type = %q", session.TokenType)
	}

	claims, err := api.issuer.Validate(session.AccessToken)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	want := []string{"book.read_by_title", "client.update_self", "loan.read_by_client"}
	got := append([]string(nil), claims.Permissions...)
	slices.Sort(got)
	if !slices.Equal(got, want) {
		t.Fatalf("permission snapshot = %v, want %v", got, want)
	}
}

func TestLoginFailsTheSameForBadEmailAndBadPassword(t *testing.T) {
	api := newTestAPI(t)

	resp := api.post("/auth", map[string]any{
		"nome":  "Carla Dias",
		"email": "carla@example.com",
		"senha": "segredo123",
	}, "")
	resp.Body.Close()

	badEmail := api.post("/auth/token", map[string]any{
		"email": "ghost@example.com",
		"senha": "segredo123",
	}, "")
	badPassword := api.post("/auth/token", map[string]any{
		"email": "carla@example.com",
		"senha": "errada9999",
	}, "")

	for name, resp := range map[string]*http.Response{"unknown email": badEmail, "wrong password": badPassword} {
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, resp.StatusCode)
		}
	}
	a := decode[map[string]any](t, badEmail)
	b := decode[map[string]any](t, badPassword)
	if a["error"] != b["error"] {
		t.Fatalf("error messages differ: %q vs %q", a["error"], b["error"])
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	api := newTestAPI(t)
	userID := api.seedUser("dora@example.com", "cliente")

	past := time.Now().Add(-2 * time.Hour)
	staleIssuer, err := auth.NewIssuer("test-secret-0123456789", "HS256", 20*time.Minute,
		auth.WithClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, _, err := staleIssuer.Issue("dora@example.com", userID, "cliente", []string{"loan.read_by_client"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resp := api.get("/emprestimos", token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestMissingTokenAndPublicCatalogue(t *testing.T) {
	api := newTestAPI(t)
	api.seedBook("Dom Casmurro", 2)

	resp := api.get("/usuarios", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("protected route without token: expected 401, got %d", resp.StatusCode)
	}

	resp = api.get("/livros", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("public catalogue: expected 200, got %d", resp.StatusCode)
	}
	books := decode[[]library.Livro](t, resp)
	if len(books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(books))
	}
}
