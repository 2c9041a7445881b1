package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"biblioteca.dev/internal/auth"
	"biblioteca.dev/internal/library"
	"biblioteca.dev/internal/rbac"
)

// memStore is an in-memory implementation of every store interface the
// API depends on.
type memStore struct {
	users  map[int64]library.Usuario
	books  map[int64]library.Livro
	loans  map[int64]library.Emprestimo
	groups map[int64]rbac.PolicyGroup
	perms  map[int64]rbac.Permissao
	assocs map[rbac.Associacao]bool
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[int64]library.Usuario),
		books:  make(map[int64]library.Livro),
		loans:  make(map[int64]library.Emprestimo),
		groups: make(map[int64]rbac.PolicyGroup),
		perms:  make(map[int64]rbac.Permissao),
		assocs: make(map[rbac.Associacao]bool),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) InsertUser(_ context.Context, u *library.Usuario) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return library.ErrConflict
		}
	}
	u.ID = m.id()
	u.DataCriacao = time.Now().UTC()
	u.DataAtualizacao = u.DataCriacao
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) User(_ context.Context, id int64) (library.Usuario, error) {
	u, ok := m.users[id]
	if !ok {
		return library.Usuario{}, library.ErrNotFound
	}
	return u, nil
}

func (m *memStore) UserByEmail(_ context.Context, email string) (library.Usuario, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return library.Usuario{}, library.ErrNotFound
}

func (m *memStore) Users(_ context.Context) ([]library.Usuario, error) {
	var out []library.Usuario
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memStore) UpdateUser(_ context.Context, u *library.Usuario) error {
	if _, ok := m.users[u.ID]; !ok {
		return library.ErrNotFound
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return library.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) SetProfilePicture(_ context.Context, id int64, url string) error {
	u, ok := m.users[id]
	if !ok {
		return library.ErrNotFound
	}
	u.ProfilePictureURL = url
	m.users[id] = u
	return nil
}

func (m *memStore) InsertBook(_ context.Context, b *library.Livro) error {
	for _, existing := range m.books {
		if existing.ISBN == b.ISBN {
			return library.ErrConflict
		}
	}
	b.ID = m.id()
	m.books[b.ID] = *b
	return nil
}

func (m *memStore) Book(_ context.Context, id int64) (library.Livro, error) {
	b, ok := m.books[id]
	if !ok {
		return library.Livro{}, library.ErrNotFound
	}
	return b, nil
}

func (m *memStore) Books(_ context.Context, f library.BookFilter) ([]library.Livro, error) {
	var out []library.Livro
	for _, b := range m.books {
		if f.Titulo != "" && !strings.Contains(strings.ToLower(b.Titulo), strings.ToLower(f.Titulo)) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *memStore) UpdateBook(_ context.Context, b *library.Livro) error {
	if _, ok := m.books[b.ID]; !ok {
		return library.ErrNotFound
	}
	m.books[b.ID] = *b
	return nil
}

func (m *memStore) DeleteBook(_ context.Context, id int64) error {
	if _, ok := m.books[id]; !ok {
		return library.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *memStore) SetBookCover(_ context.Context, id int64, url string) error {
	b, ok := m.books[id]
	if !ok {
		return library.ErrNotFound
	}
	b.ImageURL = url
	m.books[id] = b
	return nil
}

func (m *memStore) InsertLoan(_ context.Context, l *library.Emprestimo) error {
	b, ok := m.books[l.LivroID]
	if !ok {
		return library.ErrNotFound
	}
	if b.QuantidadeDisponivel <= 0 {
		return library.ErrUnavailable
	}
	b.QuantidadeDisponivel--
	m.books[l.LivroID] = b
	l.ID = m.id()
	m.loans[l.ID] = *l
	return nil
}

func (m *memStore) Loan(_ context.Context, id int64) (library.Emprestimo, error) {
	l, ok := m.loans[id]
	if !ok {
		return library.Emprestimo{}, library.ErrNotFound
	}
	return l, nil
}

func (m *memStore) LoansByUser(_ context.Context, usuarioID int64) ([]library.Emprestimo, error) {
	var out []library.Emprestimo
	for _, l := range m.loans {
		if l.UsuarioID == usuarioID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) Loans(_ context.Context) ([]library.Emprestimo, error) {
	var out []library.Emprestimo
	for _, l := range m.loans {
		out = append(out, l)
	}
	return out, nil
}

func (m *memStore) SaveLoan(_ context.Context, l *library.Emprestimo) error {
	if _, ok := m.loans[l.ID]; !ok {
		return library.ErrNotFound
	}
	m.loans[l.ID] = *l
	return nil
}

func (m *memStore) FinishLoan(_ context.Context, l *library.Emprestimo) error {
	prev, ok := m.loans[l.ID]
	if !ok {
		return library.ErrNotFound
	}
	if prev.Status != library.StatusDevolvido {
		b := m.books[l.LivroID]
		b.QuantidadeDisponivel++
		m.books[l.LivroID] = b
	}
	m.loans[l.ID] = *l
	return nil
}

func (m *memStore) DropLoan(_ context.Context, id int64) error {
	l, ok := m.loans[id]
	if !ok {
		return library.ErrNotFound
	}
	if l.Status != library.StatusDevolvido {
		b := m.books[l.LivroID]
		b.QuantidadeDisponivel++
		m.books[l.LivroID] = b
	}
	delete(m.loans, id)
	return nil
}

func (m *memStore) MarkOverdue(_ context.Context) (int64, error) { return 0, nil }

func (m *memStore) InsertGroup(_ context.Context, nome string) (rbac.PolicyGroup, error) {
	for _, g := range m.groups {
		if g.Nome == nome {
			return rbac.PolicyGroup{}, rbac.ErrConflict
		}
	}
	g := rbac.PolicyGroup{ID: m.id(), Nome: nome}
	m.groups[g.ID] = g
	return g, nil
}

func (m *memStore) Groups(_ context.Context) ([]rbac.PolicyGroup, error) {
	var out []rbac.PolicyGroup
	for _, g := range m.groups {
		out = append(out, g)
	}
	return out, nil
}

func (m *memStore) Group(_ context.Context, id int64) (rbac.PolicyGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return rbac.PolicyGroup{}, rbac.ErrNotFound
	}
	return g, nil
}

func (m *memStore) UpdateGroup(_ context.Context, id int64, nome string) (rbac.PolicyGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return rbac.PolicyGroup{}, rbac.ErrNotFound
	}
	g.Nome = nome
	m.groups[id] = g
	return g, nil
}

func (m *memStore) DeleteGroup(_ context.Context, id int64) error {
	if _, ok := m.groups[id]; !ok {
		return rbac.ErrNotFound
	}
	delete(m.groups, id)
	return nil
}

func (m *memStore) InsertPermission(_ context.Context, p *rbac.Permissao) error {
	for _, existing := range m.perms {
		if existing.Namespace == p.Namespace {
			return rbac.ErrConflict
		}
	}
	p.ID = m.id()
	m.perms[p.ID] = *p
	return nil
}

func (m *memStore) Permissions(_ context.Context) ([]rbac.Permissao, error) {
	var out []rbac.Permissao
	for _, p := range m.perms {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) Permission(_ context.Context, id int64) (rbac.Permissao, error) {
	p, ok := m.perms[id]
	if !ok {
		return rbac.Permissao{}, rbac.ErrNotFound
	}
	return p, nil
}

func (m *memStore) UpdatePermission(_ context.Context, id int64, p rbac.Permissao) (rbac.Permissao, error) {
	if _, ok := m.perms[id]; !ok {
		return rbac.Permissao{}, rbac.ErrNotFound
	}
	p.ID = id
	m.perms[id] = p
	return p, nil
}

func (m *memStore) DeletePermission(_ context.Context, id int64) error {
	if _, ok := m.perms[id]; !ok {
		return rbac.ErrNotFound
	}
	delete(m.perms, id)
	return nil
}

func (m *memStore) InsertAssociation(_ context.Context, a rbac.Associacao) error {
	if m.assocs[a] {
		return rbac.ErrConflict
	}
	groupKnown := false
	for _, g := range m.groups {
		if g.Nome == a.GrupoPoliticaNome {
			groupKnown = true
		}
	}
	permKnown := false
	for _, p := range m.perms {
		if p.Namespace == a.PermissaoNamespace {
			permKnown = true
		}
	}
	if !groupKnown || !permKnown {
		return rbac.ErrNotFound
	}
	m.assocs[a] = true
	return nil
}

func (m *memStore) Associations(_ context.Context) ([]rbac.Associacao, error) {
	var out []rbac.Associacao
	for a := range m.assocs {
		out = append(out, a)
	}
	return out, nil
}

func (m *memStore) DeleteAssociation(_ context.Context, a rbac.Associacao) error {
	if !m.assocs[a] {
		return rbac.ErrNotFound
	}
	delete(m.assocs, a)
	return nil
}

func (m *memStore) NamespacesForGroup(_ context.Context, nome string) ([]string, error) {
	var out []string
	for a := range m.assocs {
		if a.GrupoPoliticaNome == nome {
			out = append(out, a.PermissaoNamespace)
		}
	}
	return out, nil
}

type apiClient struct {
	t      *testing.T
	server *httptest.Server
	issuer *auth.Issuer
	store  *memStore
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()
	store := newMemStore()

	issuer, err := auth.NewIssuer("test-secret-0123456789", "HS256", 20*time.Minute)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	users, err := library.NewUserService(store)
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}
	books, err := library.NewBookService(store)
	if err != nil {
		t.Fatalf("NewBookService: %v", err)
	}
	loans, err := library.NewLoanService(store)
	if err != nil {
		t.Fatalf("NewLoanService: %v", err)
	}
	rbacSvc, err := rbac.NewService(store)
	if err != nil {
		t.Fatalf("rbac.NewService: %v", err)
	}
	authSvc, err := auth.NewService(users, rbacSvc, issuer)
	if err != nil {
		t.Fatalf("auth.NewService: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	api := New(Options{
		Auth:   authSvc,
		Issuer: issuer,
		Users:  users,
		Books:  books,
		Loans:  loans,
		RBAC:   rbacSvc,
		Log:    log,
	})
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	return &apiClient{t: t, server: server, issuer: issuer, store: store}
}

// seedUser adds a user record directly to the store and returns its
// id.
func (c *apiClient) seedUser(email, group string) int64 {
	c.t.Helper()
	u := library.Usuario{
		Nome:          "Seeded User",
		Email:         email,
		SenhaHash:     "unused",
		GrupoPolitica: group,
	}
	if err := c.store.InsertUser(context.Background(), &u); err != nil {
		c.t.Fatalf("seed user: %v", err)
	}
	return u.ID
}

func (c *apiClient) seedBook(titulo string, copies int) int64 {
	c.t.Helper()
	b := library.Livro{
		Titulo:               titulo,
		Autor:                "Autor Teste",
		ISBN:                 "isbn-" + titulo,
		QuantidadeDisponivel: copies,
	}
	if err := c.store.InsertBook(context.Background(), &b); err != nil {
		c.t.Fatalf("seed book: %v", err)
	}
	return b.ID
}

// token issues a bearer token directly, bypassing the login endpoint.
func (c *apiClient) token(email string, userID int64, group string, namespaces ...string) string {
	c.t.Helper()
	tok, _, err := c.issuer.Issue(email, userID, group, namespaces)
	if err != nil {
		c.t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (c *apiClient) do(method, path string, body any, token string) *http.Response {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.server.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (c *apiClient) get(path, token string) *http.Response {
	return c.do(http.MethodGet, path, nil, token)
}

func (c *apiClient) post(path string, body any, token string) *http.Response {
	return c.do(http.MethodPost, path, body, token)
}

func (c *apiClient) put(path string, body any, token string) *http.Response {
	return c.do(http.MethodPut, path, body, token)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}
