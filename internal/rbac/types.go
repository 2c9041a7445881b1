// Package rbac manages the permission catalog, policy groups and the
// many-to-many association between them. The association is keyed by the
// natural keys of both sides (group name, permission namespace); every
// authorization check in the system is a namespace-string membership test.
package rbac

import "time"

// PolicyGroup aggregates permissions under a unique name. A user belongs
// to exactly one group, referenced by name.
type PolicyGroup struct {
	ID              int64     `json:"id"`
	Nome            string    `json:"nome"`
	DataCriacao     time.Time `json:"data_criacao"`
	DataAtualizacao time.Time `json:"data_atualizacao"`
}

// Permissao is a named capability. The namespace (dotted string, e.g.
// "book.create") is the authorization key and must be unique.
type Permissao struct {
	ID              int64     `json:"id"`
	Nome            string    `json:"nome"`
	Descricao       string    `json:"descricao,omitempty"`
	Namespace       string    `json:"namespace"`
	DataCriacao     time.Time `json:"data_criacao"`
	DataAtualizacao time.Time `json:"data_atualizacao"`
}

// Associacao links a policy group to a permission by their natural keys.
type Associacao struct {
	GrupoPoliticaNome  string `json:"grupo_politica_nome"`
	PermissaoNamespace string `json:"permissao_namespace"`
}
