package pg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Columns each store statement in this package reads or writes, by table.
// Kept next to the queries so schema drift fails here instead of in
// production against a freshly migrated database.
var storeColumns = map[string][]string{
	"usuarios": {
		"id", "nome", "email", "telefone", "endereco_completo", "senha_hash",
		"profile_picture_url", "grupo_politica", "data_criacao", "data_atualizacao",
	},
	"livros": {
		"id", "titulo", "autor", "genero", "editora", "ano_publicacao",
		"numero_paginas", "quantidade_disponivel", "isbn", "image_url",
		"data_criacao", "data_atualizacao",
	},
	"emprestimos": {
		"id", "usuario_id", "livro_id", "data_emprestimo", "data_devolucao",
		"numero_renovacoes", "status", "data_criacao", "data_atualizacao",
	},
	"grupos_politica": {
		"id", "nome", "data_criacao", "data_atualizacao",
	},
	"permissoes": {
		"id", "nome", "descricao", "namespace", "data_criacao", "data_atualizacao",
	},
	"grupo_politica_permissoes": {
		"grupo_politica_nome", "permissao_namespace",
	},
}

func TestMigrationDefinesStoreColumns(t *testing.T) {
	schema := migrationColumns(t)
	for table, cols := range storeColumns {
		defined, ok := schema[table]
		if !ok {
			t.Errorf("migration does not create table %s", table)
			continue
		}
		for _, col := range cols {
			if !defined[col] {
				t.Errorf("store SQL references column %s.%s but the migration does not define it", table, col)
			}
		}
	}
}

// migrationColumns parses the create table blocks of the initial
// migration into table -> defined column names.
func migrationColumns(t *testing.T) map[string]map[string]bool {
	t.Helper()
	path := filepath.Join("..", "..", "..", "migrations", "0001_init.up.sql")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}

	schema := make(map[string]map[string]bool)
	var current map[string]bool
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "create table if not exists "):
			name := strings.TrimPrefix(line, "create table if not exists ")
			name = strings.TrimSuffix(strings.TrimSpace(name), "(")
			current = make(map[string]bool)
			schema[strings.TrimSpace(name)] = current
		case current == nil || line == "" || strings.HasPrefix(line, "--"):
			continue
		case strings.HasPrefix(line, ")"):
			current = nil
		case strings.HasPrefix(line, "constraint "),
			strings.HasPrefix(line, "primary key"),
			strings.HasPrefix(line, "references "),
			strings.HasPrefix(line, "check "):
			continue
		default:
			fields := strings.Fields(line)
			if len(fields) > 0 {
				current[fields[0]] = true
			}
		}
	}
	return schema
}
