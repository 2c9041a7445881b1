package pg

import (
	"context"
	"database/sql"
	"errors"

	"biblioteca.dev/internal/rbac"
)

func (s *Store) InsertGroup(ctx context.Context, nome string) (rbac.PolicyGroup, error) {
	if s.db == nil {
		return rbac.PolicyGroup{}, errors.New("database connection unavailable")
	}
	var g rbac.PolicyGroup
	err := s.db.QueryRowContext(ctx, `
		insert into grupos_politica (nome)
		values ($1)
		returning id, nome, data_criacao, data_atualizacao
	`, nome).Scan(&g.ID, &g.Nome, &g.DataCriacao, &g.DataAtualizacao)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return rbac.PolicyGroup{}, rbac.ErrConflict
		}
		return rbac.PolicyGroup{}, err
	}
	return g, nil
}

func (s *Store) Groups(ctx context.Context) ([]rbac.PolicyGroup, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, nome, data_criacao, data_atualizacao
		from grupos_politica
		order by nome
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []rbac.PolicyGroup
	for rows.Next() {
		var g rbac.PolicyGroup
		if err := rows.Scan(&g.ID, &g.Nome, &g.DataCriacao, &g.DataAtualizacao); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Store) Group(ctx context.Context, id int64) (rbac.PolicyGroup, error) {
	if s.db == nil {
		return rbac.PolicyGroup{}, errors.New("database connection unavailable")
	}
	var g rbac.PolicyGroup
	err := s.db.QueryRowContext(ctx, `
		select id, nome, data_criacao, data_atualizacao
		from grupos_politica
		where id = $1
	`, id).Scan(&g.ID, &g.Nome, &g.DataCriacao, &g.DataAtualizacao)
	if errors.Is(err, sql.ErrNoRows) {
		return rbac.PolicyGroup{}, rbac.ErrNotFound
	}
	if err != nil {
		return rbac.PolicyGroup{}, err
	}
	return g, nil
}

// UpdateGroup renames the group. Association rows follow through the
// on update cascade on the name foreign key.
func (s *Store) UpdateGroup(ctx context.Context, id int64, nome string) (rbac.PolicyGroup, error) {
	if s.db == nil {
		return rbac.PolicyGroup{}, errors.New("database connection unavailable")
	}
	var g rbac.PolicyGroup
	err := s.db.QueryRowContext(ctx, `
		update grupos_politica
		set nome = $2, data_atualizacao = now()
		where id = $1
		returning id, nome, data_criacao, data_atualizacao
	`, id, nome).Scan(&g.ID, &g.Nome, &g.DataCriacao, &g.DataAtualizacao)
	if errors.Is(err, sql.ErrNoRows) {
		return rbac.PolicyGroup{}, rbac.ErrNotFound
	}
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return rbac.PolicyGroup{}, rbac.ErrConflict
		}
		return rbac.PolicyGroup{}, err
	}
	return g, nil
}

func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from grupos_politica where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

func (s *Store) InsertPermission(ctx context.Context, p *rbac.Permissao) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	err := s.db.QueryRowContext(ctx, `
		insert into permissoes (nome, descricao, namespace)
		values ($1, nullif($2, ''), $3)
		returning id, data_criacao, data_atualizacao
	`, p.Nome, p.Descricao, p.Namespace).Scan(&p.ID, &p.DataCriacao, &p.DataAtualizacao)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return rbac.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) Permissions(ctx context.Context) ([]rbac.Permissao, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, nome, coalesce(descricao, ''), namespace, data_criacao, data_atualizacao
		from permissoes
		order by namespace
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []rbac.Permissao
	for rows.Next() {
		var p rbac.Permissao
		if err := rows.Scan(&p.ID, &p.Nome, &p.Descricao, &p.Namespace, &p.DataCriacao, &p.DataAtualizacao); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

func (s *Store) Permission(ctx context.Context, id int64) (rbac.Permissao, error) {
	if s.db == nil {
		return rbac.Permissao{}, errors.New("database connection unavailable")
	}
	var p rbac.Permissao
	err := s.db.QueryRowContext(ctx, `
		select id, nome, coalesce(descricao, ''), namespace, data_criacao, data_atualizacao
		from permissoes
		where id = $1
	`, id).Scan(&p.ID, &p.Nome, &p.Descricao, &p.Namespace, &p.DataCriacao, &p.DataAtualizacao)
	if errors.Is(err, sql.ErrNoRows) {
		return rbac.Permissao{}, rbac.ErrNotFound
	}
	if err != nil {
		return rbac.Permissao{}, err
	}
	return p, nil
}

func (s *Store) UpdatePermission(ctx context.Context, id int64, p rbac.Permissao) (rbac.Permissao, error) {
	if s.db == nil {
		return rbac.Permissao{}, errors.New("database connection unavailable")
	}
	var out rbac.Permissao
	err := s.db.QueryRowContext(ctx, `
		update permissoes
		set nome = $2, descricao = nullif($3, ''), namespace = $4, data_atualizacao = now()
		where id = $1
		returning id, nome, coalesce(descricao, ''), namespace, data_criacao, data_atualizacao
	`, id, p.Nome, p.Descricao, p.Namespace).
		Scan(&out.ID, &out.Nome, &out.Descricao, &out.Namespace, &out.DataCriacao, &out.DataAtualizacao)
	if errors.Is(err, sql.ErrNoRows) {
		return rbac.Permissao{}, rbac.ErrNotFound
	}
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return rbac.Permissao{}, rbac.ErrConflict
		}
		return rbac.Permissao{}, err
	}
	return out, nil
}

func (s *Store) DeletePermission(ctx context.Context, id int64) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from permissoes where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

// InsertAssociation links a group name to a permission namespace. The
// composite primary key rejects duplicates; the foreign keys reject
// unknown names.
func (s *Store) InsertAssociation(ctx context.Context, a rbac.Associacao) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	_, err := s.db.ExecContext(ctx, `
		insert into grupo_politica_permissoes (grupo_politica_nome, permissao_namespace)
		values ($1, $2)
	`, a.GrupoPoliticaNome, a.PermissaoNamespace)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return rbac.ErrConflict
			case pgErrForeignKeyViolation:
				return rbac.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *Store) Associations(ctx context.Context) ([]rbac.Associacao, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select grupo_politica_nome, permissao_namespace
		from grupo_politica_permissoes
		order by grupo_politica_nome, permissao_namespace
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assocs []rbac.Associacao
	for rows.Next() {
		var a rbac.Associacao
		if err := rows.Scan(&a.GrupoPoliticaNome, &a.PermissaoNamespace); err != nil {
			return nil, err
		}
		assocs = append(assocs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assocs, nil
}

func (s *Store) DeleteAssociation(ctx context.Context, a rbac.Associacao) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		delete from grupo_politica_permissoes
		where grupo_politica_nome = $1 and permissao_namespace = $2
	`, a.GrupoPoliticaNome, a.PermissaoNamespace)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

// NamespacesForGroup resolves the permission snapshot embedded in
// tokens at login.
func (s *Store) NamespacesForGroup(ctx context.Context, nome string) ([]string, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select permissao_namespace
		from grupo_politica_permissoes
		where grupo_politica_nome = $1
		order by permissao_namespace
	`, nome)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var namespaces []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		namespaces = append(namespaces, ns)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return namespaces, nil
}
