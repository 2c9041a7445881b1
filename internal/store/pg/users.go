package pg

import (
	"context"
	"database/sql"
	"errors"

	"biblioteca.dev/internal/library"
)

const userColumns = `id, nome, email, telefone, endereco_completo, senha_hash,
	coalesce(profile_picture_url, ''), grupo_politica, data_criacao, data_atualizacao`

func (s *Store) InsertUser(ctx context.Context, u *library.Usuario) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	err := s.db.QueryRowContext(ctx, `
		insert into usuarios (nome, email, telefone, endereco_completo, senha_hash, grupo_politica)
		values ($1, $2, $3, $4, $5, $6)
		returning id, data_criacao, data_atualizacao
	`, u.Nome, u.Email, u.Telefone, u.EnderecoCompleto, u.SenhaHash, u.GrupoPolitica).
		Scan(&u.ID, &u.DataCriacao, &u.DataAtualizacao)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return library.ErrConflict
			case pgErrForeignKeyViolation:
				return library.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *Store) User(ctx context.Context, id int64) (library.Usuario, error) {
	if s.db == nil {
		return library.Usuario{}, errors.New("database connection unavailable")
	}
	var u library.Usuario
	err := s.db.QueryRowContext(ctx, `
		select `+userColumns+`
		from usuarios
		where id = $1
	`, id).Scan(&u.ID, &u.Nome, &u.Email, &u.Telefone, &u.EnderecoCompleto,
		&u.SenhaHash, &u.ProfilePictureURL, &u.GrupoPolitica, &u.DataCriacao, &u.DataAtualizacao)
	if errors.Is(err, sql.ErrNoRows) {
		return library.Usuario{}, library.ErrNotFound
	}
	if err != nil {
		return library.Usuario{}, err
	}
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (library.Usuario, error) {
	if s.db == nil {
		return library.Usuario{}, errors.New("database connection unavailable")
	}
	var u library.Usuario
	err := s.db.QueryRowContext(ctx, `
		select `+userColumns+`
		from usuarios
		where email = $1
	`, email).Scan(&u.ID, &u.Nome, &u.Email, &u.Telefone, &u.EnderecoCompleto,
		&u.SenhaHash, &u.ProfilePictureURL, &u.GrupoPolitica, &u.DataCriacao, &u.DataAtualizacao)
	if errors.Is(err, sql.ErrNoRows) {
		return library.Usuario{}, library.ErrNotFound
	}
	if err != nil {
		return library.Usuario{}, err
	}
	return u, nil
}

func (s *Store) Users(ctx context.Context) ([]library.Usuario, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+userColumns+`
		from usuarios
		order by nome
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []library.Usuario
	for rows.Next() {
		var u library.Usuario
		if err := rows.Scan(&u.ID, &u.Nome, &u.Email, &u.Telefone, &u.EnderecoCompleto,
			&u.SenhaHash, &u.ProfilePictureURL, &u.GrupoPolitica, &u.DataCriacao, &u.DataAtualizacao); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *library.Usuario) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	err := s.db.QueryRowContext(ctx, `
		update usuarios
		set nome = $2, email = $3, telefone = $4, endereco_completo = $5,
			senha_hash = $6, grupo_politica = $7, data_atualizacao = now()
		where id = $1
		returning data_atualizacao
	`, u.ID, u.Nome, u.Email, u.Telefone, u.EnderecoCompleto, u.SenhaHash, u.GrupoPolitica).
		Scan(&u.DataAtualizacao)
	if errors.Is(err, sql.ErrNoRows) {
		return library.ErrNotFound
	}
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return library.ErrConflict
			case pgErrForeignKeyViolation:
				return library.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from usuarios where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return library.ErrNotFound
	}
	return nil
}

func (s *Store) SetProfilePicture(ctx context.Context, id int64, url string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update usuarios set profile_picture_url = $2, data_atualizacao = now() where id = $1
	`, id, url)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return library.ErrNotFound
	}
	return nil
}
