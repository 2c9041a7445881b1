package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"biblioteca.dev/internal/library"
)

const bookColumns = `id, titulo, autor, coalesce(genero, ''), coalesce(editora, ''),
	coalesce(ano_publicacao, 0), coalesce(numero_paginas, 0), quantidade_disponivel,
	isbn, coalesce(image_url, ''), data_criacao, data_atualizacao`

func scanBook(row interface{ Scan(...any) error }, b *library.Livro) error {
	return row.Scan(&b.ID, &b.Titulo, &b.Autor, &b.Genero, &b.Editora,
		&b.AnoPublicacao, &b.NumeroPaginas, &b.QuantidadeDisponivel,
		&b.ISBN, &b.ImageURL, &b.DataCriacao, &b.DataAtualizacao)
}

func (s *Store) InsertBook(ctx context.Context, b *library.Livro) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	err := s.db.QueryRowContext(ctx, `
		insert into livros (titulo, autor, genero, editora, ano_publicacao, numero_paginas,
			quantidade_disponivel, isbn)
		values ($1, $2, nullif($3, ''), nullif($4, ''), nullif($5, 0), nullif($6, 0), $7, $8)
		returning id, data_criacao, data_atualizacao
	`, b.Titulo, b.Autor, b.Genero, b.Editora, b.AnoPublicacao, b.NumeroPaginas,
		b.QuantidadeDisponivel, b.ISBN).
		Scan(&b.ID, &b.DataCriacao, &b.DataAtualizacao)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return library.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) Book(ctx context.Context, id int64) (library.Livro, error) {
	if s.db == nil {
		return library.Livro{}, errors.New("database connection unavailable")
	}
	var b library.Livro
	err := scanBook(s.db.QueryRowContext(ctx, `
		select `+bookColumns+`
		from livros
		where id = $1
	`, id), &b)
	if errors.Is(err, sql.ErrNoRows) {
		return library.Livro{}, library.ErrNotFound
	}
	if err != nil {
		return library.Livro{}, err
	}
	return b, nil
}

func (s *Store) Books(ctx context.Context, f library.BookFilter) ([]library.Livro, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}

	var (
		where []string
		args  []any
		idx   = 1
	)
	if f.Titulo != "" {
		where = append(where, fmt.Sprintf("titulo ilike $%d", idx))
		args = append(args, "%"+f.Titulo+"%")
		idx++
	}
	if f.Autor != "" {
		where = append(where, fmt.Sprintf("autor ilike $%d", idx))
		args = append(args, "%"+f.Autor+"%")
		idx++
	}
	if f.Genero != "" {
		where = append(where, fmt.Sprintf("genero ilike $%d", idx))
		args = append(args, "%"+f.Genero+"%")
		idx++
	}
	query := `select ` + bookColumns + ` from livros`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by titulo"
	if f.Limit > 0 {
		query += fmt.Sprintf(" limit $%d", idx)
		args = append(args, f.Limit)
		idx++
	}
	if f.Skip > 0 {
		query += fmt.Sprintf(" offset $%d", idx)
		args = append(args, f.Skip)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []library.Livro
	for rows.Next() {
		var b library.Livro
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

func (s *Store) UpdateBook(ctx context.Context, b *library.Livro) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	err := s.db.QueryRowContext(ctx, `
		update livros
		set titulo = $2, autor = $3, genero = nullif($4, ''), editora = nullif($5, ''),
			ano_publicacao = nullif($6, 0), numero_paginas = nullif($7, 0),
			quantidade_disponivel = $8, isbn = $9, data_atualizacao = now()
		where id = $1
		returning data_atualizacao
	`, b.ID, b.Titulo, b.Autor, b.Genero, b.Editora, b.AnoPublicacao, b.NumeroPaginas,
		b.QuantidadeDisponivel, b.ISBN).
		Scan(&b.DataAtualizacao)
	if errors.Is(err, sql.ErrNoRows) {
		return library.ErrNotFound
	}
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return library.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from livros where id = $1`, id)
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

func (s *Store) SetBookCover(ctx context.Context, id int64, url string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update livros set image_url = $2, data_atualizacao = now() where id = $1
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
