package pg

import (
	"context"
	"database/sql"
	"errors"

	"biblioteca.dev/internal/library"
)

const loanColumns = `id, usuario_id, livro_id, data_emprestimo, data_devolucao,
	numero_renovacoes, status, data_criacao, data_atualizacao`

func scanLoan(row interface{ Scan(...any) error }, l *library.Emprestimo) error {
	return row.Scan(&l.ID, &l.UsuarioID, &l.LivroID, &l.DataEmprestimo, &l.DataDevolucao,
		&l.NumeroRenovacoes, &l.Status, &l.DataCriacao, &l.DataAtualizacao)
}

// InsertLoan creates the loan and takes one copy of the book in a
// single transaction.
func (s *Store) InsertLoan(ctx context.Context, l *library.Emprestimo) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update livros
		set quantidade_disponivel = quantidade_disponivel - 1, data_atualizacao = now()
		where id = $1 and quantidade_disponivel > 0
	`, l.LivroID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `select 1 from livros where id = $1`, l.LivroID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return library.ErrNotFound
		}
		if err != nil {
			return err
		}
		return library.ErrUnavailable
	}

	err = tx.QueryRowContext(ctx, `
		insert into emprestimos (usuario_id, livro_id, data_emprestimo, data_devolucao, numero_renovacoes, status)
		values ($1, $2, $3, $4, 0, $5)
		returning id, data_criacao, data_atualizacao
	`, l.UsuarioID, l.LivroID, l.DataEmprestimo, l.DataDevolucao, l.Status).
		Scan(&l.ID, &l.DataCriacao, &l.DataAtualizacao)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return library.ErrNotFound
		}
		return err
	}
	return tx.Commit()
}

func (s *Store) Loan(ctx context.Context, id int64) (library.Emprestimo, error) {
	if s.db == nil {
		return library.Emprestimo{}, errors.New("database connection unavailable")
	}
	var l library.Emprestimo
	err := scanLoan(s.db.QueryRowContext(ctx, `
		select `+loanColumns+`
		from emprestimos
		where id = $1
	`, id), &l)
	if errors.Is(err, sql.ErrNoRows) {
		return library.Emprestimo{}, library.ErrNotFound
	}
	if err != nil {
		return library.Emprestimo{}, err
	}
	return l, nil
}

func (s *Store) LoansByUser(ctx context.Context, usuarioID int64) ([]library.Emprestimo, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+loanColumns+`
		from emprestimos
		where usuario_id = $1
		order by data_emprestimo desc
	`, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

func (s *Store) Loans(ctx context.Context) ([]library.Emprestimo, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+loanColumns+`
		from emprestimos
		order by data_emprestimo desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

func collectLoans(rows *sql.Rows) ([]library.Emprestimo, error) {
	var loans []library.Emprestimo
	for rows.Next() {
		var l library.Emprestimo
		if err := scanLoan(rows, &l); err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return loans, nil
}

func (s *Store) SaveLoan(ctx context.Context, l *library.Emprestimo) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	err := s.db.QueryRowContext(ctx, `
		update emprestimos
		set data_devolucao = $2, numero_renovacoes = $3, status = $4, data_atualizacao = now()
		where id = $1
		returning data_atualizacao
	`, l.ID, l.DataDevolucao, l.NumeroRenovacoes, l.Status).Scan(&l.DataAtualizacao)
	if errors.Is(err, sql.ErrNoRows) {
		return library.ErrNotFound
	}
	return err
}

// FinishLoan marks the loan returned and gives the copy back in a
// single transaction. The status guard keeps the restock from running
// twice under concurrent returns.
func (s *Store) FinishLoan(ctx context.Context, l *library.Emprestimo) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update emprestimos
		set status = $2, data_devolucao = $3, data_atualizacao = now()
		where id = $1 and status <> $2
	`, l.ID, library.StatusDevolvido, l.DataDevolucao)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		// Already returned or gone; nothing to restock.
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		update livros
		set quantidade_disponivel = quantidade_disponivel + 1, data_atualizacao = now()
		where id = $1
	`, l.LivroID); err != nil {
		return err
	}
	return tx.Commit()
}

// DropLoan deletes the loan. An open loan gives its copy back.
func (s *Store) DropLoan(ctx context.Context, id int64) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		livroID int64
		status  string
	)
	err = tx.QueryRowContext(ctx, `
		select livro_id, status from emprestimos where id = $1 for update
	`, id).Scan(&livroID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return library.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `delete from emprestimos where id = $1`, id); err != nil {
		return err
	}
	if status != library.StatusDevolvido {
		if _, err := tx.ExecContext(ctx, `
			update livros
			set quantidade_disponivel = quantidade_disponivel + 1, data_atualizacao = now()
			where id = $1
		`, livroID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MarkOverdue flips active loans whose due date passed more than one
// loan period ago to Atrasado.
func (s *Store) MarkOverdue(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update emprestimos
		set status = $1, data_atualizacao = now()
		where status = $2 and data_devolucao < now() - interval '7 days'
	`, library.StatusAtrasado, library.StatusAtivo)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
