package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"biblioteca.dev/internal/library"
)

func TestInsertLoanTakesCopy(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("update livros").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("insert into emprestimos").
		WithArgs(int64(7), int64(3), sqlmock.AnyArg(), sqlmock.AnyArg(), library.StatusAtivo).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data_criacao", "data_atualizacao"}).
			AddRow(1, now, now))
	mock.ExpectCommit()

	l := library.Emprestimo{
		UsuarioID:      7,
		LivroID:        3,
		DataEmprestimo: now,
		DataDevolucao:  now.Add(library.LoanPeriod),
		Status:         library.StatusAtivo,
	}
	if err := store.InsertLoan(context.Background(), &l); err != nil {
		t.Fatalf("InsertLoan: %v", err)
	}
	if l.ID != 1 {
		t.Fatalf("loan id = %d, want 1", l.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInsertLoanNoCopiesLeft(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("update livros").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select 1 from livros").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectRollback()

	l := library.Emprestimo{UsuarioID: 7, LivroID: 3, Status: library.StatusAtivo}
	err := store.InsertLoan(context.Background(), &l)
	if !errors.Is(err, library.ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}

func TestInsertLoanUnknownBook(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("update livros").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select 1 from livros").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	l := library.Emprestimo{UsuarioID: 7, LivroID: 99, Status: library.StatusAtivo}
	err := store.InsertLoan(context.Background(), &l)
	if !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFinishLoanRestocksOnce(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("update emprestimos").
		WithArgs(int64(1), library.StatusDevolvido, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("update livros").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	l := library.Emprestimo{ID: 1, LivroID: 3, Status: library.StatusDevolvido}
	if err := store.FinishLoan(context.Background(), &l); err != nil {
		t.Fatalf("FinishLoan: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFinishLoanAlreadyReturnedSkipsRestock(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("update emprestimos").
		WithArgs(int64(1), library.StatusDevolvido, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	l := library.Emprestimo{ID: 1, LivroID: 3, Status: library.StatusDevolvido}
	if err := store.FinishLoan(context.Background(), &l); err != nil {
		t.Fatalf("FinishLoan: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDropOpenLoanRestocks(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select livro_id, status from emprestimos").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"livro_id", "status"}).AddRow(3, library.StatusAtivo))
	mock.ExpectExec("delete from emprestimos").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("update livros").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.DropLoan(context.Background(), 1); err != nil {
		t.Fatalf("DropLoan: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDropReturnedLoanDoesNotRestock(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select livro_id, status from emprestimos").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"livro_id", "status"}).AddRow(3, library.StatusDevolvido))
	mock.ExpectExec("delete from emprestimos").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.DropLoan(context.Background(), 1); err != nil {
		t.Fatalf("DropLoan: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMarkOverdue(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update emprestimos").
		WithArgs(library.StatusAtrasado, library.StatusAtivo).
		WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := store.MarkOverdue(context.Background())
	if err != nil {
		t.Fatalf("MarkOverdue: %v", err)
	}
	if n != 5 {
		t.Fatalf("marked = %d, want 5", n)
	}
}
