package library

import "context"

// UserStore persists library users.
type UserStore interface {
	InsertUser(ctx context.Context, u *Usuario) error
	User(ctx context.Context, id int64) (Usuario, error)
	UserByEmail(ctx context.Context, email string) (Usuario, error)
	Users(ctx context.Context) ([]Usuario, error)
	UpdateUser(ctx context.Context, u *Usuario) error
	DeleteUser(ctx context.Context, id int64) error
	SetProfilePicture(ctx context.Context, id int64, url string) error
}

// BookStore persists the catalogue.
type BookStore interface {
	InsertBook(ctx context.Context, b *Livro) error
	Book(ctx context.Context, id int64) (Livro, error)
	Books(ctx context.Context, f BookFilter) ([]Livro, error)
	UpdateBook(ctx context.Context, b *Livro) error
	DeleteBook(ctx context.Context, id int64) error
	SetBookCover(ctx context.Context, id int64, url string) error
}

// LoanStore persists loans. InsertLoan, FinishLoan and DropLoan adjust
// book inventory in the same transaction as the loan row.
type LoanStore interface {
	// InsertLoan creates the loan and decrements the book's available
	// count, failing with ErrUnavailable when no copies remain.
	InsertLoan(ctx context.Context, l *Emprestimo) error
	Loan(ctx context.Context, id int64) (Emprestimo, error)
	LoansByUser(ctx context.Context, usuarioID int64) ([]Emprestimo, error)
	Loans(ctx context.Context) ([]Emprestimo, error)
	SaveLoan(ctx context.Context, l *Emprestimo) error
	// FinishLoan marks the loan returned and restores one copy.
	FinishLoan(ctx context.Context, l *Emprestimo) error
	// DropLoan deletes the loan; if it was still open the copy is
	// restored.
	DropLoan(ctx context.Context, id int64) error
	// MarkOverdue flips open loans past the cutoff to Atrasado and
	// returns how many rows changed.
	MarkOverdue(ctx context.Context) (int64, error)
}
