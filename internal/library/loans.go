package library

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// NewLoan carries the payload for loan creation.
type NewLoan struct {
	UsuarioID int64 `json:"usuario_id"`
	LivroID   int64 `json:"livro_id"`
}

// LoanService manages loans and their lifecycle.
type LoanService struct {
	store LoanStore
	now   func() time.Time
}

// LoanOption configures a LoanService.
type LoanOption func(*LoanService)

// WithLoanClock overrides the time source.
func WithLoanClock(now func() time.Time) LoanOption {
	return func(s *LoanService) { s.now = now }
}

func NewLoanService(store LoanStore, opts ...LoanOption) (*LoanService, error) {
	if store == nil {
		return nil, errors.New("loan store is required")
	}
	s := &LoanService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create opens a loan. The store decrements the book's available count
// in the same transaction and reports ErrUnavailable when none remain.
func (s *LoanService) Create(ctx context.Context, in NewLoan) (Emprestimo, error) {
	if in.UsuarioID <= 0 {
		return Emprestimo{}, fmt.Errorf("%w: usuario_id is required", ErrInvalidInput)
	}
	if in.LivroID <= 0 {
		return Emprestimo{}, fmt.Errorf("%w: livro_id is required", ErrInvalidInput)
	}
	now := s.now().UTC()
	l := Emprestimo{
		UsuarioID:      in.UsuarioID,
		LivroID:        in.LivroID,
		DataEmprestimo: now,
		DataDevolucao:  now.Add(LoanPeriod),
		Status:         StatusAtivo,
	}
	if err := s.store.InsertLoan(ctx, &l); err != nil {
		return Emprestimo{}, err
	}
	return l, nil
}

func (s *LoanService) Get(ctx context.Context, id int64) (Emprestimo, error) {
	if id <= 0 {
		return Emprestimo{}, fmt.Errorf("%w: loan id is required", ErrInvalidInput)
	}
	return s.store.Loan(ctx, id)
}

func (s *LoanService) List(ctx context.Context) ([]Emprestimo, error) {
	return s.store.Loans(ctx)
}

func (s *LoanService) ListByUser(ctx context.Context, usuarioID int64) ([]Emprestimo, error) {
	if usuarioID <= 0 {
		return nil, fmt.Errorf("%w: usuario_id is required", ErrInvalidInput)
	}
	return s.store.LoansByUser(ctx, usuarioID)
}

// UpdateStatus dispatches on the requested status: Renovado renews the
// loan, Devolvido returns it. Any other value is rejected.
func (s *LoanService) UpdateStatus(ctx context.Context, id int64, status string) (Emprestimo, error) {
	if id <= 0 {
		return Emprestimo{}, fmt.Errorf("%w: loan id is required", ErrInvalidInput)
	}
	switch status {
	case StatusRenovado:
		return s.renew(ctx, id)
	case StatusDevolvido:
		return s.finish(ctx, id)
	default:
		return Emprestimo{}, fmt.Errorf("%w: status must be %s or %s", ErrInvalidInput, StatusRenovado, StatusDevolvido)
	}
}

// renew extends the due date by one lending period. Overdue loans may
// still be renewed; returned loans may not.
func (s *LoanService) renew(ctx context.Context, id int64) (Emprestimo, error) {
	l, err := s.store.Loan(ctx, id)
	if err != nil {
		return Emprestimo{}, err
	}
	if l.Status == StatusDevolvido {
		return Emprestimo{}, fmt.Errorf("%w: loan already returned", ErrInvalidInput)
	}
	if l.NumeroRenovacoes >= MaxRenewals {
		return Emprestimo{}, ErrRenewalLimit
	}
	l.NumeroRenovacoes++
	l.DataDevolucao = l.DataDevolucao.Add(LoanPeriod)
	l.Status = StatusRenovado
	if err := s.store.SaveLoan(ctx, &l); err != nil {
		return Emprestimo{}, err
	}
	return l, nil
}

// finish marks the loan returned and restores the copy. Returning an
// already-returned loan is a no-op.
func (s *LoanService) finish(ctx context.Context, id int64) (Emprestimo, error) {
	l, err := s.store.Loan(ctx, id)
	if err != nil {
		return Emprestimo{}, err
	}
	if l.Status == StatusDevolvido {
		return l, nil
	}
	l.Status = StatusDevolvido
	l.DataDevolucao = s.now().UTC()
	if err := s.store.FinishLoan(ctx, &l); err != nil {
		return Emprestimo{}, err
	}
	return l, nil
}

func (s *LoanService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: loan id is required", ErrInvalidInput)
	}
	return s.store.DropLoan(ctx, id)
}

// SweepOverdue flips open loans past their grace window to Atrasado.
// Run periodically by the sweep command.
func (s *LoanService) SweepOverdue(ctx context.Context) (int64, error) {
	return s.store.MarkOverdue(ctx)
}
