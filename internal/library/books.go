package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// NewBook carries the payload for catalogue writes.
type NewBook struct {
	Titulo               string `json:"titulo"`
	Autor                string `json:"autor"`
	Genero               string `json:"genero"`
	Editora              string `json:"editora"`
	AnoPublicacao        int    `json:"ano_publicacao"`
	NumeroPaginas        int    `json:"numero_paginas"`
	QuantidadeDisponivel int    `json:"quantidade_disponivel"`
	ISBN                 string `json:"isbn"`
}

// BookService manages the catalogue.
type BookService struct {
	store BookStore
}

func NewBookService(store BookStore) (*BookService, error) {
	if store == nil {
		return nil, errors.New("book store is required")
	}
	return &BookService{store: store}, nil
}

func (s *BookService) Create(ctx context.Context, in NewBook) (Livro, error) {
	b := bookFromInput(in)
	if err := validateBook(b); err != nil {
		return Livro{}, err
	}
	if err := s.store.InsertBook(ctx, &b); err != nil {
		return Livro{}, err
	}
	return b, nil
}

func (s *BookService) Get(ctx context.Context, id int64) (Livro, error) {
	if id <= 0 {
		return Livro{}, fmt.Errorf("%w: book id is required", ErrInvalidInput)
	}
	return s.store.Book(ctx, id)
}

// List returns the catalogue, optionally narrowed by title, author or
// genre.
func (s *BookService) List(ctx context.Context, f BookFilter) ([]Livro, error) {
	f.Titulo = strings.TrimSpace(f.Titulo)
	f.Autor = strings.TrimSpace(f.Autor)
	f.Genero = strings.TrimSpace(f.Genero)
	if f.Skip < 0 || f.Limit < 0 {
		return nil, fmt.Errorf("%w: skip and limit must be non-negative", ErrInvalidInput)
	}
	return s.store.Books(ctx, f)
}

func (s *BookService) Update(ctx context.Context, id int64, in NewBook) (Livro, error) {
	if id <= 0 {
		return Livro{}, fmt.Errorf("%w: book id is required", ErrInvalidInput)
	}
	b, err := s.store.Book(ctx, id)
	if err != nil {
		return Livro{}, err
	}
	next := bookFromInput(in)
	next.ID = b.ID
	next.ImageURL = b.ImageURL
	next.DataCriacao = b.DataCriacao
	if err := validateBook(next); err != nil {
		return Livro{}, err
	}
	if err := s.store.UpdateBook(ctx, &next); err != nil {
		return Livro{}, err
	}
	return next, nil
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: book id is required", ErrInvalidInput)
	}
	return s.store.DeleteBook(ctx, id)
}

func (s *BookService) SetCover(ctx context.Context, id int64, url string) error {
	if id <= 0 {
		return fmt.Errorf("%w: book id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("%w: image url is required", ErrInvalidInput)
	}
	return s.store.SetBookCover(ctx, id, url)
}

func bookFromInput(in NewBook) Livro {
	return Livro{
		Titulo:               strings.TrimSpace(in.Titulo),
		Autor:                strings.TrimSpace(in.Autor),
		Genero:               strings.TrimSpace(in.Genero),
		Editora:              strings.TrimSpace(in.Editora),
		AnoPublicacao:        in.AnoPublicacao,
		NumeroPaginas:        in.NumeroPaginas,
		QuantidadeDisponivel: in.QuantidadeDisponivel,
		ISBN:                 strings.TrimSpace(in.ISBN),
	}
}

func validateBook(b Livro) error {
	if b.Titulo == "" {
		return fmt.Errorf("%w: titulo is required", ErrInvalidInput)
	}
	if b.Autor == "" {
		return fmt.Errorf("%w: autor is required", ErrInvalidInput)
	}
	if b.ISBN == "" {
		return fmt.Errorf("%w: isbn is required", ErrInvalidInput)
	}
	if b.QuantidadeDisponivel < 0 {
		return fmt.Errorf("%w: quantidade_disponivel cannot be negative", ErrInvalidInput)
	}
	return nil
}
