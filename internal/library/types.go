package library

import "time"

// Loan status values. A loan starts Ativo, may be renewed up to
// MaxRenewals times, and ends Devolvido. Atrasado is applied by the
// overdue sweep and does not block renewal or return.
const (
	StatusAtivo     = "Ativo"
	StatusRenovado  = "Renovado"
	StatusDevolvido = "Devolvido"
	StatusAtrasado  = "Atrasado"
)

const (
	// LoanPeriod is the lending window granted at creation and added
	// again on each renewal.
	LoanPeriod = 7 * 24 * time.Hour
	// MaxRenewals bounds NumeroRenovacoes.
	MaxRenewals = 3
)

type Usuario struct {
	ID                int64     `json:"id"`
	Nome              string    `json:"nome"`
	Email             string    `json:"email"`
	Telefone          string    `json:"telefone,omitempty"`
	EnderecoCompleto  string    `json:"endereco_completo,omitempty"`
	SenhaHash         string    `json:"-"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	GrupoPolitica     string    `json:"grupo_politica"`
	DataCriacao       time.Time `json:"data_criacao"`
	DataAtualizacao   time.Time `json:"data_atualizacao"`
}

type Livro struct {
	ID                   int64     `json:"id"`
	Titulo               string    `json:"titulo"`
	Autor                string    `json:"autor"`
	Genero               string    `json:"genero,omitempty"`
	Editora              string    `json:"editora,omitempty"`
	AnoPublicacao        int       `json:"ano_publicacao,omitempty"`
	NumeroPaginas        int       `json:"numero_paginas,omitempty"`
	QuantidadeDisponivel int       `json:"quantidade_disponivel"`
	ISBN                 string    `json:"isbn"`
	ImageURL             string    `json:"image_url,omitempty"`
	DataCriacao          time.Time `json:"data_criacao"`
	DataAtualizacao      time.Time `json:"data_atualizacao"`
}

type Emprestimo struct {
	ID               int64     `json:"id"`
	UsuarioID        int64     `json:"usuario_id"`
	LivroID          int64     `json:"livro_id"`
	DataEmprestimo   time.Time `json:"data_emprestimo"`
	DataDevolucao    time.Time `json:"data_devolucao"`
	NumeroRenovacoes int       `json:"numero_renovacoes"`
	Status           string    `json:"status"`
	DataCriacao      time.Time `json:"data_criacao"`
	DataAtualizacao  time.Time `json:"data_atualizacao"`
}

// BookFilter narrows Books listings. Empty fields are ignored; set
// fields are matched case-insensitively as substrings. Skip and Limit
// paginate; a zero Limit means no cap.
type BookFilter struct {
	Titulo string
	Autor  string
	Genero string
	Skip   int
	Limit  int
}
