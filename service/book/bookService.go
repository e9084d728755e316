package booksvc

import (
	"context"
	"database/sql"
	"errors"

	repo "campusportal/repository/book"
)

type Book = repo.Book

var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrNotFound       = errors.New("book not found")
)

type Repo interface {
	CreateBook(ctx context.Context, title, author, category, isbn string, copies int64) (int64, error)
	AddCopies(ctx context.Context, bookID int64, n int64) error
	List(ctx context.Context, search string) ([]Book, error)
	Detail(ctx context.Context, id int64) (*Book, error)
	Delete(ctx context.Context, id int64) error
}

type Service interface {
	Create(ctx context.Context, title, author, category, isbn string, copies int64) (int64, error)
	AddCopies(ctx context.Context, bookID int64, n int64) error
	List(ctx context.Context, search string) ([]Book, error)
	Detail(ctx context.Context, id int64) (*Book, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, title, author, category, isbn string, copies int64) (int64, error) {
	if title == "" || author == "" || copies < 0 {
		return 0, ErrInvalidPayload
	}
	return s.r.CreateBook(ctx, title, author, category, isbn, copies)
}

func (s *service) AddCopies(ctx context.Context, bookID int64, n int64) error {
	if n <= 0 {
		return ErrInvalidPayload
	}
	err := s.r.AddCopies(ctx, bookID, n)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *service) List(ctx context.Context, search string) ([]Book, error) {
	return s.r.List(ctx, search)
}

func (s *service) Detail(ctx context.Context, id int64) (*Book, error) {
	b, err := s.r.Detail(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *service) Delete(ctx context.Context, id int64) error {
	err := s.r.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
