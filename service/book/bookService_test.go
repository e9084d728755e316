// service/book/bookService_test.go
package booksvc_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	booksvc "campusportal/service/book"
)

type repoMock struct {
	createFn    func(ctx context.Context, title, author, category, isbn string, copies int64) (int64, error)
	addCopiesFn func(ctx context.Context, bookID int64, n int64) error
	listFn      func(ctx context.Context, search string) ([]booksvc.Book, error)
	detailFn    func(ctx context.Context, id int64) (*booksvc.Book, error)
	deleteFn    func(ctx context.Context, id int64) error
}

func (m *repoMock) CreateBook(ctx context.Context, title, author, category, isbn string, copies int64) (int64, error) {
	return m.createFn(ctx, title, author, category, isbn, copies)
}
func (m *repoMock) AddCopies(ctx context.Context, bookID int64, n int64) error {
	return m.addCopiesFn(ctx, bookID, n)
}
func (m *repoMock) List(ctx context.Context, search string) ([]booksvc.Book, error) {
	return m.listFn(ctx, search)
}
func (m *repoMock) Detail(ctx context.Context, id int64) (*booksvc.Book, error) {
	return m.detailFn(ctx, id)
}
func (m *repoMock) Delete(ctx context.Context, id int64) error { return m.deleteFn(ctx, id) }

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	if _, err := s.Create(context.Background(), "", "Martin", "prog", "", 3); err == nil {
		t.Fatal("expected error for empty title")
	}
	if _, err := s.Create(context.Background(), "Clean Code", "", "prog", "", 3); err == nil {
		t.Fatal("expected error for empty author")
	}
	if _, err := s.Create(context.Background(), "Clean Code", "Martin", "prog", "", -1); err == nil {
		t.Fatal("expected error for negative copies")
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, title, author, category, isbn string, copies int64) (int64, error) {
			if title != "Clean Code" || author != "Martin" || copies != 3 {
				return 0, errors.New("bad args")
			}
			return 42, nil
		},
	}
	s := booksvc.New(m)
	id, err := s.Create(context.Background(), "Clean Code", "Martin", "prog", "9780132350884", 3)
	if err != nil || id != 42 {
		t.Fatalf("got id=%v err=%v; want 42 nil", id, err)
	}
}

func TestAddCopies(t *testing.T) {
	m := &repoMock{
		addCopiesFn: func(ctx context.Context, bookID int64, n int64) error {
			if bookID == 404 {
				return sql.ErrNoRows
			}
			return nil
		},
	}
	s := booksvc.New(m)

	if err := s.AddCopies(context.Background(), 7, 0); !errors.Is(err, booksvc.ErrInvalidPayload) {
		t.Fatalf("got %v; want ErrInvalidPayload", err)
	}
	if err := s.AddCopies(context.Background(), 404, 2); !errors.Is(err, booksvc.ErrNotFound) {
		t.Fatalf("got %v; want ErrNotFound", err)
	}
	if err := s.AddCopies(context.Background(), 7, 2); err != nil {
		t.Fatalf("AddCopies error: %v", err)
	}
}

func TestDetail_NotFound(t *testing.T) {
	m := &repoMock{
		detailFn: func(ctx context.Context, id int64) (*booksvc.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := booksvc.New(m)

	if _, err := s.Detail(context.Background(), 99); !errors.Is(err, booksvc.ErrNotFound) {
		t.Fatalf("got %v; want ErrNotFound", err)
	}
}

func TestPassThroughs(t *testing.T) {
	m := &repoMock{
		listFn:   func(ctx context.Context, search string) ([]booksvc.Book, error) { return nil, nil },
		detailFn: func(ctx context.Context, id int64) (*booksvc.Book, error) { return &booksvc.Book{}, nil },
		deleteFn: func(ctx context.Context, id int64) error { return nil },
	}
	s := booksvc.New(m)

	if _, err := s.List(context.Background(), "clean"); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if _, err := s.Detail(context.Background(), 99); err != nil {
		t.Fatalf("Detail error: %v", err)
	}
	if err := s.Delete(context.Background(), 99); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}
