package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	ErrBookAlreadyExists = errors.New("book already exists")
	ErrBookNotFound      = errors.New("book not found")
)

// Repo is the storage the service needs; *Repository is the Postgres
// implementation.
type Repo interface {
	GetAuthorByName(ctx context.Context, name string) (*Author, error)
	CreateAuthor(ctx context.Context, name string) (*Author, error)
	ListAuthors(ctx context.Context) ([]Author, error)
	GetBookByTitle(ctx context.Context, title string) (*Book, error)
	CreateBook(ctx context.Context, title string, authorID, publishedYear int, genre string) (*Book, error)
	ListBooks(ctx context.Context) ([]BookWithAuthor, error)
	DeleteBook(ctx context.Context, id int) (bool, error)
	DeleteAllBooks(ctx context.Context) (int, error)
}

type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// CreateBook creates the author on first sight (author names are unique) and
// rejects duplicate book titles.
func (s *Service) CreateBook(ctx context.Context, title, authorName string, publishedYear int, genre string) (*BookWithAuthor, error) {
	author, err := s.repo.GetAuthorByName(ctx, authorName)
	if err != nil {
		return nil, err
	}
	if author == nil {
		author, err = s.repo.CreateAuthor(ctx, authorName)
		if err != nil {
			return nil, err
		}
		logrus.Infof("Created author %q (id=%d)", authorName, author.ID)
	}

	existing, err := s.repo.GetBookByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBookAlreadyExists
	}

	book, err := s.repo.CreateBook(ctx, title, author.ID, publishedYear, genre)
	if err != nil {
		return nil, err
	}

	return &BookWithAuthor{
		ID:            book.ID,
		Title:         book.Title,
		AuthorName:    author.AuthorName,
		PublishedYear: book.PublishedYear,
		Genre:         book.Genre,
	}, nil
}

func (s *Service) ListBooks(ctx context.Context) ([]BookWithAuthor, error) {
	return s.repo.ListBooks(ctx)
}

func (s *Service) ListAuthors(ctx context.Context) ([]Author, error) {
	return s.repo.ListAuthors(ctx)
}

func (s *Service) DeleteBook(ctx context.Context, id int) error {
	deleted, err := s.repo.DeleteBook(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrBookNotFound
	}
	return nil
}

func (s *Service) DeleteAllBooks(ctx context.Context) (int, error) {
	count, err := s.repo.DeleteAllBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete all books: %w", err)
	}
	return count, nil
}
