package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetAuthorByName(ctx context.Context, name string) (*Author, error) {
	query := `SELECT id, author_name FROM author WHERE author_name = $1`

	var author Author
	err := r.db.GetContext(ctx, &author, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get author by name: %w", err)
	}
	return &author, nil
}

func (r *Repository) CreateAuthor(ctx context.Context, name string) (*Author, error) {
	query := `
		INSERT INTO author (author_name)
		VALUES ($1)
		RETURNING id, author_name
	`

	var author Author
	err := r.db.GetContext(ctx, &author, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return &author, nil
}

func (r *Repository) ListAuthors(ctx context.Context) ([]Author, error) {
	query := `SELECT id, author_name FROM author ORDER BY id`

	var authors []Author
	err := r.db.SelectContext(ctx, &authors, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	return authors, nil
}

func (r *Repository) GetBookByTitle(ctx context.Context, title string) (*Book, error) {
	query := `SELECT id, title, author_id, COALESCE(published_year, 0) AS published_year, COALESCE(genre, '') AS genre FROM books WHERE title = $1`

	var book Book
	err := r.db.GetContext(ctx, &book, query, title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get book by title: %w", err)
	}
	return &book, nil
}

func (r *Repository) CreateBook(ctx context.Context, title string, authorID, publishedYear int, genre string) (*Book, error) {
	query := `
		INSERT INTO books (title, author_id, published_year, genre)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, author_id, published_year, genre
	`

	var book Book
	err := r.db.GetContext(ctx, &book, query, title, authorID, publishedYear, genre)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return &book, nil
}

func (r *Repository) ListBooks(ctx context.Context) ([]BookWithAuthor, error) {
	query := `
		SELECT b.id, b.title,
			COALESCE(a.author_name, 'Unknown') AS author_name,
			COALESCE(b.published_year, 0) AS published_year,
			COALESCE(b.genre, 'Unknown') AS genre
		FROM books b
		LEFT JOIN author a ON a.id = b.author_id
		ORDER BY b.id
	`

	var books []BookWithAuthor
	err := r.db.SelectContext(ctx, &books, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

func (r *Repository) DeleteBook(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete book: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteAllBooks removes every book and restarts the id sequence, so the next
// inserted book gets id 1 again.
func (r *Repository) DeleteAllBooks(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete books: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	var seqName string
	if err := r.db.GetContext(ctx, &seqName, `SELECT pg_get_serial_sequence('books', 'id')`); err != nil {
		return int(affected), fmt.Errorf("failed to resolve books id sequence: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf("ALTER SEQUENCE %s RESTART WITH 1", seqName)); err != nil {
		return int(affected), fmt.Errorf("failed to restart books id sequence: %w", err)
	}

	return int(affected), nil
}
