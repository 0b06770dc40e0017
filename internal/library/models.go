package library

type Author struct {
	ID         int    `db:"id" json:"id"`
	AuthorName string `db:"author_name" json:"author_name"`
}

type Book struct {
	ID            int    `db:"id" json:"id"`
	Title         string `db:"title" json:"title"`
	AuthorID      int    `db:"author_id" json:"-"`
	PublishedYear int    `db:"published_year" json:"published_year"`
	Genre         string `db:"genre" json:"genre"`
}

// BookWithAuthor is the external shape of a book: the author is reported by
// name, not by foreign key.
type BookWithAuthor struct {
	ID            int    `db:"id" json:"id"`
	Title         string `db:"title" json:"title"`
	AuthorName    string `db:"author_name" json:"author_name"`
	PublishedYear int    `db:"published_year" json:"published_year"`
	Genre         string `db:"genre" json:"genre"`
}
