package sqlstore

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/internal/adapters"
)

func scanBook(rows adapters.DBRows) (circulation.Book, error) {
	var book circulation.Book

	err := rows.Scan(
		&book.ID, &book.ISBN, &book.Title, &book.Author,
		&book.Category, &book.Quantity, &book.AvailableQuantity,
	)

	return book, err
}

func (u *unitOfWork) bookSelect() *goqu.SelectDataset {
	return u.from(u.tables.Books).
		Select(colID, colISBN, colTitle, colAuthor, colCategory, colQuantity, colAvailableQuantity)
}

func (u *unitOfWork) selectBooks(ctx context.Context, action string, stmt *goqu.SelectDataset) (circulation.Books, error) {
	rows, err := u.query(ctx, action, stmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, u, rows, scanBook)
}

func (u *unitOfWork) GetBook(ctx context.Context, bookID uuid.UUID) (circulation.Book, error) {
	books, err := u.selectBooks(ctx, actionGetBook, u.bookSelect().Where(goqu.C(colID).Eq(bookID)))
	if err != nil {
		return circulation.Book{}, err
	}

	if len(books) == 0 {
		return circulation.Book{}, circulation.ErrBookNotFound
	}

	return books[0], nil
}

func (u *unitOfWork) CreateBook(ctx context.Context, book circulation.Book) error {
	if err := book.Validate(); err != nil {
		return err
	}

	stmt := u.insert(u.tables.Books).Rows(goqu.Record{
		colID:                book.ID,
		colISBN:              book.ISBN,
		colTitle:             book.Title,
		colAuthor:            book.Author,
		colCategory:          book.Category,
		colQuantity:          book.Quantity,
		colAvailableQuantity: book.AvailableQuantity,
	})

	_, err := u.exec(ctx, actionCreateBook, stmt)

	return err
}

// adjustAvailable moves available_quantity by delta when guard holds. A zero row update either
// means the book does not exist or the guard failed, which is reported as guardErr.
func (u *unitOfWork) adjustAvailable(
	ctx context.Context,
	action string,
	bookID uuid.UUID,
	delta int,
	guard exp.Expression,
	guardErr error,
) error {

	stmt := u.update(u.tables.Books).
		Set(goqu.Record{colAvailableQuantity: goqu.L("? + ?", goqu.C(colAvailableQuantity), delta)}).
		Where(goqu.C(colID).Eq(bookID), guard)

	rowsAffected, err := u.exec(ctx, action, stmt)
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		return nil
	}

	if _, err = u.GetBook(ctx, bookID); err != nil {
		return err
	}

	return guardErr
}

func (u *unitOfWork) DecrementAvailable(ctx context.Context, bookID uuid.UUID) error {
	return u.adjustAvailable(
		ctx, actionDecrementAvailable, bookID, -1,
		goqu.C(colAvailableQuantity).Gt(0),
		circulation.ErrBookUnavailable,
	)
}

func (u *unitOfWork) IncrementAvailable(ctx context.Context, bookID uuid.UUID) error {
	return u.adjustAvailable(
		ctx, actionIncrementAvailable, bookID, 1,
		goqu.C(colAvailableQuantity).Lt(goqu.C(colQuantity)),
		circulation.ErrInventoryExceeded,
	)
}

// UpdateBook shifts available_quantity by the quantity delta in the same statement, reading the
// current counts under the row lock of the update.
func (u *unitOfWork) UpdateBook(ctx context.Context, book circulation.Book) (circulation.Book, error) {
	if book.Quantity < 0 {
		return circulation.Book{}, circulation.ErrInvalidQuantity
	}

	shifted := goqu.L("? + ? - ?", goqu.C(colAvailableQuantity), book.Quantity, goqu.C(colQuantity))

	stmt := u.update(u.tables.Books).
		Set(goqu.Record{
			colISBN:              book.ISBN,
			colTitle:             book.Title,
			colAuthor:            book.Author,
			colCategory:          book.Category,
			colQuantity:          book.Quantity,
			colAvailableQuantity: shifted,
		}).
		Where(goqu.C(colID).Eq(book.ID), goqu.L("? >= 0", shifted))

	rowsAffected, err := u.exec(ctx, actionUpdateBook, stmt)
	if err != nil {
		return circulation.Book{}, err
	}

	if rowsAffected == 0 {
		if _, err = u.GetBook(ctx, book.ID); err != nil {
			return circulation.Book{}, err
		}

		return circulation.Book{}, circulation.ErrInvalidQuantity
	}

	return u.GetBook(ctx, book.ID)
}

func (u *unitOfWork) ListBooks(ctx context.Context) (circulation.Books, error) {
	return u.selectBooks(ctx, actionListBooks, u.bookSelect().Order(goqu.C(colCategory).Asc(), goqu.C(colTitle).Asc()))
}
