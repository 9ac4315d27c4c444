package sqliterepo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mwalimu/darasa/core/directory"
)

type personRepository struct {
	db *sqlx.DB
}

var _ directory.Repository = (*personRepository)(nil) // interface compliance check

func NewPersonRepository(db *sqlx.DB) directory.Repository {
	return &personRepository{db: db}
}

func (repo *personRepository) CreatePerson(ctx context.Context, p directory.Person) (directory.Person, error) {
	res, err := repo.db.ExecContext(ctx,
		`INSERT INTO person (name, email, role, created_at) VALUES (?, ?, ?, ?)`,
		p.Name, p.Email, p.Role, p.CreatedAt,
	)
	if err != nil {
		return directory.Person{}, mapUniqueErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return directory.Person{}, errors.Wrap(err, "fetching inserted id")
	}
	p.ID = int(id)
	return p, nil
}

func (repo *personRepository) QueryAllPersons(ctx context.Context) ([]directory.Person, error) {
	persons := []directory.Person{}
	err := repo.db.SelectContext(ctx, &persons, `SELECT * FROM person ORDER BY id`)
	return persons, errors.Wrap(err, "querying persons")
}

func (repo *personRepository) GetPersonByID(ctx context.Context, id int) (directory.Person, error) {
	var p directory.Person
	err := repo.db.GetContext(ctx, &p, `SELECT * FROM person WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return directory.Person{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.Person{}, errors.Wrap(err, "getting person")
	}
	return p, nil
}

func (repo *personRepository) SearchPersons(ctx context.Context, query string) ([]directory.Person, error) {
	persons := []directory.Person{}
	pattern := "%" + query + "%"
	err := repo.db.SelectContext(ctx, &persons,
		`SELECT * FROM person WHERE name LIKE ? OR email LIKE ? ORDER BY id`,
		pattern, pattern,
	)
	return persons, errors.Wrap(err, "searching persons")
}

func (repo *personRepository) UpdatePerson(ctx context.Context, p directory.Person) (directory.Person, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE person SET name = ?, email = ?, role = ? WHERE id = ?`,
		p.Name, p.Email, p.Role, p.ID,
	)
	if err != nil {
		return directory.Person{}, mapUniqueErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return directory.Person{}, errors.Wrap(err, "checking rows affected")
	}
	if n == 0 {
		return directory.Person{}, directory.ErrNotFound
	}
	return repo.GetPersonByID(ctx, p.ID)
}

func (repo *personRepository) DeletePersonByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM person WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "deleting person")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "checking rows affected")
	}
	if n == 0 {
		return directory.ErrNotFound
	}
	return nil
}

// mapUniqueErr translates the engine's unique-constraint violation on email
// into the domain error.
func mapUniqueErr(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return directory.ErrEmailExists
		}
	}
	return errors.Wrap(err, "writing person")
}
