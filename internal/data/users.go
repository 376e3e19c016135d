package data

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lib/pq"
	"github.com/mdobak/go-xerrors"

	"github.com/martinkb/blog/internal/utils/databaseutils"
)

type UserModel struct {
	sqlTemplate *databaseutils.SQLTemplate
	log         *slog.Logger
}

// Insert assigns the store-generated id to user.ID. A taken name surfaces
// as ErrDuplicateUsername.
func (userModel UserModel) Insert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (name, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`

	args := []any{user.Name, user.PasswordHash}
	_, err := databaseutils.ExecuteSingleQuery(userModel.sqlTemplate, ctx, query, func(rows *sql.Rows) (*User, error) {
		if err := rows.Scan(&user.ID); err != nil {
			return nil, xerrors.New(err)
		}
		return user, nil
	}, args...)

	if err != nil {
		var pqErr *pq.Error
		switch {
		case errors.As(err, &pqErr) && pqErr.Code == "23505":
			return xerrors.New(ErrDuplicateUsername)
		default:
			return xerrors.New(err)
		}
	}

	return nil
}

func (userModel UserModel) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, name, password_hash
		FROM users
		WHERE id = $1
	`

	user, err := databaseutils.ExecuteSingleQuery(userModel.sqlTemplate, ctx, query, scanUser, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(ErrNoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return user, nil
}

// GetByName is a case-sensitive unique lookup, used only for login.
func (userModel UserModel) GetByName(ctx context.Context, name string) (*User, error) {
	query := `
		SELECT id, name, password_hash
		FROM users
		WHERE name = $1
	`

	user, err := databaseutils.ExecuteSingleQuery(userModel.sqlTemplate, ctx, query, scanUser, name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(ErrNoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return user, nil
}

func scanUser(rows *sql.Rows) (*User, error) {
	var user = &User{}

	if err := rows.Scan(
		&user.ID,
		&user.Name,
		&user.PasswordHash,
	); err != nil {
		return nil, xerrors.New(err)
	}
	return user, nil
}
