package core

import (
	"context"
	"errors"

	"github.com/mdobak/go-xerrors"

	"github.com/martinkb/blog/internal/auth"
	"github.com/martinkb/blog/internal/data"
)

// Register hashes the password and inserts the user. A taken name surfaces
// as data.ErrDuplicateUsername.
func (c *Core) Register(ctx context.Context, name, plainTextPassword string) (*data.User, error) {
	passwordHash, err := auth.HashPassword(plainTextPassword)
	if err != nil {
		return nil, err
	}

	user := &data.User{
		Name:         name,
		PasswordHash: passwordHash,
	}

	if err := c.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	c.log.Info("User registered", "user_id", user.ID, "name", user.Name)
	return user, nil
}

// Authenticate verifies the credentials and issues a signed token. An
// unknown name and a wrong password both return ErrInvalidCredentials, so
// the caller cannot tell whether the name exists.
func (c *Core) Authenticate(ctx context.Context, name, plainTextPassword string) (string, error) {
	user, err := c.users.GetByName(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return "", xerrors.New(ErrInvalidCredentials)
		default:
			return "", err
		}
	}

	match, err := auth.IsPasswordMatch(user.PasswordHash, plainTextPassword)
	if err != nil {
		return "", err
	}
	if !match {
		return "", xerrors.New(ErrInvalidCredentials)
	}

	return c.auth.NewToken(user.ID)
}

func (c *Core) GetUser(ctx context.Context, id int64) (*data.User, error) {
	return c.users.GetByID(ctx, id)
}
