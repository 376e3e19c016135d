package core

import (
	"context"
	"log/slog"

	"github.com/mdobak/go-xerrors"

	"github.com/martinkb/blog/internal/auth"
	"github.com/martinkb/blog/internal/cache"
	"github.com/martinkb/blog/internal/data"
	"github.com/martinkb/blog/internal/filter"
	"github.com/martinkb/blog/internal/markdown"
	"github.com/martinkb/blog/internal/utils/databaseutils"
)

var (
	ErrInvalidCredentials = xerrors.Message("Invalid credentials")
	ErrForbidden          = xerrors.Message("Forbidden")
)

type userStore interface {
	Insert(ctx context.Context, user *data.User) error
	GetByID(ctx context.Context, id int64) (*data.User, error)
	GetByName(ctx context.Context, name string) (*data.User, error)
}

type postStore interface {
	Insert(ctx context.Context, post *data.Post) error
	GetByID(ctx context.Context, id int64) (*data.Post, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*data.Post, error)
	FindPage(ctx context.Context, ownerID int64, filters filter.Filter) (data.Page[*data.Post], error)
	FindByTag(ctx context.Context, ownerID int64, tag string) ([]*data.Post, error)
	Update(ctx context.Context, post *data.Post) (*data.Post, error)
}

type activityStore interface {
	Insert(ctx context.Context, action string, postID int64) error
}

type jsonCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any) error
	Del(ctx context.Context, key string) error
}

type Core struct {
	log      *slog.Logger
	session  databaseutils.Session
	auth     *auth.Auth
	users    userStore
	posts    postStore
	activity activityStore
	markdown markdown.Renderer
	cache    jsonCache
}

func NewCore(log *slog.Logger, session databaseutils.Session, authenticator *auth.Auth, models data.Models, renderer markdown.Renderer, postCache *cache.Cache) *Core {
	return &Core{
		log:      log,
		session:  session,
		auth:     authenticator,
		users:    models.Users,
		posts:    models.Posts,
		activity: models.Activity,
		markdown: renderer,
		cache:    postCache,
	}
}
