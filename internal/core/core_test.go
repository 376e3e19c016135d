package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/mdobak/go-xerrors"

	"github.com/martinkb/blog/internal/auth"
	"github.com/martinkb/blog/internal/data"
	"github.com/martinkb/blog/internal/filter"
	"github.com/martinkb/blog/internal/utils/databaseutils"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSession runs the transactional function directly on the caller's
// context.
type fakeSession struct{}

func (fakeSession) BeginTx(ctx context.Context, opts *sql.TxOptions) (databaseutils.Session, error) {
	return fakeSession{}, nil
}

func (fakeSession) DoTransactionally(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func (fakeSession) Rollback() error            { return nil }
func (fakeSession) Commit() error              { return nil }
func (fakeSession) Context() context.Context   { return context.Background() }
func (fakeSession) GetExecutor() databaseutils.SQLExecutor {
	return nil
}

type renderFunc func(ctx context.Context, source string) (string, error)

func (f renderFunc) ToHTML(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}

type stubUserStore struct {
	nextID    int64
	inserted  *data.User
	insertErr error
	byName    map[string]*data.User
	byID      map[int64]*data.User
}

func (s *stubUserStore) Insert(ctx context.Context, user *data.User) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.nextID++
	user.ID = s.nextID
	s.inserted = user
	return nil
}

func (s *stubUserStore) GetByID(ctx context.Context, id int64) (*data.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, xerrors.New(data.ErrNoRecordFound)
}

func (s *stubUserStore) GetByName(ctx context.Context, name string) (*data.User, error) {
	if user, ok := s.byName[name]; ok {
		return user, nil
	}
	return nil, xerrors.New(data.ErrNoRecordFound)
}

type stubPostStore struct {
	nextID      int64
	inserted    *data.Post
	byID        map[int64]*data.Post
	byTag       []*data.Post
	ownerGets   int
	lastTag     string
	lastFilters filter.Filter
	pageResult  data.Page[*data.Post]
	updated     *data.Post
}

func (s *stubPostStore) Insert(ctx context.Context, post *data.Post) error {
	s.nextID++
	post.ID = s.nextID
	s.inserted = post
	return nil
}

func (s *stubPostStore) GetByID(ctx context.Context, id int64) (*data.Post, error) {
	if post, ok := s.byID[id]; ok {
		return post, nil
	}
	return nil, xerrors.New(data.ErrNoRecordFound)
}

func (s *stubPostStore) GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*data.Post, error) {
	s.ownerGets++
	post, ok := s.byID[id]
	if !ok || post.OwnerID != ownerID {
		return nil, xerrors.New(data.ErrNoRecordFound)
	}
	return post, nil
}

func (s *stubPostStore) FindPage(ctx context.Context, ownerID int64, filters filter.Filter) (data.Page[*data.Post], error) {
	s.lastFilters = filters
	return s.pageResult, nil
}

func (s *stubPostStore) FindByTag(ctx context.Context, ownerID int64, tag string) ([]*data.Post, error) {
	s.lastTag = tag
	return s.byTag, nil
}

func (s *stubPostStore) Update(ctx context.Context, post *data.Post) (*data.Post, error) {
	s.updated = post
	return post, nil
}

// fakeCache is an in-process stand-in for the Redis cache, keeping the
// same JSON round-trip so cached reads return copies, not aliases.
type fakeCache struct {
	entries map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	b, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = b
	return nil
}

func (f *fakeCache) Del(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.entries, key)
	return nil
}

type stubActivityStore struct {
	actions []string
}

func (s *stubActivityStore) Insert(ctx context.Context, action string, postID int64) error {
	s.actions = append(s.actions, action)
	return nil
}

func newTestCore(users *stubUserStore, posts *stubPostStore, activity *stubActivityStore) *Core {
	return &Core{
		log:      discardLogger(),
		session:  fakeSession{},
		auth:     auth.New("test-secret", time.Hour),
		users:    users,
		posts:    posts,
		activity: activity,
		markdown: renderFunc(func(ctx context.Context, source string) (string, error) {
			return "<p>" + source + "</p>", nil
		}),
		cache: newFakeCache(),
	}
}
