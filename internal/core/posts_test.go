package core

import (
	"context"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/martinkb/blog/internal/cache"
	"github.com/martinkb/blog/internal/data"
	"github.com/martinkb/blog/internal/filter"
)

func TestCreatePostRendersMarkdown(t *testing.T) {
	c := qt.New(t)

	posts := &stubPostStore{}
	activity := &stubActivityStore{}
	core := newTestCore(&stubUserStore{}, posts, activity)

	post, err := core.CreatePost(context.Background(), CreatePostRequest{
		Title:   "First",
		Content: "# Heading",
		Tags:    []string{"test", "work"},
	}, 1)

	c.Assert(err, qt.IsNil)
	c.Assert(post.ID, qt.Equals, int64(1))
	c.Assert(post.Content, qt.Equals, "<p># Heading</p>")
	c.Assert(post.OwnerID, qt.Equals, int64(1))
	// Published defaults to false when absent from the request.
	c.Assert(post.Published, qt.IsFalse)
	c.Assert(activity.actions, qt.DeepEquals, []string{"new_post"})
}

func TestListPostsClampsPageSize(t *testing.T) {
	c := qt.New(t)

	posts := &stubPostStore{}
	core := newTestCore(&stubUserStore{}, posts, &stubActivityStore{})

	_, err := core.ListPosts(context.Background(), 1, 3, 1000)
	c.Assert(err, qt.IsNil)

	c.Assert(posts.lastFilters.PageSize, qt.Equals, int64(filter.MaxPageSize))
	// The offset is computed from the clamped size.
	c.Assert(posts.lastFilters.Offset(), qt.Equals, int64(3*filter.MaxPageSize))
}

func TestEditPostForbiddenOnIDMismatch(t *testing.T) {
	c := qt.New(t)

	posts := &stubPostStore{byID: map[int64]*data.Post{
		5: {ID: 5, OwnerID: 1, Title: "stored"},
	}}
	core := newTestCore(&stubUserStore{}, posts, &stubActivityStore{})

	_, err := core.EditPost(context.Background(), 5, EditPostRequest{
		ID:      6, // does not match the path id
		Title:   "changed",
		Content: "changed",
		OwnerID: 1,
	}, 1)

	c.Assert(errors.Is(err, ErrForbidden), qt.IsTrue)
	c.Assert(posts.updated, qt.IsNil)
}

func TestEditPostForbiddenOnOwnerMismatch(t *testing.T) {
	c := qt.New(t)

	posts := &stubPostStore{byID: map[int64]*data.Post{
		5: {ID: 5, OwnerID: 2, Title: "stored"},
	}}
	core := newTestCore(&stubUserStore{}, posts, &stubActivityStore{})

	// Request claims the principal as owner, but the stored row belongs to
	// someone else.
	_, err := core.EditPost(context.Background(), 5, EditPostRequest{
		ID:      5,
		Title:   "changed",
		Content: "changed",
		OwnerID: 1,
	}, 1)

	c.Assert(errors.Is(err, ErrForbidden), qt.IsTrue)
	c.Assert(posts.updated, qt.IsNil)
}

func TestEditPostForbiddenOnPrincipalMismatch(t *testing.T) {
	c := qt.New(t)

	posts := &stubPostStore{byID: map[int64]*data.Post{
		5: {ID: 5, OwnerID: 2, Title: "stored"},
	}}
	core := newTestCore(&stubUserStore{}, posts, &stubActivityStore{})

	_, err := core.EditPost(context.Background(), 5, EditPostRequest{
		ID:      5,
		Title:   "changed",
		Content: "changed",
		OwnerID: 2, // honest about the owner, but not the principal
	}, 1)

	c.Assert(errors.Is(err, ErrForbidden), qt.IsTrue)
	c.Assert(posts.updated, qt.IsNil)
}

func TestEditPostRerendersMarkdown(t *testing.T) {
	c := qt.New(t)

	createdOn := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	posts := &stubPostStore{byID: map[int64]*data.Post{
		5: {ID: 5, OwnerID: 1, Title: "stored", CreatedOn: createdOn},
	}}
	activity := &stubActivityStore{}
	core := newTestCore(&stubUserStore{}, posts, activity)

	post, err := core.EditPost(context.Background(), 5, EditPostRequest{
		ID:        5,
		Title:     "changed",
		Content:   "## Edited",
		Tags:      []string{"work"},
		OwnerID:   1,
		Published: true,
	}, 1)

	c.Assert(err, qt.IsNil)
	c.Assert(post.Content, qt.Equals, "<p>## Edited</p>")
	c.Assert(post.CreatedOn, qt.Equals, createdOn)
	c.Assert(post.Published, qt.IsTrue)
	c.Assert(activity.actions, qt.DeepEquals, []string{"edit_post"})
}

func TestEditPostNotFound(t *testing.T) {
	c := qt.New(t)

	posts := &stubPostStore{}
	core := newTestCore(&stubUserStore{}, posts, &stubActivityStore{})

	_, err := core.EditPost(context.Background(), 5, EditPostRequest{
		ID:      5,
		Title:   "changed",
		Content: "changed",
		OwnerID: 1,
	}, 1)

	c.Assert(errors.Is(err, data.ErrNoRecordFound), qt.IsTrue)
}

func TestGetPostForOwnerScopesByOwner(t *testing.T) {
	c := qt.New(t)

	posts := &stubPostStore{byID: map[int64]*data.Post{
		5: {ID: 5, OwnerID: 1, Title: "stored"},
	}}
	core := newTestCore(&stubUserStore{}, posts, &stubActivityStore{})

	post, err := core.GetPostForOwner(context.Background(), 5, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(post.ID, qt.Equals, int64(5))

	_, err = core.GetPostForOwner(context.Background(), 5, 2)
	c.Assert(errors.Is(err, data.ErrNoRecordFound), qt.IsTrue)
}

func TestGetPostForOwnerServesRepeatReadsFromCache(t *testing.T) {
	c := qt.New(t)

	posts := &stubPostStore{byID: map[int64]*data.Post{
		5: {ID: 5, OwnerID: 1, Title: "stored"},
	}}
	core := newTestCore(&stubUserStore{}, posts, &stubActivityStore{})
	fc := newFakeCache()
	core.cache = fc

	post, err := core.GetPostForOwner(context.Background(), 5, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(post.Title, qt.Equals, "stored")
	c.Assert(posts.ownerGets, qt.Equals, 1)
	c.Assert(fc.entries, qt.HasLen, 1)

	// The second read is satisfied by the cache without touching the store.
	post, err = core.GetPostForOwner(context.Background(), 5, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(post.Title, qt.Equals, "stored")
	c.Assert(posts.ownerGets, qt.Equals, 1)
}

func TestGetPostForOwnerCacheKeyIsOwnerScoped(t *testing.T) {
	c := qt.New(t)

	posts := &stubPostStore{byID: map[int64]*data.Post{
		5: {ID: 5, OwnerID: 1, Title: "stored"},
	}}
	core := newTestCore(&stubUserStore{}, posts, &stubActivityStore{})
	fc := newFakeCache()
	core.cache = fc

	_, err := core.GetPostForOwner(context.Background(), 5, 1)
	c.Assert(err, qt.IsNil)

	// A cached row for one owner must not satisfy a read scoped to another.
	_, err = core.GetPostForOwner(context.Background(), 5, 2)
	c.Assert(errors.Is(err, data.ErrNoRecordFound), qt.IsTrue)
}

func TestEditPostInvalidatesCachedRead(t *testing.T) {
	c := qt.New(t)

	posts := &stubPostStore{byID: map[int64]*data.Post{
		5: {ID: 5, OwnerID: 1, Title: "stored"},
	}}
	core := newTestCore(&stubUserStore{}, posts, &stubActivityStore{})
	fc := newFakeCache()
	core.cache = fc

	_, err := core.GetPostForOwner(context.Background(), 5, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(fc.entries, qt.HasLen, 1)

	_, err = core.EditPost(context.Background(), 5, EditPostRequest{
		ID:      5,
		Title:   "changed",
		Content: "changed",
		OwnerID: 1,
	}, 1)
	c.Assert(err, qt.IsNil)

	c.Assert(fc.deleted, qt.DeepEquals, []string{"post:5:owner:1"})
	c.Assert(fc.entries, qt.HasLen, 0)
}

func TestGetPostForOwnerWithDisabledCache(t *testing.T) {
	c := qt.New(t)

	posts := &stubPostStore{byID: map[int64]*data.Post{
		5: {ID: 5, OwnerID: 1, Title: "stored"},
	}}
	core := newTestCore(&stubUserStore{}, posts, &stubActivityStore{})
	// The wired application passes a nil *cache.Cache when no Redis address
	// is configured; every method must be a no-op then.
	core.cache = (*cache.Cache)(nil)

	post, err := core.GetPostForOwner(context.Background(), 5, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(post.Title, qt.Equals, "stored")

	post, err = core.GetPostForOwner(context.Background(), 5, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(posts.ownerGets, qt.Equals, 2)
}

func TestPostsByTag(t *testing.T) {
	c := qt.New(t)

	expected := []*data.Post{{ID: 1, Tags: []string{"test", "work"}}}
	posts := &stubPostStore{byTag: expected}
	core := newTestCore(&stubUserStore{}, posts, &stubActivityStore{})

	result, err := core.PostsByTag(context.Background(), 1, "work")
	c.Assert(err, qt.IsNil)
	c.Assert(result, qt.DeepEquals, expected)
	c.Assert(posts.lastTag, qt.Equals, "work")
}
