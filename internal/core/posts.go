package core

import (
	"context"
	"fmt"
	"time"

	"github.com/mdobak/go-xerrors"

	"github.com/martinkb/blog/internal/data"
	"github.com/martinkb/blog/internal/filter"
	"github.com/martinkb/blog/internal/utils/databaseutils"
)

type CreatePostRequest struct {
	Title     string
	Content   string // Markdown source
	Tags      []string
	CreatedOn time.Time // zero means now
	Published bool
}

type EditPostRequest struct {
	ID        int64
	Title     string
	Content   string // Markdown source
	Tags      []string
	OwnerID   int64
	Published bool
}

// CreatePost renders the Markdown content to HTML and inserts the post
// together with its audit row in one transaction. The caller has already
// established that ownerID is the authenticated principal.
func (c *Core) CreatePost(ctx context.Context, request CreatePostRequest, ownerID int64) (*data.Post, error) {
	html, err := c.markdown.ToHTML(ctx, request.Content)
	if err != nil {
		return nil, err
	}

	post := &data.Post{
		Title:     request.Title,
		Content:   html,
		OwnerID:   ownerID,
		CreatedOn: request.CreatedOn,
		Tags:      request.Tags,
		Published: request.Published,
	}

	err = c.session.DoTransactionally(ctx, func(txCtx context.Context) error {
		if err := c.posts.Insert(txCtx, post); err != nil {
			return err
		}
		return c.activity.Insert(txCtx, "new_post", post.ID)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("Post created", "post_id", post.ID, "owner_id", ownerID)
	return post, nil
}

// EditPost updates a post after verifying that the request id matches the
// path-derived id and that the stored post belongs to the principal. Any
// mismatch fails with ErrForbidden and leaves the row unchanged. Content is
// rendered from Markdown the same way as on create.
func (c *Core) EditPost(ctx context.Context, pathPostID int64, request EditPostRequest, principalID int64) (*data.Post, error) {
	if request.ID != pathPostID {
		return nil, xerrors.New(ErrForbidden)
	}
	if request.OwnerID != principalID {
		return nil, xerrors.New(ErrForbidden)
	}

	stored, err := c.posts.GetByID(ctx, pathPostID)
	if err != nil {
		return nil, err
	}
	if stored.OwnerID != principalID {
		return nil, xerrors.New(ErrForbidden)
	}

	html, err := c.markdown.ToHTML(ctx, request.Content)
	if err != nil {
		return nil, err
	}

	post := &data.Post{
		ID:        request.ID,
		Title:     request.Title,
		Content:   html,
		OwnerID:   stored.OwnerID,
		CreatedOn: stored.CreatedOn,
		Tags:      request.Tags,
		Published: request.Published,
	}

	updatedPost, err := databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*data.Post, error) {
		updated, err := c.posts.Update(txCtx, post)
		if err != nil {
			return nil, err
		}
		return updated, c.activity.Insert(txCtx, "edit_post", updated.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := c.cache.Del(ctx, postCacheKey(pathPostID, stored.OwnerID)); err != nil {
		c.log.Warn("failed to invalidate post cache", "post_id", pathPostID, "error", err.Error())
	}

	c.log.Info("Post updated", "post_id", updatedPost.ID, "owner_id", principalID)
	return updatedPost, nil
}

// GetPostForOwner returns the post only when both id and owner match, to
// prevent cross-user leakage in per-user detail views. Reads are
// cache-aside on a key scoped to the owner, so a hit can never leak a
// post across users; EditPost invalidates the same key.
func (c *Core) GetPostForOwner(ctx context.Context, id, ownerID int64) (*data.Post, error) {
	key := postCacheKey(id, ownerID)

	var cached data.Post
	found, err := c.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		c.log.Warn("post cache read failed", "post_id", id, "error", err.Error())
	}
	if err == nil && found {
		return &cached, nil
	}

	post, err := c.posts.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetJSON(ctx, key, post); err != nil {
		c.log.Warn("post cache write failed", "post_id", id, "error", err.Error())
	}

	return post, nil
}

// ListPosts returns one page of the owner's published posts. The page size
// is clamped to filter.MaxPageSize and the offset is computed from the
// clamped size.
func (c *Core) ListPosts(ctx context.Context, ownerID, page, pageSize int64) (data.Page[*data.Post], error) {
	filters := filter.NewFilter(page, pageSize)
	return c.posts.FindPage(ctx, ownerID, filters)
}

func (c *Core) PostsByTag(ctx context.Context, ownerID int64, tag string) ([]*data.Post, error) {
	return c.posts.FindByTag(ctx, ownerID, tag)
}

func postCacheKey(id, ownerID int64) string {
	return fmt.Sprintf("post:%d:owner:%d", id, ownerID)
}
