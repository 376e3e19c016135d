package data

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/mdobak/go-xerrors"

	"github.com/martinkb/blog/internal/filter"
	"github.com/martinkb/blog/internal/utils/databaseutils"
)

type PostModel struct {
	sqlTemplate *databaseutils.SQLTemplate
	log         *slog.Logger
}

// Insert assigns the store-generated id to post.ID. CreatedOn defaults to
// now when unset. An owner id that references no user surfaces as
// ErrForeignKeyViolation. Tags are written atomically with the row as a
// text[] column.
func (postModel PostModel) Insert(ctx context.Context, post *Post) error {
	if post.CreatedOn.IsZero() {
		post.CreatedOn = time.Now().UTC()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	query := `
		INSERT INTO posts (title, content, owner_id, created_on, tags, published)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	args := []any{post.Title, post.Content, post.OwnerID, post.CreatedOn, pq.Array(post.Tags), post.Published}
	_, err := databaseutils.ExecuteSingleQuery(postModel.sqlTemplate, ctx, query, func(rows *sql.Rows) (*Post, error) {
		if err := rows.Scan(&post.ID); err != nil {
			return nil, xerrors.New(err)
		}
		return post, nil
	}, args...)

	if err != nil {
		var pqErr *pq.Error
		switch {
		case errors.As(err, &pqErr) && pqErr.Code == "23503":
			return xerrors.New(ErrForeignKeyViolation)
		default:
			return xerrors.New(err)
		}
	}

	return nil
}

// GetByID performs no ownership filtering. Authorization belongs to the
// service and handler boundary.
func (postModel PostModel) GetByID(ctx context.Context, id int64) (*Post, error) {
	query := `
		SELECT id, title, content, owner_id, created_on, tags, published
		FROM posts
		WHERE id = $1
	`

	post, err := databaseutils.ExecuteSingleQuery(postModel.sqlTemplate, ctx, query, scanPost, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(ErrNoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return post, nil
}

func (postModel PostModel) GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*Post, error) {
	query := `
		SELECT id, title, content, owner_id, created_on, tags, published
		FROM posts
		WHERE id = $1 AND owner_id = $2
	`

	post, err := databaseutils.ExecuteSingleQuery(postModel.sqlTemplate, ctx, query, scanPost, id, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(ErrNoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return post, nil
}

// FindPage returns one slice of the owner's published posts. It trusts the
// limit and offset in filters; clamping happens in the service layer. The
// total row count rides along as a window function so NumPages is exact
// without a second query.
func (postModel PostModel) FindPage(ctx context.Context, ownerID int64, filters filter.Filter) (Page[*Post], error) {
	query := `
		SELECT count(*) OVER(), id, title, content, owner_id, created_on, tags, published
		FROM posts
		WHERE owner_id = $1 AND published = true
		ORDER BY created_on DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	var totalRecords int64
	posts, err := databaseutils.ExecuteQuery(postModel.sqlTemplate, ctx, query, func(rows *sql.Rows) (*Post, error) {
		var post = &Post{}
		var tags pq.StringArray

		if err := rows.Scan(
			&totalRecords,
			&post.ID,
			&post.Title,
			&post.Content,
			&post.OwnerID,
			&post.CreatedOn,
			&tags,
			&post.Published,
		); err != nil {
			return nil, xerrors.New(err)
		}
		post.Tags = tags
		return post, nil
	}, ownerID, filters.Limit(), filters.Offset())

	if err != nil {
		return Page[*Post]{}, xerrors.New(err)
	}

	numPages := int64(0)
	if filters.PageSize > 0 {
		numPages = (totalRecords + filters.PageSize - 1) / filters.PageSize
	}

	return NewPage(posts, filters.Page, numPages, filters.PageSize), nil
}

// FindByTag returns every post of the owner whose tag array contains the
// given tag, exact and case-sensitive. No pagination.
func (postModel PostModel) FindByTag(ctx context.Context, ownerID int64, tag string) ([]*Post, error) {
	query := `
		SELECT id, title, content, owner_id, created_on, tags, published
		FROM posts
		WHERE owner_id = $1 AND tags @> ARRAY[$2]::text[]
		ORDER BY created_on DESC, id DESC
	`

	posts, err := databaseutils.ExecuteQuery(postModel.sqlTemplate, ctx, query, scanPost, ownerID, tag)
	if err != nil {
		return nil, xerrors.New(err)
	}

	if posts == nil {
		posts = []*Post{}
	}
	return posts, nil
}

// Update writes the full row by primary key. It performs no ownership
// check; the caller verifies the principal owns the post before calling.
func (postModel PostModel) Update(ctx context.Context, post *Post) (*Post, error) {
	query := `
		UPDATE posts
		SET title = $1, content = $2, tags = $3, published = $4
		WHERE id = $5
		RETURNING id, title, content, owner_id, created_on, tags, published
	`

	args := []any{post.Title, post.Content, pq.Array(post.Tags), post.Published, post.ID}
	updatedPost, err := databaseutils.ExecuteSingleQuery(postModel.sqlTemplate, ctx, query, scanPost, args...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(ErrNoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return updatedPost, nil
}

func scanPost(rows *sql.Rows) (*Post, error) {
	var post = &Post{}
	var tags pq.StringArray

	if err := rows.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.OwnerID,
		&post.CreatedOn,
		&tags,
		&post.Published,
	); err != nil {
		return nil, xerrors.New(err)
	}
	post.Tags = tags
	return post, nil
}
