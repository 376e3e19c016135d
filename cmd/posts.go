package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/martinkb/blog/internal/core"
	"github.com/martinkb/blog/internal/data"
	"github.com/martinkb/blog/internal/filter"
	"github.com/martinkb/blog/internal/validator"
)

// normalizeTags trims every tag and validates the trimmed values, so
// "work" and " work" count as the same tag no matter which handler the
// payload arrived through.
func normalizeTags(tags []string, v *validator.Validator) []string {
	trimmed := make([]string, len(tags))
	for i, tag := range tags {
		trimmed[i] = strings.TrimSpace(tag)
		v.CheckNotBlank(trimmed[i], "tags", "must not contain blank tags")
	}
	v.Check(v.IsUnique(trimmed), "tags", "must not contain duplicate tags")
	return trimmed
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	type createPostPayload struct {
		Title     string    `json:"title"`
		Content   string    `json:"content"`
		Tags      []string  `json:"tags"`
		CreatedOn time.Time `json:"created_on"`
		Published bool      `json:"published"`
	}

	var requestPayload createPostPayload

	if err := app.readJSON(w, r, &requestPayload); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	v.CheckNotBlank(requestPayload.Title, "title", "must be provided")
	v.CheckNotBlank(requestPayload.Content, "content", "must be provided")
	tags := normalizeTags(requestPayload.Tags, v)

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	// requireMatchingUser already proved the principal equals the path user.
	principalID, err := app.auth.GetPrincipal(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	post, err := app.core.CreatePost(r.Context(), core.CreatePostRequest{
		Title:     requestPayload.Title,
		Content:   requestPayload.Content,
		Tags:      tags,
		CreatedOn: requestPayload.CreatedOn,
		Published: requestPayload.Published,
	}, principalID)

	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeResult(w, http.StatusCreated, post); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "user_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	postID, err := app.readIDParam(r, "post_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	post, err := app.core.GetPostForOwner(r.Context(), postID, userID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.writeResult(w, http.StatusOK, post); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "user_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	v := validator.New()
	query := r.URL.Query()
	page := app.readInt(query, "page", 0, v)
	pageSize := app.readInt(query, "page_size", 20, v)

	filter.ValidateFilters(filter.NewFilter(page, pageSize), v)
	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	postsPage, err := app.core.ListPosts(r.Context(), userID, page, pageSize)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeResult(w, http.StatusOK, postsPage); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) editPostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "post_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	type editPostPayload struct {
		ID        int64    `json:"id"`
		Title     string   `json:"title"`
		Content   string   `json:"content"`
		Tags      []string `json:"tags"`
		OwnerID   int64    `json:"owner_id"`
		Published bool     `json:"published"`
	}

	var requestPayload editPostPayload

	if err := app.readJSON(w, r, &requestPayload); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	v.CheckNotBlank(requestPayload.Title, "title", "must be provided")
	v.CheckNotBlank(requestPayload.Content, "content", "must be provided")
	tags := normalizeTags(requestPayload.Tags, v)

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	principalID, err := app.auth.GetPrincipal(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	post, err := app.core.EditPost(r.Context(), postID, core.EditPostRequest{
		ID:        requestPayload.ID,
		Title:     requestPayload.Title,
		Content:   requestPayload.Content,
		Tags:      tags,
		OwnerID:   requestPayload.OwnerID,
		Published: requestPayload.Published,
	}, principalID)

	if err != nil {
		switch {
		case errors.Is(err, core.ErrForbidden):
			app.forbiddenResponse(w, r, err)
			return
		case errors.Is(err, data.ErrNoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.writeResult(w, http.StatusOK, post); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) postsByTagHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "user_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	tag := app.readPathParam(r, "tag")
	if strings.TrimSpace(tag) == "" {
		app.notFoundResponse(w, r)
		return
	}

	posts, err := app.core.PostsByTag(r.Context(), userID, tag)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeResult(w, http.StatusOK, posts); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}
