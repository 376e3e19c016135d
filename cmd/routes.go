package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)

	// Not require authentication for these routes
	router.HandlerFunc(http.MethodPost, "/api/user", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/api/token", app.createTokenHandler)
	router.HandlerFunc(http.MethodGet, "/api/user/:user_id", app.getUserHandler)
	router.HandlerFunc(http.MethodGet, "/api/user/:user_id/post", app.listPostsHandler)
	router.HandlerFunc(http.MethodGet, "/api/user/:user_id/post/:post_id", app.getPostHandler)
	router.HandlerFunc(http.MethodGet, "/api/user/:user_id/tag/:tag", app.postsByTagHandler)

	// Require a token whose principal matches the path user
	router.HandlerFunc(http.MethodPost, "/api/user/:user_id/post", app.requireMatchingUser(app.createPostHandler))
	router.HandlerFunc(http.MethodPut, "/api/user/:user_id/post/:post_id", app.requireMatchingUser(app.editPostHandler))

	return app.requestID(app.recoverPanic(app.authenticate(router)))
}
