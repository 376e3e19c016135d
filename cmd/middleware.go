package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mdobak/go-xerrors"
)

// authenticate resolves a bearer token into the principal user id. Requests
// without a token pass through unauthenticated; the require* middlewares
// decide whether that matters.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authorization := r.Header.Get("Authorization")
		if authorization != "" {
			authorizationParts := strings.Split(authorization, " ")
			if len(authorizationParts) != 2 || authorizationParts[0] != "Bearer" {
				app.invalidAuthenticationTokenResponse(w, r, xerrors.New("Authorization header must be in the format 'Bearer <token>'"))
				return
			}

			token := authorizationParts[1]
			principalID, err := app.auth.Authenticate(token)
			if err != nil {
				app.invalidAuthenticationTokenResponse(w, r, err)
				return
			}

			r = app.auth.SetPrincipal(r, principalID)
		}

		next.ServeHTTP(w, r)
	})
}

func (app *application) requireAuthenticatedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !app.auth.IsUserAuthenticated(r) {
			app.authenticationRequiredResponse(w, r, xerrors.Newf("authentication required"))
			return
		}
		next(w, r)
	}
}

// requireMatchingUser additionally requires the path user_id to equal the
// authenticated principal, so a valid token cannot act on another user's
// resources.
func (app *application) requireMatchingUser(next http.HandlerFunc) http.HandlerFunc {
	return app.requireAuthenticatedUser(func(w http.ResponseWriter, r *http.Request) {
		userID, err := app.readIDParam(r, "user_id")
		if err != nil {
			app.notFoundResponse(w, r)
			return
		}

		principalID, err := app.auth.GetPrincipal(r)
		if err != nil {
			app.authenticationRequiredResponse(w, r, err)
			return
		}

		if userID != principalID {
			app.forbiddenResponse(w, r, xerrors.Newf("principal %d does not match path user %d", principalID, userID))
			return
		}

		next(w, r)
	})
}

func (app *application) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		app.logger.Debug("Handling request",
			"request_id", id,
			"request_method", r.Method,
			"request_url", r.URL.String(),
		)

		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.internalErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
