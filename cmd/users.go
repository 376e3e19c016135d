package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/martinkb/blog/internal/core"
	"github.com/martinkb/blog/internal/data"
	"github.com/martinkb/blog/internal/validator"
)

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	type registerUserPayload struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	var registerUserRequest registerUserPayload

	if err := app.readJSON(w, r, &registerUserRequest); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	registerUserRequest.Name = strings.TrimSpace(registerUserRequest.Name)

	v := validator.New()
	v.CheckNotBlank(registerUserRequest.Name, "name", "must be provided")
	v.Check(len(registerUserRequest.Name) >= 3, "name", "must be at least 3 characters long")
	v.CheckNotBlank(registerUserRequest.Password, "password", "must be provided")
	v.Check(len(registerUserRequest.Password) >= 8, "password", "must be at least 8 characters long")

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	user, err := app.core.Register(r.Context(), registerUserRequest.Name, registerUserRequest.Password)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateUsername):
			v.AddError("name", "Name is already in use")
			app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors, ErrorStack: err})
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.writeResult(w, http.StatusCreated, user); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	type credentialsPayload struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	var credentials credentialsPayload

	if err := app.readJSON(w, r, &credentials); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	v.CheckNotBlank(credentials.Name, "name", "must be provided")
	v.CheckNotBlank(credentials.Password, "password", "must be provided")

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	token, err := app.core.Authenticate(r.Context(), credentials.Name, credentials.Password)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidCredentials):
			app.badRequestResponse(w, r, &AppError{
				ErrorMessage: "Invalid credentials",
				ErrorStack:   err,
			})
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.writeResult(w, http.StatusOK, envelope{"token": token}); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "user_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	user, err := app.core.GetUser(r.Context(), userID)
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

	if err := app.writeResult(w, http.StatusOK, user); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}
