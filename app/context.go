package main

import (
	"context"
	"net/http"

	"github.com/karasuhime/inkwell/internal/userservice"
)

type contextKey string

// userContextKey carries the authenticated actor. The authenticate middleware
// always sets it, to the anonymous user when no token was presented.
const userContextKey = contextKey("user")

func (app *application) contextSetUser(r *http.Request, user *userservice.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

func (app *application) contextGetUser(r *http.Request) *userservice.User {
	user, ok := r.Context().Value(userContextKey).(*userservice.User)
	if !ok {
		return nil
	}
	return user
}
