package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/v1/users/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/logout", app.requireAuthUser(app.logoutUserHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/:id", app.getUserHandler)

	// content service
	router.HandlerFunc(http.MethodGet, "/v1/blogs", app.getAllBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/:id/comments", app.getBlogCommentsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs/:id/comments", app.requireAuthUser(app.createCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/comments/:id", app.requireAuthUser(app.deleteCommentHandler))

	// mail service
	router.HandlerFunc(http.MethodPost, "/v1/newsletter", app.subscribeNewsletterHandler)
	router.HandlerFunc(http.MethodPost, "/v1/contact", app.contactHandler)

	return app.recoverPanic(app.rateLimit(app.enableCORS(app.logRequest(app.authenticate(router)))))
}
