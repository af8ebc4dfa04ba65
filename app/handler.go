package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/karasuhime/inkwell/internal/common"
	"github.com/karasuhime/inkwell/internal/contentservice"
	"github.com/karasuhime/inkwell/internal/userservice"
)

type registerUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input registerUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.RegisterUser(r.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.failedValidationErrorResponse(w, r, map[string]string{"email": "a user with this email address already exists"})
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type loginUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input loginUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	token, err := app.userService.LoginUser(r.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrAuthenticationFailure):
			app.invalidCredentialsErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"token": token}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.contextGetUser(r)

	err := app.userService.LogoutUser(r.Context(), user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "user logged out"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.GetUserByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// createBlogHandler accepts a multipart form so a cover image can be uploaded
// together with the blog fields.
func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	const maxUploadSize = 10 << 20

	err := r.ParseMultipartForm(maxUploadSize)
	if err != nil {
		app.badRequestErrorResponse(w, r, errors.New("request body must be a valid multipart form"))
		return
	}

	user := app.contextGetUser(r)

	var image string

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()

		image, err = app.blobs.Save(r.Context(), file, filepath.Ext(header.Filename))
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	case errors.Is(err, http.ErrMissingFile):
		// the cover image is optional
	default:
		app.badRequestErrorResponse(w, r, err)
		return
	}

	req := &contentservice.CreateBlogRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Image:       image,
		UserID:      user.ID,
	}

	blog, err := app.contentService.CreateBlog(r.Context(), req)
	if err != nil {
		// the blog row was never written, so the upload is orphaned
		if image != "" {
			if delErr := app.blobs.Delete(r.Context(), image); delErr != nil {
				app.logError(r, delErr)
			}
		}

		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		case errors.Is(err, contentservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, contentservice.ErrTransactionFailure):
			app.transactionFailureResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.contentService.GetBlogByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, contentservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getAllBlogsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, err := app.contentService.GetBlogs(r.Context(), limit, offset)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type updateBlogRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input updateBlogRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.contextGetUser(r)

	req := &contentservice.UpdateBlogRequest{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		UserID:      user.ID,
	}

	blog, err := app.contentService.UpdateBlog(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, contentservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, contentservice.ErrNotOwner):
			app.unAuthorizedErrorResponse(w, r)
		case errors.Is(err, contentservice.ErrEditConflict):
			app.writeErrorResponse(w, r, http.StatusConflict, "unable to update the record due to an edit conflict, please try again")
		case errors.Is(err, contentservice.ErrTransactionFailure):
			app.transactionFailureResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.contextGetUser(r)

	err = app.contentService.DeleteBlog(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, contentservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, contentservice.ErrNotOwner):
			app.unAuthorizedErrorResponse(w, r)
		case errors.Is(err, contentservice.ErrTransactionFailure):
			app.transactionFailureResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "blog deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getBlogCommentsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	comments, err := app.contentService.GetBlogComments(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, contentservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"comments": comments}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type createCommentRequest struct {
	Comment          string `json:"comment"`
	ResponseToUserID *int   `json:"response_to_user_id"`
}

func (app *application) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	blogID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input createCommentRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.contextGetUser(r)

	req := &contentservice.CreateCommentRequest{
		Text:             input.Comment,
		BlogID:           blogID,
		UserID:           user.ID,
		ResponseToUserID: input.ResponseToUserID,
	}

	comment, err := app.contentService.CreateComment(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, contentservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, contentservice.ErrTransactionFailure):
			app.transactionFailureResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"comment": comment}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.contextGetUser(r)

	err = app.contentService.DeleteComment(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, contentservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, contentservice.ErrNotOwner):
			app.unAuthorizedErrorResponse(w, r)
		case errors.Is(err, contentservice.ErrTransactionFailure):
			app.transactionFailureResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "comment deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type subscribeNewsletterRequest struct {
	Email string `json:"email"`
}

func (app *application) subscribeNewsletterHandler(w http.ResponseWriter, r *http.Request) {
	var input subscribeNewsletterRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	v := common.NewValidator()
	v.Check(input.Email != "", "email", "must be provided")
	v.Check(userservice.EmailRX.MatchString(input.Email), "email", "must be a valid email address")
	if !v.Valid() {
		app.failedValidationErrorResponse(w, r, v.Errors)
		return
	}

	msg, err := json.Marshal(input)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.broker.Publish(r.Context(), msg, common.NewsletterSubscribedKey, common.MailExchange)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusAccepted, envelope{"message": "confirmation email on its way"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (app *application) contactHandler(w http.ResponseWriter, r *http.Request) {
	var input contactRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	v := common.NewValidator()
	v.Check(input.Name != "", "name", "must be provided")
	v.Check(input.Email != "", "email", "must be provided")
	v.Check(userservice.EmailRX.MatchString(input.Email), "email", "must be a valid email address")
	v.Check(input.Subject != "", "subject", "must be provided")
	v.Check(input.Message != "", "message", "must be provided")
	if !v.Valid() {
		app.failedValidationErrorResponse(w, r, v.Errors)
		return
	}

	msg, err := json.Marshal(input)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.broker.Publish(r.Context(), msg, common.ContactMessageKey, common.MailExchange)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusAccepted, envelope{"message": "message received"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
