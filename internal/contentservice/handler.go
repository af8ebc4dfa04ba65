package contentservice

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/karasuhime/inkwell/internal/blobstore"
	"github.com/karasuhime/inkwell/internal/common"
)

func NewContentService(db *sql.DB, c *common.Cache, blobs blobstore.Store, logger *slog.Logger) *ContentService {
	return &ContentService{
		m:      newContentModel(db),
		c:      c,
		blobs:  blobs,
		logger: logger,
	}
}

type CreateBlogRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	UserID      int    `json:"user_id"`
}

// CreateBlog creates a blog owned by the requesting user and appends its id
// to the user's blog back-references, all in one transaction.
func (s *ContentService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateDescription(v, req.Description)
	validateInt(v, req.UserID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog := &Blog{
		Title:       req.Title,
		Description: sanitizeMarkdown(req.Description),
		Image:       req.Image,
		UserID:      req.UserID,
		CommentIDs:  []int{},
	}

	err := s.m.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		exists, err := s.m.txUserExists(tx, ctx, req.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrRecordNotFound
		}

		if err := s.m.txInsertBlog(tx, ctx, blog); err != nil {
			return err
		}

		return s.m.applyEdits(tx, ctx, resolveBlogInsert(blog.ID, blog.UserID))
	})
	if err != nil {
		return nil, err
	}

	s.c.Flush()

	return blog, nil
}

type UpdateBlogRequest struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      int    `json:"user_id"`
}

// UpdateBlog updates a blog's title and description. Only the creator may
// update it; the read-modify-write runs inside one transaction.
func (s *ContentService) UpdateBlog(ctx context.Context, req *UpdateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateDescription(v, req.Description)
	validateInt(v, req.ID, "id")
	validateInt(v, req.UserID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	var blog *Blog
	err := s.m.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		blog, err = s.m.txGetBlog(tx, ctx, req.ID)
		if err != nil {
			return err
		}

		if !authorize(req.UserID, blog.UserID) {
			return ErrNotOwner
		}

		blog.Title = req.Title
		blog.Description = sanitizeMarkdown(req.Description)

		return s.m.txUpdateBlog(tx, ctx, blog)
	})
	if err != nil {
		return nil, err
	}

	s.c.Flush()

	return blog, nil
}

// DeleteBlog deletes a blog together with every comment attached to it and
// all back-references held by the authors involved. The cascade is resolved
// against a snapshot taken inside the transaction and committed atomically;
// the blog image is reclaimed best-effort after the commit.
func (s *ContentService) DeleteBlog(ctx context.Context, blogID, userID int) error {
	v := common.NewValidator()
	validateInt(v, blogID, "id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	var image string
	err := s.m.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		blog, err := s.m.txGetBlog(tx, ctx, blogID)
		if err != nil {
			return err
		}

		if !authorize(userID, blog.UserID) {
			return ErrNotOwner
		}

		comments, err := s.m.txGetBlogComments(tx, ctx, blogID)
		if err != nil {
			return err
		}

		userIDs := make([]int, 0, len(comments)+1)
		userIDs = append(userIDs, blog.UserID)
		for _, c := range comments {
			userIDs = append(userIDs, c.UserID)
		}

		liveUsers, err := s.m.txLiveUsers(tx, ctx, userIDs)
		if err != nil {
			return err
		}

		image = blog.Image

		return s.m.applyEdits(tx, ctx, resolveBlogDelete(blog, comments, liveUsers))
	})
	if err != nil {
		return err
	}

	s.c.Flush()

	// the graph edit is committed; a failed image cleanup is logged, never
	// surfaced to the caller
	if image != "" {
		if err := s.blobs.Delete(ctx, image); err != nil {
			s.logger.Error("could not delete blog image", slog.Int("blog_id", blogID), slog.String("image", image), slog.String("error", err.Error()))
		}
	}

	return nil
}

type CreateCommentRequest struct {
	Text             string `json:"comment"`
	BlogID           int    `json:"blog_id"`
	UserID           int    `json:"user_id"`
	ResponseToUserID *int   `json:"response_to_user_id"`
}

// CreateComment attaches a comment to a blog and appends its id to both the
// blog's and the author's back-references in one transaction. Racing a
// DeleteBlog on the same blog either fails here with ErrRecordNotFound or
// commits first and is swept up by the delete cascade.
func (s *ContentService) CreateComment(ctx context.Context, req *CreateCommentRequest) (*Comment, error) {
	v := common.NewValidator()
	validateCommentText(v, req.Text)
	validateInt(v, req.BlogID, "blog_id")
	validateInt(v, req.UserID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	comment := &Comment{
		Text:             req.Text,
		BlogID:           req.BlogID,
		UserID:           req.UserID,
		ResponseToUserID: req.ResponseToUserID,
	}

	err := s.m.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.m.txGetBlog(tx, ctx, req.BlogID); err != nil {
			return err
		}

		exists, err := s.m.txUserExists(tx, ctx, req.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrRecordNotFound
		}

		if err := s.m.txInsertComment(tx, ctx, comment); err != nil {
			return err
		}

		return s.m.applyEdits(tx, ctx, resolveCommentInsert(comment.ID, comment.BlogID, comment.UserID))
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBlog(req.BlogID)

	return comment, nil
}

// DeleteComment removes a comment and splices its id out of the parent
// blog's and the author's back-references. Only the author may delete it.
func (s *ContentService) DeleteComment(ctx context.Context, commentID, userID int) error {
	v := common.NewValidator()
	validateInt(v, commentID, "id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	var blogID int

	err := s.m.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		comment, err := s.m.txGetComment(tx, ctx, commentID)
		if err != nil {
			return err
		}

		if !authorize(userID, comment.UserID) {
			return ErrNotOwner
		}

		authorLive, err := s.m.txUserExists(tx, ctx, comment.UserID)
		if err != nil {
			return err
		}

		blogID = comment.BlogID

		return s.m.applyEdits(tx, ctx, resolveCommentDelete(comment, authorLive))
	})
	if err != nil {
		return err
	}

	s.invalidateBlog(blogID)

	return nil
}

// invalidateBlog drops the cached entries touched by a comment mutation.
// Blog-level mutations change the listing pages as well and flush the whole
// cache instead; cached listings tolerate a stale comment count until they
// expire.
func (s *ContentService) invalidateBlog(blogID int) {
	s.c.Delete(common.CacheKeyBlog(blogID))
	s.c.Delete(common.CacheKeyBlogComments(blogID))
}

// GetBlogByID returns a blog with its creator's public profile.
func (s *ContentService) GetBlogByID(ctx context.Context, id int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyBlog(id)); ok {
		return cached.(*Blog), nil
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlog(id), blog)

	return blog, nil
}

// GetBlogs returns blogs sorted by most recent update. A nil or non-positive
// limit falls back to 10; a nil or negative offset falls back to 0.
func (s *ContentService) GetBlogs(ctx context.Context, limit, offset *int) ([]Blog, error) {
	l, o := 10, 0
	if limit != nil && *limit > 0 {
		l = *limit
	}
	if offset != nil && *offset > 0 {
		o = *offset
	}

	if cached, ok := s.c.Get(common.CacheKeyBlogs(l, o)); ok {
		return cached.([]Blog), nil
	}

	blogs, err := s.m.getBlogs(ctx, l, o)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlogs(l, o), blogs)

	return blogs, nil
}

// GetBlogComments returns every comment on a blog in posting order.
func (s *ContentService) GetBlogComments(ctx context.Context, blogID int) ([]Comment, error) {
	v := common.NewValidator()
	validateInt(v, blogID, "blog_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyBlogComments(blogID)); ok {
		return cached.([]Comment), nil
	}

	comments, err := s.m.getCommentsByBlogId(ctx, blogID)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlogComments(blogID), comments)

	return comments, nil
}
