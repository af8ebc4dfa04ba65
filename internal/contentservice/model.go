package contentservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrEditConflict   = errors.New("edit conflict")
)

func newContentModel(db *sql.DB) *ContentModel {
	return &ContentModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// txGetBlog reads a blog inside the transaction, without the creator join
// used by the public read path.
func (m *ContentModel) txGetBlog(tx *sql.Tx, ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT id, title, description, image, user_id, comment_ids, created_at, updated_at, version
		FROM blogs
		WHERE id = $1`

	var blog Blog
	err := tx.QueryRowContext(ctx, query, id).Scan(&blog.ID, &blog.Title, &blog.Description, &blog.Image, &blog.UserID, pq.Array(&blog.CommentIDs), &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

func (m *ContentModel) txGetComment(tx *sql.Tx, ctx context.Context, id int) (*Comment, error) {
	query := `
		SELECT id, comment, user_id, blog_id, response_to_user_id, created_at, updated_at
		FROM comments
		WHERE id = $1`

	var c Comment
	err := tx.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Text, &c.UserID, &c.BlogID, &c.ResponseToUserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

// txGetBlogComments enumerates every comment attached to a blog in id order so
// the resolver sees a deterministic snapshot.
func (m *ContentModel) txGetBlogComments(tx *sql.Tx, ctx context.Context, blogID int) ([]Comment, error) {
	query := `
		SELECT id, comment, user_id, blog_id, response_to_user_id, created_at, updated_at
		FROM comments
		WHERE blog_id = $1
		ORDER BY id`

	rows, err := tx.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		err := rows.Scan(&c.ID, &c.Text, &c.UserID, &c.BlogID, &c.ResponseToUserID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// txLiveUsers reports which of the given user ids still exist. The resolver
// skips back-reference splices against users that are gone.
func (m *ContentModel) txLiveUsers(tx *sql.Tx, ctx context.Context, ids []int) (map[int]bool, error) {
	live := make(map[int]bool, len(ids))
	if len(ids) == 0 {
		return live, nil
	}

	query := `
		SELECT id
		FROM users
		WHERE id = ANY($1)`

	rows, err := tx.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		live[id] = true
	}

	return live, rows.Err()
}

func (m *ContentModel) txUserExists(tx *sql.Tx, ctx context.Context, id int) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (m *ContentModel) txInsertBlog(tx *sql.Tx, ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blogs (title, description, image, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at, version`

	err := tx.QueryRowContext(ctx, query, blog.Title, blog.Description, blog.Image, blog.UserID).Scan(&blog.ID, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blogs_user_id_fkey"):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *ContentModel) txUpdateBlog(tx *sql.Tx, ctx context.Context, blog *Blog) error {
	query := `
		UPDATE blogs
		SET title = $1, description = $2, updated_at = now(), version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version, created_at, updated_at`

	err := tx.QueryRowContext(ctx, query, blog.Title, blog.Description, blog.ID, blog.Version).Scan(&blog.Version, &blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}

	return nil
}

func (m *ContentModel) txInsertComment(tx *sql.Tx, ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (comment, user_id, blog_id, response_to_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := tx.QueryRowContext(ctx, query, c.Text, c.UserID, c.BlogID, c.ResponseToUserID).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		switch {
		case ForeignKeyError(err, "comments_blog_id_fkey"):
			return ErrRecordNotFound
		case ForeignKeyError(err, "comments_user_id_fkey"):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// applyEdit executes a single resolved edit. Every statement that must touch
// exactly one row verifies its row count so a silently missed edit aborts the
// transaction instead of committing a partial cascade.
func (m *ContentModel) applyEdit(tx *sql.Tx, ctx context.Context, e edit) error {
	var query string
	var args []any

	switch e.op {
	case opDeleteBlog:
		query = `DELETE FROM blogs WHERE id = $1`
		args = []any{e.id}
	case opDeleteComment:
		query = `DELETE FROM comments WHERE id = $1`
		args = []any{e.id}
	case opPushUserBlog:
		query = `UPDATE users SET blog_ids = array_append(blog_ids, $1), updated_at = now(), version = version + 1 WHERE id = $2`
		args = []any{e.id, e.ownerID}
	case opPullUserBlog:
		query = `UPDATE users SET blog_ids = array_remove(blog_ids, $1), updated_at = now(), version = version + 1 WHERE id = $2`
		args = []any{e.id, e.ownerID}
	case opPushUserComment:
		query = `UPDATE users SET comment_ids = array_append(comment_ids, $1), updated_at = now(), version = version + 1 WHERE id = $2`
		args = []any{e.id, e.ownerID}
	case opPullUserComment:
		query = `UPDATE users SET comment_ids = array_remove(comment_ids, $1), updated_at = now(), version = version + 1 WHERE id = $2`
		args = []any{e.id, e.ownerID}
	case opPushBlogComment:
		query = `UPDATE blogs SET comment_ids = array_append(comment_ids, $1), updated_at = now() WHERE id = $2`
		args = []any{e.id, e.ownerID}
	case opPullBlogComment:
		query = `UPDATE blogs SET comment_ids = array_remove(comment_ids, $1), updated_at = now() WHERE id = $2`
		args = []any{e.id, e.ownerID}
	default:
		return fmt.Errorf("unknown edit op %d", e.op)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 1 {
		return fmt.Errorf("edit %+v affected %d rows, want 1", e, rows)
	}

	return nil
}

func (m *ContentModel) applyEdits(tx *sql.Tx, ctx context.Context, edits []edit) error {
	for _, e := range edits {
		if err := m.applyEdit(tx, ctx, e); err != nil {
			return err
		}
	}

	return nil
}

// getBlogById serves the public read path, joining the users table for the
// creator's name and avatar.
func (m *ContentModel) getBlogById(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT b.id, b.title, b.description, b.image, b.user_id, b.comment_ids, b.created_at, b.updated_at, b.version, u.name, u.avatar
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.id = $1`

	var blog Blog
	err := m.db.QueryRowContext(ctx, query, id).Scan(&blog.ID, &blog.Title, &blog.Description, &blog.Image, &blog.UserID, pq.Array(&blog.CommentIDs), &blog.CreatedAt, &blog.UpdatedAt, &blog.Version, &blog.User.Name, &blog.User.Avatar)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	blog.User.ID = blog.UserID

	return &blog, nil
}

// getBlogs returns all blogs sorted by most recently updated, paginated.
func (m *ContentModel) getBlogs(ctx context.Context, limit, offset int) ([]Blog, error) {
	query := `
		SELECT b.id, b.title, b.description, b.image, b.user_id, b.comment_ids, b.created_at, b.updated_at, b.version, u.name, u.avatar
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		ORDER BY b.updated_at DESC, b.id DESC
		LIMIT $1 OFFSET $2`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blogs []Blog
	for rows.Next() {
		var blog Blog
		err := rows.Scan(&blog.ID, &blog.Title, &blog.Description, &blog.Image, &blog.UserID, pq.Array(&blog.CommentIDs), &blog.CreatedAt, &blog.UpdatedAt, &blog.Version, &blog.User.Name, &blog.User.Avatar)
		if err != nil {
			return nil, err
		}
		blog.User.ID = blog.UserID
		blogs = append(blogs, blog)
	}

	return blogs, rows.Err()
}

func (m *ContentModel) getCommentsByBlogId(ctx context.Context, blogID int) ([]Comment, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM blogs WHERE id = $1)`, blogID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT c.id, c.comment, c.user_id, c.blog_id, c.response_to_user_id, c.created_at, c.updated_at, u.name, u.avatar
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.blog_id = $1
		ORDER BY c.id`

	rows, err := m.db.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		err := rows.Scan(&c.ID, &c.Text, &c.UserID, &c.BlogID, &c.ResponseToUserID, &c.CreatedAt, &c.UpdatedAt, &c.User.Name, &c.User.Avatar)
		if err != nil {
			return nil, err
		}
		c.User.ID = c.UserID
		comments = append(comments, c)
	}

	return comments, rows.Err()
}
