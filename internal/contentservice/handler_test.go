package contentservice

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/karasuhime/inkwell/internal/blobstore"
	"github.com/karasuhime/inkwell/internal/common"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTestEnvironment(t *testing.T) (*ContentService, *sql.DB, *blobstore.MockStore, func() error) {
	db := common.TestDB("file://../../migrations", t)
	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	blobs := new(blobstore.MockStore)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cleanup := func() error {
		for _, stmt := range []string{
			"DELETE FROM comments",
			"DELETE FROM blogs",
			"DELETE FROM users",
		} {
			if _, err := db.Exec(stmt); err != nil {
				return err
			}
		}

		cache.Flush()

		return nil
	}

	return NewContentService(db, cache, blobs, logger), db, blobs, cleanup
}

func createTestUser(t *testing.T, db *sql.DB, name, email string) int {
	t.Helper()

	var id int
	err := db.QueryRow(`
		INSERT INTO users (name, email, password, avatar)
		VALUES ($1, $2, $3, '')
		RETURNING id`, name, email, []byte("x")).Scan(&id)
	if err != nil {
		t.Fatalf("could not create test user: %v", err)
	}

	return id
}

// assertGraphInvariants checks that every back-reference array exactly
// mirrors the authoritative user_id/blog_id columns.
func assertGraphInvariants(t *testing.T, db *sql.DB) {
	t.Helper()

	rows, err := db.Query(`SELECT id, blog_ids, comment_ids FROM users`)
	assert.NoError(t, err)
	defer rows.Close()

	for rows.Next() {
		var id int
		var blogIDs, commentIDs []int64
		assert.NoError(t, rows.Scan(&id, pq.Array(&blogIDs), pq.Array(&commentIDs)))

		assert.ElementsMatch(t, queryIDs(t, db, `SELECT id FROM blogs WHERE user_id = $1`, id), blogIDs, "user %d blog_ids out of sync", id)
		assert.ElementsMatch(t, queryIDs(t, db, `SELECT id FROM comments WHERE user_id = $1`, id), commentIDs, "user %d comment_ids out of sync", id)
	}
	assert.NoError(t, rows.Err())

	blogRows, err := db.Query(`SELECT id, comment_ids FROM blogs`)
	assert.NoError(t, err)
	defer blogRows.Close()

	for blogRows.Next() {
		var id int
		var commentIDs []int64
		assert.NoError(t, blogRows.Scan(&id, pq.Array(&commentIDs)))

		assert.ElementsMatch(t, queryIDs(t, db, `SELECT id FROM comments WHERE blog_id = $1`, id), commentIDs, "blog %d comment_ids out of sync", id)
	}
	assert.NoError(t, blogRows.Err())
}

func queryIDs(t *testing.T, db *sql.DB, query string, args ...any) []int64 {
	t.Helper()

	rows, err := db.Query(query, args...)
	assert.NoError(t, err)
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		assert.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	assert.NoError(t, rows.Err())

	return ids
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()

	var n int
	assert.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestCreateBlog(t *testing.T) {
	s, db, _, cleanup := setupTestEnvironment(t)

	t.Run("valid blog", func(t *testing.T) {
		defer cleanup()

		userID := createTestUser(t, db, "u1", "u1@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{
			Title:       "Test Blog",
			Description: "This is a test blog.",
			UserID:      userID,
		})
		assert.NoError(t, err)
		assert.NotZero(t, blog.ID)

		assert.Equal(t, []int64{int64(blog.ID)}, queryIDs(t, db, `SELECT unnest(blog_ids) FROM users WHERE id = $1`, userID))
		assertGraphInvariants(t, db)
	})

	t.Run("missing user", func(t *testing.T) {
		defer cleanup()

		_, err := s.CreateBlog(context.Background(), &CreateBlogRequest{
			Title:       "Test Blog",
			Description: "This is a test blog.",
			UserID:      999,
		})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("invalid payload", func(t *testing.T) {
		defer cleanup()

		_, err := s.CreateBlog(context.Background(), &CreateBlogRequest{
			Title:       "",
			Description: "hi",
			UserID:      0,
		})
		assert.IsType(t, common.ValidationError{}, err)
	})

	t.Run("script tags are stripped", func(t *testing.T) {
		defer cleanup()

		userID := createTestUser(t, db, "u1", "u1@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{
			Title:       "Test Blog",
			Description: "hello <script>alert(1);</script> world",
			UserID:      userID,
		})
		assert.NoError(t, err)
		assert.Equal(t, "hello  world", blog.Description)
	})
}

func TestUpdateBlog(t *testing.T) {
	s, db, _, cleanup := setupTestEnvironment(t)

	t.Run("owner updates", func(t *testing.T) {
		defer cleanup()

		userID := createTestUser(t, db, "u1", "u1@example.com")
		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "Before", Description: "before text", UserID: userID})
		assert.NoError(t, err)

		updated, err := s.UpdateBlog(context.Background(), &UpdateBlogRequest{
			ID:          blog.ID,
			Title:       "After",
			Description: "after text",
			UserID:      userID,
		})
		assert.NoError(t, err)
		assert.Equal(t, "After", updated.Title)
		assert.Equal(t, blog.Version+1, updated.Version)
	})

	t.Run("not owner", func(t *testing.T) {
		defer cleanup()

		ownerID := createTestUser(t, db, "u1", "u1@example.com")
		otherID := createTestUser(t, db, "u2", "u2@example.com")
		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "Before", Description: "before text", UserID: ownerID})
		assert.NoError(t, err)

		_, err = s.UpdateBlog(context.Background(), &UpdateBlogRequest{
			ID:          blog.ID,
			Title:       "Hijacked",
			Description: "hijacked text",
			UserID:      otherID,
		})
		assert.ErrorIs(t, err, ErrNotOwner)

		var title string
		assert.NoError(t, db.QueryRow(`SELECT title FROM blogs WHERE id = $1`, blog.ID).Scan(&title))
		assert.Equal(t, "Before", title)
	})

	t.Run("missing blog", func(t *testing.T) {
		defer cleanup()

		userID := createTestUser(t, db, "u1", "u1@example.com")

		_, err := s.UpdateBlog(context.Background(), &UpdateBlogRequest{
			ID:          999,
			Title:       "After",
			Description: "after text",
			UserID:      userID,
		})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestDeleteBlog(t *testing.T) {
	s, db, blobs, cleanup := setupTestEnvironment(t)

	t.Run("cascade removes comments and back-references", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")
		u2 := createTestUser(t, db, "u2", "u2@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		_, err = s.CreateComment(context.Background(), &CreateCommentRequest{Text: "c1", BlogID: blog.ID, UserID: u2})
		assert.NoError(t, err)

		err = s.DeleteBlog(context.Background(), blog.ID, u1)
		assert.NoError(t, err)

		assert.Zero(t, countRows(t, db, `SELECT count(*) FROM blogs`))
		assert.Zero(t, countRows(t, db, `SELECT count(*) FROM comments`))
		assert.Empty(t, queryIDs(t, db, `SELECT unnest(blog_ids) FROM users WHERE id = $1`, u1))
		assert.Empty(t, queryIDs(t, db, `SELECT unnest(comment_ids) FROM users WHERE id = $1`, u2))
		assertGraphInvariants(t, db)
	})

	t.Run("not owner leaves everything intact", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")
		u2 := createTestUser(t, db, "u2", "u2@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		_, err = s.CreateComment(context.Background(), &CreateCommentRequest{Text: "c1", BlogID: blog.ID, UserID: u2})
		assert.NoError(t, err)

		err = s.DeleteBlog(context.Background(), blog.ID, u2)
		assert.ErrorIs(t, err, ErrNotOwner)

		assert.Equal(t, 1, countRows(t, db, `SELECT count(*) FROM blogs WHERE id = $1`, blog.ID))
		assert.Equal(t, 1, countRows(t, db, `SELECT count(*) FROM comments WHERE blog_id = $1`, blog.ID))
		assertGraphInvariants(t, db)
	})

	t.Run("idempotent delete", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		assert.NoError(t, s.DeleteBlog(context.Background(), blog.ID, u1))
		assert.ErrorIs(t, s.DeleteBlog(context.Background(), blog.ID, u1), ErrRecordNotFound)
		assertGraphInvariants(t, db)
	})

	t.Run("image cleanup is best effort", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", Image: "cover.png", UserID: u1})
		assert.NoError(t, err)

		blobs.On("Delete", mock.Anything, "cover.png").Return(errors.New("blob store down")).Once()

		// cleanup failure must not surface once the graph edit committed
		err = s.DeleteBlog(context.Background(), blog.ID, u1)
		assert.NoError(t, err)
		assert.Zero(t, countRows(t, db, `SELECT count(*) FROM blogs`))

		blobs.AssertExpectations(t)
	})

	t.Run("cancelled context leaves no partial cascade", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")
		u2 := createTestUser(t, db, "u2", "u2@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		_, err = s.CreateComment(context.Background(), &CreateCommentRequest{Text: "c1", BlogID: blog.ID, UserID: u2})
		assert.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = s.DeleteBlog(ctx, blog.ID, u1)
		assert.Error(t, err)

		assert.Equal(t, 1, countRows(t, db, `SELECT count(*) FROM blogs WHERE id = $1`, blog.ID))
		assert.Equal(t, 1, countRows(t, db, `SELECT count(*) FROM comments WHERE blog_id = $1`, blog.ID))
		assertGraphInvariants(t, db)
	})
}

func TestCreateComment(t *testing.T) {
	s, db, _, cleanup := setupTestEnvironment(t)

	t.Run("valid comment", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")
		u2 := createTestUser(t, db, "u2", "u2@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		comment, err := s.CreateComment(context.Background(), &CreateCommentRequest{Text: "hello", BlogID: blog.ID, UserID: u2})
		assert.NoError(t, err)
		assert.NotZero(t, comment.ID)

		assert.Equal(t, []int64{int64(comment.ID)}, queryIDs(t, db, `SELECT unnest(comment_ids) FROM blogs WHERE id = $1`, blog.ID))
		assert.Equal(t, []int64{int64(comment.ID)}, queryIDs(t, db, `SELECT unnest(comment_ids) FROM users WHERE id = $1`, u2))
		assertGraphInvariants(t, db)
	})

	t.Run("reply to a user", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		comment, err := s.CreateComment(context.Background(), &CreateCommentRequest{Text: "hello", BlogID: blog.ID, UserID: u1, ResponseToUserID: &u1})
		assert.NoError(t, err)
		assert.NotNil(t, comment.ResponseToUserID)
		assert.Equal(t, u1, *comment.ResponseToUserID)
	})

	t.Run("missing blog", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")

		_, err := s.CreateComment(context.Background(), &CreateCommentRequest{Text: "hello", BlogID: 999, UserID: u1})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("missing user", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		_, err = s.CreateComment(context.Background(), &CreateCommentRequest{Text: "hello", BlogID: blog.ID, UserID: 999})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestDeleteComment(t *testing.T) {
	s, db, _, cleanup := setupTestEnvironment(t)

	t.Run("author deletes", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")
		u2 := createTestUser(t, db, "u2", "u2@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		comment, err := s.CreateComment(context.Background(), &CreateCommentRequest{Text: "hello", BlogID: blog.ID, UserID: u2})
		assert.NoError(t, err)

		err = s.DeleteComment(context.Background(), comment.ID, u2)
		assert.NoError(t, err)

		assert.Zero(t, countRows(t, db, `SELECT count(*) FROM comments`))
		assert.Empty(t, queryIDs(t, db, `SELECT unnest(comment_ids) FROM blogs WHERE id = $1`, blog.ID))
		assert.Empty(t, queryIDs(t, db, `SELECT unnest(comment_ids) FROM users WHERE id = $1`, u2))
		assertGraphInvariants(t, db)
	})

	t.Run("not author", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")
		u2 := createTestUser(t, db, "u2", "u2@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		comment, err := s.CreateComment(context.Background(), &CreateCommentRequest{Text: "hello", BlogID: blog.ID, UserID: u2})
		assert.NoError(t, err)

		err = s.DeleteComment(context.Background(), comment.ID, u1)
		assert.ErrorIs(t, err, ErrNotOwner)

		assert.Equal(t, 1, countRows(t, db, `SELECT count(*) FROM comments WHERE id = $1`, comment.ID))
	})

	t.Run("missing comment", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")

		err := s.DeleteComment(context.Background(), 999, u1)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestConcurrentDeleteBlog(t *testing.T) {
	s, db, _, cleanup := setupTestEnvironment(t)
	defer cleanup()

	u1 := createTestUser(t, db, "u1", "u1@example.com")

	blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
	assert.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.DeleteBlog(context.Background(), blog.ID, u1)
		}(i)
	}
	wg.Wait()

	var succeeded, notFound int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrRecordNotFound):
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, notFound)
	assert.Zero(t, countRows(t, db, `SELECT count(*) FROM blogs`))
	assertGraphInvariants(t, db)
}

func TestConcurrentCreateComment(t *testing.T) {
	s, db, _, cleanup := setupTestEnvironment(t)
	defer cleanup()

	u1 := createTestUser(t, db, "u1", "u1@example.com")
	u2 := createTestUser(t, db, "u2", "u2@example.com")

	blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
	assert.NoError(t, err)

	var wg sync.WaitGroup
	authors := []int{u1, u2}
	results := make([]error, len(authors))

	for i, author := range authors {
		wg.Add(1)
		go func(i, author int) {
			defer wg.Done()
			_, results[i] = s.CreateComment(context.Background(), &CreateCommentRequest{Text: "hello", BlogID: blog.ID, UserID: author})
		}(i, author)
	}
	wg.Wait()

	for _, err := range results {
		assert.NoError(t, err)
	}

	assert.Equal(t, 2, countRows(t, db, `SELECT count(*) FROM comments WHERE blog_id = $1`, blog.ID))
	assert.Len(t, queryIDs(t, db, `SELECT unnest(comment_ids) FROM blogs WHERE id = $1`, blog.ID), 2)
	assertGraphInvariants(t, db)
}

func TestDeleteBlogRacingCreateComment(t *testing.T) {
	s, db, _, cleanup := setupTestEnvironment(t)
	defer cleanup()

	u1 := createTestUser(t, db, "u1", "u1@example.com")
	u2 := createTestUser(t, db, "u2", "u2@example.com")

	blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
	assert.NoError(t, err)

	var wg sync.WaitGroup
	var deleteErr, createErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		deleteErr = s.DeleteBlog(context.Background(), blog.ID, u1)
	}()
	go func() {
		defer wg.Done()
		_, createErr = s.CreateComment(context.Background(), &CreateCommentRequest{Text: "racing", BlogID: blog.ID, UserID: u2})
	}()
	wg.Wait()

	for _, err := range []error{deleteErr, createErr} {
		if err != nil && !errors.Is(err, ErrRecordNotFound) && !errors.Is(err, ErrTransactionFailure) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// whichever way the race went, a comment never survives its blog
	assert.Zero(t, countRows(t, db, `
		SELECT count(*) FROM comments c
		LEFT JOIN blogs b ON b.id = c.blog_id
		WHERE b.id IS NULL`))

	if deleteErr == nil {
		// the create either lost (ErrRecordNotFound) or its comment was
		// swept up by the cascade
		assert.Zero(t, countRows(t, db, `SELECT count(*) FROM blogs WHERE id = $1`, blog.ID))
		assert.Zero(t, countRows(t, db, `SELECT count(*) FROM comments WHERE blog_id = $1`, blog.ID))
		assert.Empty(t, queryIDs(t, db, `SELECT unnest(comment_ids) FROM users WHERE id = $1`, u2))
	}

	assertGraphInvariants(t, db)
}

func TestReadPaths(t *testing.T) {
	s, db, _, cleanup := setupTestEnvironment(t)

	t.Run("get blog by id", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		got, err := s.GetBlogByID(context.Background(), blog.ID)
		assert.NoError(t, err)
		assert.Equal(t, blog.ID, got.ID)
		assert.Equal(t, "u1", got.User.Name)

		// second read is served from cache
		again, err := s.GetBlogByID(context.Background(), blog.ID)
		assert.NoError(t, err)
		assert.Equal(t, got, again)
	})

	t.Run("get blog not found", func(t *testing.T) {
		defer cleanup()

		_, err := s.GetBlogByID(context.Background(), 999)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("list blogs newest first", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")

		first, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "first", Description: "first blog", UserID: u1})
		assert.NoError(t, err)
		second, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "second", Description: "second blog", UserID: u1})
		assert.NoError(t, err)

		limit, offset := 10, 0
		blogs, err := s.GetBlogs(context.Background(), &limit, &offset)
		assert.NoError(t, err)
		assert.Len(t, blogs, 2)
		assert.Equal(t, second.ID, blogs[0].ID)
		assert.Equal(t, first.ID, blogs[1].ID)
	})

	t.Run("list blogs without paging params", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")

		for i := 0; i < 11; i++ {
			_, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b", Description: "first blog", UserID: u1})
			assert.NoError(t, err)
		}

		blogs, err := s.GetBlogs(context.Background(), nil, nil)
		assert.NoError(t, err)
		assert.Len(t, blogs, 10)

		offset := 10
		rest, err := s.GetBlogs(context.Background(), nil, &offset)
		assert.NoError(t, err)
		assert.Len(t, rest, 1)
	})

	t.Run("get blog comments", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		c1, err := s.CreateComment(context.Background(), &CreateCommentRequest{Text: "one", BlogID: blog.ID, UserID: u1})
		assert.NoError(t, err)
		c2, err := s.CreateComment(context.Background(), &CreateCommentRequest{Text: "two", BlogID: blog.ID, UserID: u1})
		assert.NoError(t, err)

		comments, err := s.GetBlogComments(context.Background(), blog.ID)
		assert.NoError(t, err)
		assert.Len(t, comments, 2)
		assert.Equal(t, c1.ID, comments[0].ID)
		assert.Equal(t, c2.ID, comments[1].ID)
	})

	t.Run("comment mutations invalidate cached blog reads", func(t *testing.T) {
		defer cleanup()

		u1 := createTestUser(t, db, "u1", "u1@example.com")

		blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "b1", Description: "first blog", UserID: u1})
		assert.NoError(t, err)

		// warm both cache entries
		_, err = s.GetBlogByID(context.Background(), blog.ID)
		assert.NoError(t, err)
		_, err = s.GetBlogComments(context.Background(), blog.ID)
		assert.NoError(t, err)

		c1, err := s.CreateComment(context.Background(), &CreateCommentRequest{Text: "one", BlogID: blog.ID, UserID: u1})
		assert.NoError(t, err)

		got, err := s.GetBlogByID(context.Background(), blog.ID)
		assert.NoError(t, err)
		assert.Contains(t, got.CommentIDs, c1.ID)

		comments, err := s.GetBlogComments(context.Background(), blog.ID)
		assert.NoError(t, err)
		assert.Len(t, comments, 1)

		err = s.DeleteComment(context.Background(), c1.ID, u1)
		assert.NoError(t, err)

		got, err = s.GetBlogByID(context.Background(), blog.ID)
		assert.NoError(t, err)
		assert.Empty(t, got.CommentIDs)

		comments, err = s.GetBlogComments(context.Background(), blog.ID)
		assert.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("comments of missing blog", func(t *testing.T) {
		defer cleanup()

		_, err := s.GetBlogComments(context.Background(), 999)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}
