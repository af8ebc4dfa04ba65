package contentservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/karasuhime/inkwell/internal/blobstore"
	"github.com/karasuhime/inkwell/internal/common"
	"github.com/karasuhime/inkwell/internal/userservice"
)

type Blog struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	// Description is stored in Markdown format.
	Description string           `json:"description"`
	Image       string           `json:"image"`
	User        userservice.User `json:"user"`
	UserID      int              `json:"user_id"`
	CommentIDs  []int            `json:"comment_ids"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Version     int              `json:"version"`
}

type Comment struct {
	ID     int    `json:"id"`
	Text   string `json:"comment"`
	User   userservice.User
	UserID int `json:"user_id"`
	BlogID int `json:"blog_id"`
	// ResponseToUserID records which user a comment replies to. It carries no
	// referential weight: the referenced user may be gone.
	ResponseToUserID *int      `json:"response_to_user_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ContentModel struct {
	db *sql.DB
}

type ContentService struct {
	m      *ContentModel
	c      *common.Cache
	blobs  blobstore.Store
	logger *slog.Logger
}
