package userservice

import (
	"database/sql"
	"time"

	"github.com/karasuhime/inkwell/internal/common"
)

const (
	AccessTokenTime  time.Duration = 7 * 24 * time.Hour
	RefreshTokenTime time.Duration = 30 * 24 * time.Hour

	// DefaultAvatar is assigned at signup when no avatar was uploaded.
	DefaultAvatar = "https://images.unsplash.com/photo-1544985361-b420d7a77043?auto=format&fit=crop&w=687&q=80"
)

var AnonymousUser = User{}

type UserService struct {
	m *DBModel
	c *common.Cache
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Password   Password  `json:"-"`
	Avatar     string    `json:"avatar"`
	BlogIDs    []int     `json:"blog_ids"`
	CommentIDs []int     `json:"comment_ids"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Version    int       `json:"version"`
}

func (u *User) IsAnonymous() bool {
	return u.ID == 0
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// Authentication Token
type AuthToken struct {
	AccessTokenPlain   string    `json:"access_token"`
	AccessTokenHash    []byte    `json:"-"`
	RefreshTokenPlain  string    `json:"refresh_token"`
	RefreshTokenHash   []byte    `json:"-"`
	UserID             int       `json:"user_id"`
	AccessTokenExpiry  time.Time `json:"access_token_expiry"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
}
