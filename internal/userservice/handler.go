package userservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/karasuhime/inkwell/internal/common"
)

// ErrAuthenticationFailure is returned for both an unknown email and a wrong
// password so a login attempt cannot reveal which accounts exist.
var ErrAuthenticationFailure = errors.New("invalid email or password")

func NewUserService(db *sql.DB, c *common.Cache) *UserService {
	return &UserService{
		m: newUserModel(db),
		c: c,
	}
}

// RegisterUser creates a new user account. Email uniqueness is
// case-insensitive and enforced by the store.
func (s *UserService) RegisterUser(ctx context.Context, name, email, password string) (*User, error) {
	v := common.NewValidator()
	validateName(v, name)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Name:       name,
		Email:      email,
		Avatar:     DefaultAvatar,
		Password:   Password{Plain: password},
		BlogIDs:    []int{},
		CommentIDs: []int{},
	}

	err := u.Password.set(u.Password.Plain)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// LoginUser authenticates a user by email and password and returns a fresh
// opaque access/refresh token pair. Any pair the user already holds is
// replaced inside the same transaction; only hashes are stored, so a stored
// pair could never be handed back with usable plaintexts anyway.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*AuthToken, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthenticationFailure
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if err := s.m.deleteAuthToken(tx, ctx, user.ID); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	authToken, err := s.m.createAuthToken(tx, ctx, user.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return authToken, nil
}

// LogoutUser discards the user's token pair.
func (s *UserService) LogoutUser(ctx context.Context, userID int) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := s.m.deleteAuthToken(tx, ctx, userID); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// GetUserByAccessToken resolves a bearer token to the acting user.
func (s *UserService) GetUserByAccessToken(ctx context.Context, plain string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, plain)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashToken(plain)

	if cached, ok := s.c.Get(common.CacheKeyUserByAccessToken(hash)); ok {
		return cached.(*User), nil
	}

	user, err := s.m.getUserByAccessToken(ctx, hash)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyUserByAccessToken(hash), user, 5*time.Minute)

	return user, nil
}

// GetUserByID returns a user's public profile.
func (s *UserService) GetUserByID(ctx context.Context, id int) (*User, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getUserById(ctx, id)
}
