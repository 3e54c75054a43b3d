package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fitlg/fitlg/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByUsername(ctx context.Context, username string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_admin, is_active, created_at)
		VALUES (:id, :username, :email, :password_hash, :is_admin, :is_active, :created_at)`, user)
	return duplicateUser(err)
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.one(ctx, "id", id)
}

func (r *userRepository) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.one(ctx, "username", username)
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.one(ctx, "email", email)
}

// one looks a user up by a unique column. column is never user input.
func (r *userRepository) one(ctx context.Context, column, value string) (*model.User, error) {
	user := &model.User{}
	err := r.db.GetContext(ctx, user, `SELECT * FROM users WHERE `+column+` = $1`, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE users SET username = :username, email = :email, password_hash = :password_hash,
		       is_admin = :is_admin, is_active = :is_active
		WHERE id = :id`, user)
	if err = duplicateUser(err); err != nil {
		return err
	}
	return expectRow(result, nil, ErrUserNotFound)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return expectRow(result, err, ErrUserNotFound)
}

func duplicateUser(err error) error {
	if !isUniqueViolation(err) {
		return err
	}
	if violatesColumn(err, "users", "username") {
		return ErrDuplicateUsername
	}
	return ErrDuplicateEmail
}
