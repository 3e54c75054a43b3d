package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fitlg/fitlg/internal/model"
)

var ErrTokenNotFound = errors.New("token not found, used or expired")

type TokenRepository interface {
	Create(ctx context.Context, token *model.Token) error
	Consume(ctx context.Context, userID string, tokenType model.TokenType, value string) (*model.Token, error)
	DeleteUnused(ctx context.Context, userID string, tokenType model.TokenType) error
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
}

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *model.Token) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO tokens (id, user_id, type, token, expires_at, created_at)
		VALUES (:id, :user_id, :type, :token, :expires_at, :created_at)`, token)
	return err
}

// Consume marks the token used in the same statement that checks it, so two
// requests racing on one link cannot both succeed.
func (r *tokenRepository) Consume(ctx context.Context, userID string, tokenType model.TokenType, value string) (*model.Token, error) {
	now := time.Now().UTC()

	var id string
	err := r.db.GetContext(ctx, &id, `
		UPDATE tokens SET used_at = $1
		WHERE user_id = $2 AND type = $3 AND token = $4
		  AND used_at IS NULL AND expires_at > $5
		RETURNING id`,
		now, userID, tokenType, value, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	token := &model.Token{}
	err = r.db.GetContext(ctx, token, `SELECT * FROM tokens WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return token, nil
}

// DeleteUnused drops the pending links of one kind, used ones stay until Purge.
func (r *tokenRepository) DeleteUnused(ctx context.Context, userID string, tokenType model.TokenType) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tokens WHERE user_id = $1 AND type = $2 AND used_at IS NULL`,
		userID, tokenType)
	return err
}

// Purge deletes tokens used or expired more than olderThan ago.
func (r *tokenRepository) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tokens WHERE used_at < $1 OR expires_at < $2`, cutoff, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
