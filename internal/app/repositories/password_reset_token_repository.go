package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/dberrors"
)

// PasswordResetTokenRepository manages password reset tokens in the database
type PasswordResetTokenRepository struct {
	db *pgxpool.Pool
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(db *pgxpool.Pool) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{
		db: db,
	}
}

// Create stores a new password reset token
func (r *PasswordResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (email, user_type, token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, token.Email, token.UserType, token.Token, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "password_reset_tokens_token_key") {
			return apperrors.ErrPasswordResetTokenExists
		}
		return fmt.Errorf("error creating password reset token: %w", err)
	}

	return nil
}

// GetByToken retrieves a token by its value
func (r *PasswordResetTokenRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, email, user_type, token, expires_at, is_used, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`

	var t models.PasswordResetToken
	err := r.db.QueryRow(ctx, query, token).Scan(
		&t.ID, &t.Email, &t.UserType, &t.Token, &t.ExpiresAt, &t.IsUsed, &t.CreatedAt,
	)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrInvalidPasswordResetToken
		}
		return nil, fmt.Errorf("error retrieving password reset token: %w", err)
	}

	return &t, nil
}

// MarkUsed marks a token as used. Only one caller can win the flip.
func (r *PasswordResetTokenRepository) MarkUsed(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `
		UPDATE password_reset_tokens
		SET is_used = TRUE
		WHERE id = $1 AND is_used = FALSE`, id)
	if err != nil {
		return fmt.Errorf("error marking token as used: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrPasswordResetTokenUsed
	}

	return nil
}
