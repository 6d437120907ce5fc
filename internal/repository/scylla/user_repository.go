package scylla

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"kumbam-backend/internal/models"
	"kumbam-backend/internal/util"
)

type userRepository struct {
	client *Client
}

func NewUserRepository(client *Client) UserRepository {
	return &userRepository{client: client}
}

// CreateUser inserts a user with a lightweight transaction so the email
// stays a unique key even when two signups race.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	applied, err := r.client.Query(`
		INSERT INTO users (email, full_name, phone, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?) IF NOT EXISTS`,
		user.Email, user.FullName, user.Phone, user.PasswordHash, user.CreatedAt).
		WithContext(ctx).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		util.Error("Failed to create user",
			zap.String("email", user.Email),
			zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	if !applied {
		return ErrAlreadyExists
	}

	util.Info("User created",
		zap.String("email", user.Email))

	return nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}

	err := r.client.Query(`
		SELECT email, full_name, phone, password_hash, created_at
		FROM users WHERE email = ?`, email).
		WithContext(ctx).
		Scan(&user.Email, &user.FullName, &user.Phone, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrNotFound
		}
		util.Error("Failed to get user by email",
			zap.String("email", email),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	query := r.client.Query(`
		UPDATE users SET password_hash = ? WHERE email = ?`,
		passwordHash, email).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		util.Error("Failed to update password",
			zap.String("email", email),
			zap.Error(err))
		return fmt.Errorf("failed to update password: %w", err)
	}

	util.Info("Password updated",
		zap.String("email", email))

	return nil
}
