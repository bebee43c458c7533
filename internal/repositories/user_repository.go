package repositories

import (
	"context"

	"foodgram/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, search string, page Page) ([]models.User, int64, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

// FollowRepository defines the interface for subscription data access.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, userID, authorID uint) (bool, error)
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint, page Page) ([]models.Follow, int64, error)
	// FollowedAmong returns which of authorIDs the user follows.
	FollowedAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
}
