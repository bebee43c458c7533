package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"foodgram/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GORMUserRepository) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, query, arg).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", strings.TrimSuffix(query, " = ?"), translate(err))
	}
	return &user, nil
}

// List returns users newest first, optionally filtered by a username substring.
func (r *GORMUserRepository) List(ctx context.Context, search string, page Page) ([]models.User, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if search != "" {
			db = db.Where(`LOWER(username) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(search))+"%")
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := r.db.WithContext(ctx).
		Scopes(filter, paginate(page)).
		Order("id DESC").
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdatePassword replaces the stored password hash.
func (r *GORMUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("failed to update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %d not found for password update: %w", id, ErrNotFound)
	}
	return nil
}

// GORMFollowRepository is a GORM implementation of FollowRepository.
type GORMFollowRepository struct {
	db *gorm.DB
}

// NewGORMFollowRepository creates a new instance of GORMFollowRepository.
func NewGORMFollowRepository(db *gorm.DB) *GORMFollowRepository {
	return &GORMFollowRepository{db: db}
}

// Create stores a new subscription. A repeated pair fails with ErrDuplicate.
func (r *GORMFollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Omit("User", "Author").Create(follow).Error; err != nil {
		return fmt.Errorf("failed to create follow: %w", translate(err))
	}
	return nil
}

// Delete removes the subscription and reports whether one existed.
func (r *GORMFollowRepository) Delete(ctx context.Context, userID, authorID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete follow: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether userID follows authorID.
func (r *GORMFollowRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return count > 0, nil
}

// ListByUser returns the user's subscriptions, newest first, with authors preloaded.
func (r *GORMFollowRepository) ListByUser(ctx context.Context, userID uint, page Page) ([]models.Follow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count follows: %w", err)
	}

	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("user_id = ?", userID).
		Scopes(paginate(page)).
		Order("id DESC").
		Find(&follows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list follows: %w", err)
	}
	return follows, total, nil
}

// FollowedAmong returns the subset of authorIDs followed by userID.
func (r *GORMFollowRepository) FollowedAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	followed := make(map[uint]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return followed, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load follows: %w", err)
	}
	for _, id := range ids {
		followed[id] = true
	}
	return followed, nil
}
