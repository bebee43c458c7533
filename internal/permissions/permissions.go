// Package permissions holds the access policies applied before mutating a resource.
package permissions

import (
	"errors"

	"foodgram/internal/models"
)

var (
	// ErrNotAuthenticated is returned when an action needs a signed-in user.
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
	// ErrPermissionDenied is returned when the signed-in user may not touch the object.
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)

// AuthenticatedOnly allows any signed-in user.
func AuthenticatedOnly(user *models.User) error {
	if user == nil {
		return ErrNotAuthenticated
	}
	return nil
}

// AuthorOrAdmin allows the object's author and administrators.
func AuthorOrAdmin(user *models.User, authorID uint) error {
	if err := AuthenticatedOnly(user); err != nil {
		return err
	}
	if user.ID != authorID && !user.IsAdmin() {
		return ErrPermissionDenied
	}
	return nil
}
