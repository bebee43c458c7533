package models

import "time"

// Role is the access level of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ReservedUsername cannot be registered because it collides with the /users/me route.
const ReservedUsername = "me"

// User represents a registered account.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:254;not null"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:150;not null"`
	FirstName string    `json:"first_name" gorm:"size:150;not null"`
	LastName  string    `json:"last_name" gorm:"size:150;not null"`
	Password  string    `json:"-" gorm:"size:128;not null"` // bcrypt hash, never serialized
	Role      Role      `json:"role" gorm:"size:50;not null;default:user"`
	CreatedAt time.Time `json:"-"`
}

// IsAdmin reports whether the user holds the admin role. A nil user is never an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Follow is a directed subscription of User to Author.
type Follow struct {
	ID        uint  `gorm:"primaryKey"`
	UserID    uint  `gorm:"not null;uniqueIndex:idx_follow_user_author;check:chk_follow_not_self,user_id <> author_id"`
	AuthorID  uint  `gorm:"not null;uniqueIndex:idx_follow_user_author;index"`
	User      *User `gorm:"constraint:OnDelete:CASCADE"`
	Author    *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}
