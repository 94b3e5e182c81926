package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles. RoleUser is the default for self-registered accounts.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// IsValidUserRole reports whether role is one of the closed set of user roles.
func IsValidUserRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// User represents a registered account in the portal
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	FullName     string         `json:"full_name"`
	Phone        string         `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Active       bool           `gorm:"default:false" json:"active"` // false until email verification
	Role         string         `gorm:"type:varchar(20);default:'user'" json:"role"`
	BankName     string         `json:"bank_name,omitempty"`
	BankNumber   string         `gorm:"type:varchar(50)" json:"bank_number,omitempty"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	Participations []EventParticipant  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
