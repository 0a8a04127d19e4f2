package models

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"column:username;type:text;uniqueIndex;not null" json:"username"`
	Email    string `gorm:"column:email;type:text;uniqueIndex;not null" json:"email"`

	// Empty for users created via Google sign-in.
	PasswordHash string `gorm:"column:password_hash;type:text" json:"-"`

	Name       string  `gorm:"column:name;type:text" json:"name,omitempty"`
	PictureURL string  `gorm:"column:picture_url;type:text" json:"picture_url,omitempty"`
	GoogleID   *string `gorm:"column:google_id;type:text;uniqueIndex" json:"google_id,omitempty"`

	Role UserRole `gorm:"column:role;type:text;default:user" json:"role"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }
