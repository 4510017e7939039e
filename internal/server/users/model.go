package users

import (
	"time"

	"github.com/vahire/vahire/internal/client/models"
)

// User is the account row as stored server-side. PasswordHash never leaves
// this package.
type User struct {
	ID           string
	Email        string
	Phone        string
	PasswordHash []byte
	UserType     models.UserType
	DisplayName  string
	AvatarURL    string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile converts the row into the wire-facing representation.
func (u *User) Profile() *models.User {
	return &models.User{
		ID:          u.ID,
		Email:       u.Email,
		Phone:       u.Phone,
		UserType:    u.UserType,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Verified:    u.Verified,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
