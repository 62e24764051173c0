// Package account owns user credentials and profiles: registration, login,
// logout and the profile attached to each user.
package account

import (
	"time"

	"github.com/kbukum/fittrack/database"
)

// User is a registered account. PasswordHash never leaves the process.
type User struct {
	database.BaseModel
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
}

// TableName implements gorm's tabler.
func (User) TableName() string { return "users" }

// PublicUser is the client-facing view of a User.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the client-facing view of u.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Profile holds the fitness details a user fills in after registering.
// There is at most one per user.
type Profile struct {
	database.BaseModel
	UserID          string  `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	Age             int     `gorm:"not null" json:"age"`
	Weight          float64 `gorm:"not null" json:"weight"`
	PrimaryGoal     string  `gorm:"not null" json:"primaryGoal"`
	ExperienceLevel string  `gorm:"not null" json:"experienceLevel"`
}

// TableName implements gorm's tabler.
func (Profile) TableName() string { return "profiles" }

// Session is the token handed out by Login.
type Session struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
