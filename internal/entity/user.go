package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of roles a user can hold. Superuser status is tracked
// separately on User and is not a role.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string    `gorm:"size:150;not null;uniqueIndex;uniqueIndex:idx_users_username_email,priority:1" json:"username"`
	Email       string    `gorm:"size:254;not null;uniqueIndex;uniqueIndex:idx_users_username_email,priority:2" json:"email"`
	FirstName   string    `gorm:"size:40" json:"first_name"`
	LastName    string    `gorm:"size:40" json:"last_name"`
	Bio         string    `gorm:"size:100" json:"bio"`
	Role        Role      `gorm:"size:20;not null;default:user" json:"role"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"-"`

	// Only the bcrypt hash of the latest confirmation code is kept. A nil
	// issue time means there is no code waiting to be exchanged.
	ConfirmationCodeHash     string     `gorm:"size:255" json:"-"`
	ConfirmationCodeIssuedAt *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.IsSuperuser || u.Role == RoleAdmin
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}
