package models

import "time"

// User represents a registered account. It is the persisted entity and must
// never be written to a response directly; use PublicUser instead.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username     string    `gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,min=3,max=100,lowercase"`
	Email        string    `gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	FullName     string    `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Password     string    `json:"-" gorm:"type:varchar(255);not null" validate:"required"` // bcrypt digest
	Avatar       string    `gorm:"type:text;not null" validate:"required,url"`
	CoverImage   string    `gorm:"type:text" validate:"omitempty,url"`
	RefreshToken string    `json:"-" gorm:"type:text;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection of User that is safe to return to clients.
type PublicUser struct {
	ID         string    `json:"_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullname"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Public returns the client-safe projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
