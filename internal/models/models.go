package models

import (
	"time"
)

type Account struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Name         string `json:"name"`
	Active       bool   `gorm:"not null;default:true"    json:"active"`
	Scope        string `gorm:"not null"                 json:"scope"`
}

type AccessToken struct {
	ID        uint      `gorm:"primaryKey"        json:"id"`
	Token     string    `gorm:"unique;not null"   json:"token"`
	UserID    uint      `gorm:"index;not null"    json:"user_id"`
	Scope     string    `gorm:"not null"          json:"scope"`
	ExpiresAt time.Time `gorm:"not null"          json:"expires_at"`
}

// RefreshToken.AccessToken is a lookup key for cascade revocation, not a
// foreign key: the parent row may already be gone.
type RefreshToken struct {
	ID          uint      `gorm:"primaryKey"        json:"id"`
	Token       string    `gorm:"unique;not null"   json:"token"`
	AccessToken string    `gorm:"index;not null"    json:"access_token"`
	UserID      uint      `gorm:"index;not null"    json:"user_id"`
	ExpiresAt   time.Time `gorm:"not null"          json:"expires_at"`
}

type Library struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"unique;not null"          json:"name"`
	Active bool   `gorm:"not null;default:true"    json:"active"`
	Notes  string `json:"notes"`
	Scope  string `gorm:"not null"                 json:"scope"`
}

type Author struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	LibraryID uint   `gorm:"index;not null"           json:"library_id"`
	FirstName string `gorm:"not null"                 json:"first_name"`
	LastName  string `gorm:"not null"                 json:"last_name"`
	Active    bool   `gorm:"not null;default:true"    json:"active"`
	Notes     string `json:"notes"`
}

type Series struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	LibraryID uint   `gorm:"index;not null"           json:"library_id"`
	Name      string `gorm:"not null"                 json:"name"`
	Active    bool   `gorm:"not null;default:true"    json:"active"`
	Copyright string `json:"copyright"`
	Notes     string `json:"notes"`
}

type Story struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	LibraryID uint   `gorm:"index;not null"           json:"library_id"`
	Name      string `gorm:"not null"                 json:"name"`
	Active    bool   `gorm:"not null;default:true"    json:"active"`
	Copyright string `json:"copyright"`
	Notes     string `json:"notes"`
}

type Volume struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	LibraryID uint   `gorm:"index;not null"           json:"library_id"`
	Name      string `gorm:"not null"                 json:"name"`
	Active    bool   `gorm:"not null;default:true"    json:"active"`
	Google    string `json:"google_id"`
	Isbn      string `json:"isbn"`
	Location  string `json:"location"`
	Read      bool   `gorm:"not null;default:false"   json:"read"`
	Notes     string `json:"notes"`
}
