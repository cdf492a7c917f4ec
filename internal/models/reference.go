package models

import "time"

// City, Category and Organizer are lookup tables; the service never writes them.

type City struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Country   string    `json:"country"`
	State     string    `json:"state,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color,omitempty"`
	Order     int       `gorm:"column:sort_order" json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type Organizer struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	LogoURL     string    `json:"logo_url,omitempty"`
	IsVerified  bool      `gorm:"not null;default:false" json:"is_verified"`
	Description string    `json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
