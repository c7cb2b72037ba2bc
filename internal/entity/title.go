package entity

import "time"

type Title struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null;index" json:"name"`
	Year        int       `gorm:"not null;index" json:"year"`
	CategoryID  *uint     `gorm:"index" json:"-"`
	Category    *Category `gorm:"constraint:OnDelete:SET NULL" json:"category"`
	Description string    `gorm:"size:255" json:"description"`
	Genres      []Genre   `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE" json:"genre"`

	// Rating is filled only by queries that select the review average into it.
	Rating *float64 `gorm:"->;-:migration" json:"rating"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}
