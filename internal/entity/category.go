package entity

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Name      string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Name      string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}
