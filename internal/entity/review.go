package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinScore     = 1
	MaxScore     = 10
	DefaultScore = 5
)

type Review struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	TitleID  uint      `gorm:"not null;index;uniqueIndex:idx_reviews_author_title,priority:2" json:"-"`
	Title    *Title    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_author_title,priority:1" json:"-"`
	Author   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Score    int       `gorm:"not null;default:5;check:chk_reviews_score,score >= 1 AND score <= 10" json:"score"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
}

type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	ReviewID uint      `gorm:"not null;index" json:"-"`
	Review   *Review   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Author   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
}
