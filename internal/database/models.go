// Package database keeps the enable flag and the history of consent runs
// in PostgreSQL through GORM.
package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Setting is one process-wide flag. Values are stored as text.
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// ConsentRun is the outcome of one pass of the agent over a page.
type ConsentRun struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	URL            string    `gorm:"type:text;not null"`
	Origin         string    `gorm:"type:varchar(255);index;not null"`
	State          string    `gorm:"type:varchar(32);not null"`
	Trace          string    `gorm:"type:text"` // comma separated states
	Clicks         int       `gorm:"not null;default:0"`
	TogglesOff     int       `gorm:"not null;default:0"`
	StorageRemoved int       `gorm:"not null;default:0"`
	DurationMS     int64     `gorm:"not null;default:0"`
	StartedAt      time.Time `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (r *ConsentRun) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
