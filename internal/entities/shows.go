package entities

import (
	"time"

	"gorm.io/gorm"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// Show is a single attended concert. Date is always the canonical
// YYYY-MM-DD string; anything else is rejected upstream by the importer.
type Show struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"index" json:"user_id"`
	Artist  string `gorm:"index;size:256" json:"artist"`
	Venue   string `gorm:"index;size:256" json:"venue"`
	Date    string `gorm:"index;size:10" json:"date"`
	City    string `gorm:"size:128" json:"city,omitempty"`
	Country string `gorm:"size:128" json:"country,omitempty"`
	Tour    string `gorm:"size:256" json:"tour,omitempty"`

	// Rating is 1-10; nil means the user hasn't rated the show.
	Rating  *int   `json:"rating,omitempty"`
	Comment string `gorm:"type:text" json:"comment,omitempty"`

	// Manual is true when the setlist did not come from the catalog.
	Manual    bool   `gorm:"default:true" json:"manual"`
	CatalogID string `gorm:"size:64" json:"catalog_id,omitempty"`

	Songs []Song `gorm:"foreignKey:ShowID" json:"songs,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Song is one setlist entry. Position is performance order and drives
// display and re-export order. SetBreak is set only on the first song
// of a new set or encore block.
type Song struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ShowID   uint   `gorm:"index" json:"show_id"`
	Position int    `gorm:"index" json:"position"`
	Name     string `gorm:"size:512" json:"name"`
	CoverOf  string `gorm:"size:256" json:"cover_of,omitempty"`
	SetBreak string `gorm:"size:32" json:"set_break,omitempty"`
	Rating   *int   `json:"rating,omitempty"`
	Comment  string `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImportSession records the outcome of one import batch.
type ImportSession struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UserID        uint         `gorm:"index" json:"user_id"`
	BatchID       string       `gorm:"uniqueIndex;size:36" json:"batch_id"`
	Source        string       `gorm:"size:32" json:"source"` // "file", "screenshot", "search"
	Status        ImportStatus `gorm:"size:20;default:'pending'" json:"status"`
	RowsProcessed int          `json:"rows_processed"`
	Imported      int          `json:"imported"`
	Failed        int          `json:"failed"`
	Skipped       int          `json:"skipped"`
	SetlistsFound int          `json:"setlists_found"`
	StartedAt     time.Time    `json:"started_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
}

func (Show) TableName() string {
	return "shows"
}

func (Song) TableName() string {
	return "songs"
}

func (ImportSession) TableName() string {
	return "import_sessions"
}
