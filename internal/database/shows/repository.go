// Package shows provides database operations for the show collection.
//
// The repository implements the importer.ShowStore interface, so the
// import orchestrator can be tested without a live database.
package shows

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/concertlog/concertlog/internal/entities"
)

// Repository handles all show and song database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new shows repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new show (including any songs) and returns its ID.
func (r *Repository) Create(show *entities.Show) (uint, error) {
	if err := r.db.Create(show).Error; err != nil {
		return 0, fmt.Errorf("create show: %w", err)
	}
	return show.ID, nil
}

// GetByID retrieves a show with its songs in performance order.
func (r *Repository) GetByID(id uint) (*entities.Show, error) {
	var show entities.Show
	err := r.db.Preload("Songs", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&show, id).Error
	if err != nil {
		return nil, err
	}
	return &show, nil
}

// List retrieves all shows for a user, songs in performance order.
func (r *Repository) List(userID uint) ([]entities.Show, error) {
	var result []entities.Show
	err := r.db.Preload("Songs", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("user_id = ?", userID).Order("date DESC").Find(&result).Error
	return result, err
}

// ShowUpdate carries the fields settable after creation. Nil pointers
// leave the column untouched.
type ShowUpdate struct {
	Rating    *int
	Comment   *string
	Tour      *string
	Manual    *bool
	CatalogID *string
}

// Update applies a partial update to a show.
func (r *Repository) Update(id uint, update ShowUpdate) error {
	fields := map[string]any{}
	if update.Rating != nil {
		fields["rating"] = *update.Rating
	}
	if update.Comment != nil {
		fields["comment"] = *update.Comment
	}
	if update.Tour != nil {
		fields["tour"] = *update.Tour
	}
	if update.Manual != nil {
		fields["manual"] = *update.Manual
	}
	if update.CatalogID != nil {
		fields["catalog_id"] = *update.CatalogID
	}
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&entities.Show{}).Where("id = ?", id).Updates(fields).Error
}

// AttachSetlist replaces a show's songs with a catalog match and marks
// the show as catalog-sourced. Runs in a transaction so a failed write
// never leaves a half-replaced setlist.
func (r *Repository) AttachSetlist(id uint, songs []entities.Song, catalogID, tour string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("show_id = ?", id).Delete(&entities.Song{}).Error; err != nil {
			return fmt.Errorf("clear setlist: %w", err)
		}

		for i := range songs {
			songs[i].ID = 0
			songs[i].ShowID = id
		}
		if len(songs) > 0 {
			if err := tx.Create(&songs).Error; err != nil {
				return fmt.Errorf("save setlist: %w", err)
			}
		}

		fields := map[string]any{
			"manual":     false,
			"catalog_id": catalogID,
		}
		if tour != "" {
			fields["tour"] = tour
		}
		return tx.Model(&entities.Show{}).Where("id = ?", id).Updates(fields).Error
	})
}

// UpdateSong applies a rating/comment edit to one setlist entry.
func (r *Repository) UpdateSong(showID, songID uint, rating *int, comment *string) error {
	fields := map[string]any{}
	if rating != nil {
		fields["rating"] = *rating
	}
	if comment != nil {
		fields["comment"] = *comment
	}
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&entities.Song{}).
		Where("id = ? AND show_id = ?", songID, showID).
		Updates(fields).Error
}

// Delete removes a show and its songs.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("show_id = ?", id).Delete(&entities.Song{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Show{}, id).Error
	})
}

// MissingSetlists returns catalog-unsourced shows, oldest first, for
// the periodic re-match sweep. userID 0 spans all users.
func (r *Repository) MissingSetlists(userID uint) ([]entities.Show, error) {
	query := r.db.Where("manual = ? AND catalog_id = ''", true)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	var result []entities.Show
	err := query.Order("date ASC").Find(&result).Error
	return result, err
}

// SaveSession persists an import session record.
func (r *Repository) SaveSession(session *entities.ImportSession) error {
	return r.db.Save(session).Error
}

// Stats aggregates collection counts for the stats endpoint.
type Stats struct {
	Shows   int64 `json:"shows"`
	Artists int64 `json:"artists"`
	Venues  int64 `json:"venues"`
	Songs   int64 `json:"songs"`
}

// GetStats returns collection-wide counts for a user.
func (r *Repository) GetStats(userID uint) (*Stats, error) {
	var stats Stats
	if err := r.db.Model(&entities.Show{}).Where("user_id = ?", userID).Count(&stats.Shows).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&entities.Show{}).Where("user_id = ?", userID).
		Distinct("LOWER(artist)").Count(&stats.Artists).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&entities.Show{}).Where("user_id = ?", userID).
		Distinct("LOWER(venue)").Count(&stats.Venues).Error; err != nil {
		return nil, err
	}
	err := r.db.Model(&entities.Song{}).
		Joins("JOIN shows ON shows.id = songs.show_id").
		Where("shows.user_id = ?", userID).
		Count(&stats.Songs).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
