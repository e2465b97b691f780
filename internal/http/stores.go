package http

import (
	"github.com/concertlog/concertlog/internal/database/shows"
	"github.com/concertlog/concertlog/internal/entities"
)

// Controller interfaces are kept narrow so tests can stub exactly the
// methods a handler touches.

// ShowReader provides read access to the collection.
type ShowReader interface {
	GetByID(id uint) (*entities.Show, error)
	List(userID uint) ([]entities.Show, error)
	GetStats(userID uint) (*shows.Stats, error)
}

// ShowWriter mutates the collection.
type ShowWriter interface {
	Create(show *entities.Show) (uint, error)
	Update(id uint, update shows.ShowUpdate) error
	UpdateSong(showID, songID uint, rating *int, comment *string) error
	Delete(id uint) error
}

// ShowStore combines reads and writes for the shows controller.
type ShowStore interface {
	ShowReader
	ShowWriter
}

// ImportStore is what an import batch needs from persistence.
type ImportStore interface {
	Create(show *entities.Show) (uint, error)
	List(userID uint) ([]entities.Show, error)
	AttachSetlist(id uint, songs []entities.Song, catalogID, tour string) error
	SaveSession(session *entities.ImportSession) error
}
