package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/concertlog/concertlog/internal/database/shows"
	"github.com/concertlog/concertlog/internal/entities"
	"github.com/concertlog/concertlog/internal/importer"
)

type ShowsController struct {
	store   ShowStore
	enqueue func(showID uint)
}

// NewShowsController creates the collection CRUD controller. enqueue,
// when non-nil, is called after each manual add to kick off setlist
// enrichment.
func NewShowsController(store ShowStore, enqueue func(showID uint)) *ShowsController {
	return &ShowsController{store: store, enqueue: enqueue}
}

// CreateShowRequest is the manual-add payload.
type CreateShowRequest struct {
	Artist  string `json:"artist" binding:"required"`
	Venue   string `json:"venue" binding:"required"`
	Date    string `json:"date" binding:"required"`
	City    string `json:"city"`
	Country string `json:"country"`
	Tour    string `json:"tour"`
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

func (controller *ShowsController) CreateShow(c *gin.Context) {
	var req CreateShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	date := importer.NormalizeDate(req.Date)
	if date == "" {
		respondBadRequest(c, "unrecognized date: "+req.Date)
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 10) {
		respondBadRequest(c, "rating must be between 1 and 10")
		return
	}

	show := entities.Show{
		UserID:  GetUserID(c),
		Artist:  req.Artist,
		Venue:   req.Venue,
		Date:    date,
		City:    req.City,
		Country: req.Country,
		Tour:    req.Tour,
		Rating:  req.Rating,
		Comment: req.Comment,
		Manual:  true,
	}

	id, err := controller.store.Create(&show)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	if controller.enqueue != nil {
		controller.enqueue(id)
	}

	c.IndentedJSON(http.StatusCreated, show)
}

func (controller *ShowsController) ListShows(c *gin.Context) {
	list, err := controller.store.List(GetUserID(c))
	if err != nil {
		respondInternalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"shows": list, "count": len(list)})
}

func (controller *ShowsController) GetShow(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	show, err := controller.store.GetByID(id)
	if err != nil {
		respondNotFound(c, "show")
		return
	}
	c.IndentedJSON(http.StatusOK, show)
}

// UpdateShowRequest carries partial updates; absent fields are left
// untouched.
type UpdateShowRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
	Tour    *string `json:"tour"`
}

func (controller *ShowsController) UpdateShow(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 10) {
		respondBadRequest(c, "rating must be between 1 and 10")
		return
	}

	if _, err := controller.store.GetByID(id); err != nil {
		respondNotFound(c, "show")
		return
	}

	update := shows.ShowUpdate{
		Rating:  req.Rating,
		Comment: req.Comment,
		Tour:    req.Tour,
	}
	if err := controller.store.Update(id, update); err != nil {
		respondInternalError(c, err)
		return
	}

	show, err := controller.store.GetByID(id)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, show)
}

func (controller *ShowsController) DeleteShow(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := controller.store.GetByID(id); err != nil {
		respondNotFound(c, "show")
		return
	}
	if err := controller.store.Delete(id); err != nil {
		respondInternalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, SuccessResponse{Message: "show deleted"})
}

// UpdateSongRequest annotates one song in a setlist.
type UpdateSongRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func (controller *ShowsController) UpdateSong(c *gin.Context) {
	showID, ok := pathID(c, "id")
	if !ok {
		return
	}
	songID, ok := pathID(c, "songId")
	if !ok {
		return
	}

	var req UpdateSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 10) {
		respondBadRequest(c, "rating must be between 1 and 10")
		return
	}

	if err := controller.store.UpdateSong(showID, songID, req.Rating, req.Comment); err != nil {
		respondNotFound(c, "song")
		return
	}
	c.IndentedJSON(http.StatusOK, SuccessResponse{Message: "song updated"})
}

func (controller *ShowsController) GetStats(c *gin.Context) {
	stats, err := controller.store.GetStats(GetUserID(c))
	if err != nil {
		respondInternalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, stats)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
