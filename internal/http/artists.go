package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/concertlog/concertlog/internal/setlist"
)

type ArtistsController struct {
	searcher setlist.ArtistSearcher
}

func NewArtistsController(searcher setlist.ArtistSearcher) *ArtistsController {
	return &ArtistsController{searcher: searcher}
}

// Search looks an artist up in the catalog and returns candidates
// ranked by name similarity to the query.
func (controller *ArtistsController) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}

	ranked, err := setlist.RankArtists(c.Request.Context(), controller.searcher, query)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"artists": ranked, "count": len(ranked)})
}
