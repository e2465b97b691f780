package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/concertlog/concertlog/internal/importer"
	"github.com/concertlog/concertlog/internal/vision"
)

// Uploads larger than this are rejected outright.
const maxImportFileSize = 10 * 1024 * 1024

// ScreenshotReader extracts show records from an image.
type ScreenshotReader interface {
	ExtractShows(ctx context.Context, image []byte, mediaType string) ([]vision.ShowRecord, error)
}

// BatchResponse is the preview payload returned after every load or
// remap call.
type BatchResponse struct {
	BatchID string                     `json:"batch_id"`
	State   importer.State             `json:"state"`
	Mapping importer.FieldMapping      `json:"mapping,omitempty"`
	Records []importer.CandidateRecord `json:"records"`
	Preview importer.Result            `json:"preview"`
}

// ImportController runs import batches. Batches live in memory from
// load to commit; a restart discards uncommitted previews.
type ImportController struct {
	newBatch func() *importer.Orchestrator
	vision   ScreenshotReader

	mu      sync.Mutex
	batches map[string]*importer.Orchestrator
}

// NewImportController creates the controller. visionClient may be nil,
// which disables the screenshot endpoint.
func NewImportController(newBatch func() *importer.Orchestrator, visionClient ScreenshotReader) *ImportController {
	return &ImportController{
		newBatch: newBatch,
		vision:   visionClient,
		batches:  make(map[string]*importer.Orchestrator),
	}
}

// ImportFile accepts a delimited text file (multipart field "file" or
// the raw request body) and returns the preview.
func (controller *ImportController) ImportFile(c *gin.Context) {
	text, err := readUploadedText(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	batch := controller.newBatch()
	if err := batch.LoadFile(text); err != nil {
		if errors.Is(err, importer.ErrNoDataRows) {
			respondBadRequest(c, "file contains no data rows")
			return
		}
		respondInternalError(c, err)
		return
	}

	controller.register(batch)
	c.IndentedJSON(http.StatusOK, batchResponse(batch))
}

// ImportScreenshot accepts an image (multipart field "image"), runs
// extraction and returns the preview.
func (controller *ImportController) ImportScreenshot(c *gin.Context) {
	if controller.vision == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "screenshot import is not configured"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		respondBadRequest(c, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImportFileSize {
		respondBadRequest(c, "image too large")
		return
	}

	image, err := io.ReadAll(io.LimitReader(file, maxImportFileSize))
	if err != nil {
		respondInternalError(c, err)
		return
	}

	extracted, err := controller.vision.ExtractShows(c.Request.Context(), image, header.Header.Get("Content-Type"))
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if len(extracted) == 0 {
		c.IndentedJSON(http.StatusOK, BatchResponse{Records: []importer.CandidateRecord{}})
		return
	}

	records := make([]importer.CandidateRecord, len(extracted))
	for i, r := range extracted {
		records[i] = importer.CandidateRecord{
			Artist:  r.Artist,
			Venue:   r.Venue,
			RawDate: r.Date,
			City:    r.City,
		}
	}

	batch := controller.newBatch()
	if err := batch.LoadRecords("screenshot", records); err != nil {
		respondInternalError(c, err)
		return
	}

	controller.register(batch)
	c.IndentedJSON(http.StatusOK, batchResponse(batch))
}

// RecordImportRequest is the direct-records payload used by live
// search adds.
type RecordImportRequest struct {
	Source  string                     `json:"source"`
	Records []importer.CandidateRecord `json:"records" binding:"required"`
}

// ImportRecords accepts pre-structured records and returns the
// preview.
func (controller *ImportController) ImportRecords(c *gin.Context) {
	var req RecordImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.Source == "" {
		req.Source = "search"
	}

	batch := controller.newBatch()
	if err := batch.LoadRecords(req.Source, req.Records); err != nil {
		if errors.Is(err, importer.ErrNoDataRows) {
			respondBadRequest(c, "no records supplied")
			return
		}
		respondInternalError(c, err)
		return
	}

	controller.register(batch)
	c.IndentedJSON(http.StatusOK, batchResponse(batch))
}

// RemapRequest replaces the active column mapping.
type RemapRequest struct {
	Mapping importer.FieldMapping `json:"mapping" binding:"required"`
}

// Remap applies a corrected mapping and returns the rebuilt preview.
func (controller *ImportController) Remap(c *gin.Context) {
	batch, ok := controller.lookup(c)
	if !ok {
		return
	}

	var req RemapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := batch.Remap(req.Mapping); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.IndentedJSON(http.StatusOK, batchResponse(batch))
}

// SkipRequest toggles one row's skip flag.
type SkipRequest struct {
	Index int  `json:"index"`
	Skip  bool `json:"skip"`
}

// Skip marks a preview row to be excluded from commit.
func (controller *ImportController) Skip(c *gin.Context) {
	batch, ok := controller.lookup(c)
	if !ok {
		return
	}

	var req SkipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	batch.SetSkip(req.Index, req.Skip)
	c.IndentedJSON(http.StatusOK, batchResponse(batch))
}

// Commit persists the batch. The request context is the cancellation
// token: a dropped connection stops the batch between rows.
func (controller *ImportController) Commit(c *gin.Context) {
	batch, ok := controller.lookup(c)
	if !ok {
		return
	}

	result, err := batch.Commit(c.Request.Context())
	if err != nil {
		if c.Request.Context().Err() != nil {
			// Client went away; nothing left to answer.
			return
		}
		respondBadRequest(c, err.Error())
		return
	}

	controller.unregister(batch.BatchID())
	c.IndentedJSON(http.StatusOK, result)
}

// Progress reports batch position during commit and enrichment.
func (controller *ImportController) Progress(c *gin.Context) {
	batch, ok := controller.lookup(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, batch.Progress())
}

// Discard drops an uncommitted batch.
func (controller *ImportController) Discard(c *gin.Context) {
	batch, ok := controller.lookup(c)
	if !ok {
		return
	}

	batch.Reset()
	controller.unregister(c.Param("batch"))
	c.IndentedJSON(http.StatusOK, SuccessResponse{Message: "batch discarded"})
}

func (controller *ImportController) register(batch *importer.Orchestrator) {
	controller.mu.Lock()
	controller.batches[batch.BatchID()] = batch
	controller.mu.Unlock()
}

func (controller *ImportController) unregister(batchID string) {
	controller.mu.Lock()
	delete(controller.batches, batchID)
	controller.mu.Unlock()
}

func (controller *ImportController) lookup(c *gin.Context) (*importer.Orchestrator, bool) {
	controller.mu.Lock()
	batch, ok := controller.batches[c.Param("batch")]
	controller.mu.Unlock()
	if !ok {
		respondNotFound(c, "batch")
		return nil, false
	}
	return batch, true
}

func batchResponse(batch *importer.Orchestrator) BatchResponse {
	return BatchResponse{
		BatchID: batch.BatchID(),
		State:   batch.State(),
		Mapping: batch.Mapping(),
		Records: batch.Records(),
		Preview: batch.Preview(),
	}
}

// readUploadedText pulls delimited text from a multipart "file" field
// or, failing that, the raw request body.
func readUploadedText(c *gin.Context) (string, error) {
	if file, header, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		if header.Size > maxImportFileSize {
			return "", errors.New("file too large")
		}
		data, err := io.ReadAll(io.LimitReader(file, maxImportFileSize))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportFileSize))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("request body is empty")
	}
	return string(data), nil
}
