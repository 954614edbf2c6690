package handler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medvault/internal/domain"
	"medvault/internal/export"
	"medvault/internal/service"
)

// CardHandler handles insurance card parsing and scan endpoints.
type CardHandler struct {
	cardService service.CardService
	now         func() time.Time
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService service.CardService) *CardHandler {
	return &CardHandler{cardService: cardService, now: time.Now}
}

// Parse handles POST /api/v1/cards/parse
// @Summary Parse OCR text
// @Description Extract insurance card fields from OCR text without saving anything
// @Tags cards
// @Accept json
// @Produce json
// @Param request body ParseCardRequest true "OCR text"
// @Success 200 {object} Response{data=domain.ParsedInsuranceCard} "Extracted card"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /cards/parse [post]
func (h *CardHandler) Parse(c *gin.Context) {
	var req ParseCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	RespondOK(c, h.cardService.ParseText(req.OCRText))
}

// CreateScan handles POST /api/v1/cards/scans
// @Summary Save a text scan
// @Tags cards
// @Accept json
// @Produce json
// @Param request body ParseCardRequest true "OCR text"
// @Success 201 {object} Response{data=domain.CardScan} "Completed scan"
// @Failure 400 {object} ErrorResponseBody "Blank OCR text"
// @Security BearerAuth
// @Router /cards/scans [post]
func (h *CardHandler) CreateScan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req ParseCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	scan, err := h.cardService.CreateTextScan(c.Request.Context(), userID, req.OCRText)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, scan)
}

// UploadScan handles POST /api/v1/cards/scans/upload
// @Summary Upload card images
// @Description Store the card images and queue the scan for OCR
// @Tags cards
// @Accept multipart/form-data
// @Produce json
// @Param front formData file true "Front of the card (JPG or PNG)"
// @Param back formData file false "Back of the card (JPG or PNG)"
// @Success 202 {object} Response{data=domain.CardScan} "Queued scan"
// @Failure 400 {object} ErrorResponseBody "Missing or unsupported image"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security BearerAuth
// @Router /cards/scans/upload [post]
func (h *CardHandler) UploadScan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	front, frontHeader, err := c.Request.FormFile("front")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "front field is required")
		return
	}
	defer func() { _ = front.Close() }()

	input := service.CardUploadInput{
		UserID: userID,
		Front:  cardImage(front, frontHeader),
	}
	if back, backHeader, err := c.Request.FormFile("back"); err == nil {
		defer func() { _ = back.Close() }()
		img := cardImage(back, backHeader)
		input.Back = &img
	}

	scan, err := h.cardService.UploadScan(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, scan)
}

func cardImage(f multipart.File, header *multipart.FileHeader) service.CardImageUpload {
	return service.CardImageUpload{File: f, FileName: header.Filename, Size: header.Size}
}

// ListScans handles GET /api/v1/cards/scans
// @Summary List scans
// @Tags cards
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.CardScan,meta=PagMeta} "Scans, newest first"
// @Security BearerAuth
// @Router /cards/scans [get]
func (h *CardHandler) ListScans(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	scans, total, err := h.cardService.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, scans, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetScan handles GET /api/v1/cards/scans/:id
// @Summary Get a scan
// @Tags cards
// @Produce json
// @Param id path string true "Scan ID (UUID)"
// @Success 200 {object} Response{data=domain.CardScan} "Scan"
// @Failure 404 {object} ErrorResponseBody "Scan not found"
// @Security BearerAuth
// @Router /cards/scans/{id} [get]
func (h *CardHandler) GetScan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	scanID, ok := parseIDParam(c, "id", "scan")
	if !ok {
		return
	}

	scan, err := h.cardService.GetByID(c.Request.Context(), userID, scanID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, scan)
}

// Confirm handles PUT /api/v1/cards/scans/:id/confirm
// @Summary Confirm a scan
// @Description Save the user-reviewed card and mark the scan confirmed
// @Tags cards
// @Accept json
// @Produce json
// @Param id path string true "Scan ID (UUID)"
// @Param request body domain.ParsedInsuranceCard true "Reviewed card"
// @Success 200 {object} Response{data=domain.CardScan} "Confirmed scan"
// @Failure 404 {object} ErrorResponseBody "Scan not found"
// @Failure 409 {object} ErrorResponseBody "Scan not parsed yet"
// @Security BearerAuth
// @Router /cards/scans/{id}/confirm [put]
func (h *CardHandler) Confirm(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	scanID, ok := parseIDParam(c, "id", "scan")
	if !ok {
		return
	}
	var card domain.ParsedInsuranceCard
	if err := c.ShouldBindJSON(&card); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	scan, err := h.cardService.Confirm(c.Request.Context(), userID, scanID, card)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, scan)
}

// Discard handles POST /api/v1/cards/scans/:id/discard
// @Summary Discard a scan
// @Tags cards
// @Produce json
// @Param id path string true "Scan ID (UUID)"
// @Success 200 {object} Response{data=domain.CardScan} "Discarded scan"
// @Failure 404 {object} ErrorResponseBody "Scan not found"
// @Security BearerAuth
// @Router /cards/scans/{id}/discard [post]
func (h *CardHandler) Discard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	scanID, ok := parseIDParam(c, "id", "scan")
	if !ok {
		return
	}

	scan, err := h.cardService.Discard(c.Request.Context(), userID, scanID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, scan)
}

// Reparse handles POST /api/v1/cards/scans/:id/reparse
// @Summary Re-run extraction
// @Description Text scans are re-parsed inline; image scans are queued again
// @Tags cards
// @Produce json
// @Param id path string true "Scan ID (UUID)"
// @Success 200 {object} Response{data=domain.CardScan} "Re-parsed text scan"
// @Success 202 {object} Response{data=domain.CardScan} "Re-queued image scan"
// @Failure 409 {object} ErrorResponseBody "Scan is processing"
// @Security BearerAuth
// @Router /cards/scans/{id}/reparse [post]
func (h *CardHandler) Reparse(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	scanID, ok := parseIDParam(c, "id", "scan")
	if !ok {
		return
	}

	scan, err := h.cardService.Reparse(c.Request.Context(), userID, scanID)
	if err != nil {
		HandleError(c, err)
		return
	}

	if scan.Status == domain.ScanStatusQueued {
		RespondAccepted(c, scan)
		return
	}
	RespondOK(c, scan)
}

// DeleteScan handles DELETE /api/v1/cards/scans/:id
// @Summary Delete a scan
// @Tags cards
// @Produce json
// @Param id path string true "Scan ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Scan deleted"
// @Failure 404 {object} ErrorResponseBody "Scan not found"
// @Security BearerAuth
// @Router /cards/scans/{id} [delete]
func (h *CardHandler) DeleteScan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	scanID, ok := parseIDParam(c, "id", "scan")
	if !ok {
		return
	}

	if err := h.cardService.Delete(c.Request.Context(), userID, scanID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "scan deleted"})
}

// Export handles GET /api/v1/cards/scans/export
// @Summary Export scans
// @Description Download scans as CSV or XLSX, optionally filtered by review status
// @Tags cards
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv (default) or xlsx"
// @Param review_status query string false "pending, confirmed or discarded"
// @Success 200 {file} file "Export file"
// @Failure 400 {object} ErrorResponseBody "Unknown format or review status"
// @Security BearerAuth
// @Router /cards/scans/export [get]
func (h *CardHandler) Export(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}
	review := domain.ReviewStatus(c.Query("review_status"))
	switch review {
	case "", domain.ReviewStatusPending, domain.ReviewStatusConfirmed, domain.ReviewStatusDiscarded:
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_REVIEW_STATUS", "review_status must be pending, confirmed or discarded")
		return
	}

	// Buffered so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.cardService.Export(c.Request.Context(), userID, review, format, &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("insurance-cards", format, h.now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
