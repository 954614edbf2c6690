package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medvault/internal/domain"
	"medvault/internal/service"
)

// FileHandler handles record vault endpoints.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload handles POST /api/v1/files/upload
// @Summary Upload a file
// @Description Upload a PDF, JPG or PNG into the record vault
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload (PDF, JPG, or PNG)"
// @Param category formData string false "record (default) or insurance_card"
// @Param description formData string false "Free-text description"
// @Success 201 {object} Response{data=domain.FileMeta} "File uploaded successfully"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Security BearerAuth
// @Router /files/upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	meta, err := h.fileService.Upload(c.Request.Context(), service.FileUploadInput{
		UserID:      userID,
		Category:    domain.FileCategory(c.PostForm("category")),
		Description: c.PostForm("description"),
		File:        file,
		FileName:    header.Filename,
		Size:        header.Size,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, meta)
}

// List handles GET /api/v1/files
// @Summary List files
// @Tags files
// @Produce json
// @Param category query string false "Filter by category"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.FileMeta,meta=PagMeta} "List of files"
// @Failure 400 {object} ErrorResponseBody "Invalid category"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /files [get]
func (h *FileHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	files, total, err := h.fileService.List(c.Request.Context(), userID, domain.FileCategory(c.Query("category")), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, files, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/files/:id
// @Summary Get file by ID
// @Description Get file metadata and a presigned download URL
// @Tags files
// @Produce json
// @Param id path string true "File ID (UUID)"
// @Success 200 {object} Response{data=service.FileWithURL} "File metadata with download URL"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "File not found"
// @Security BearerAuth
// @Router /files/{id} [get]
func (h *FileHandler) GetByID(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	fileID, ok := parseIDParam(c, "id", "file")
	if !ok {
		return
	}

	file, err := h.fileService.GetWithURL(c.Request.Context(), userID, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, file)
}

// Delete handles DELETE /api/v1/files/:id
// @Summary Delete a file
// @Tags files
// @Produce json
// @Param id path string true "File ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "File deleted"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "File not found"
// @Security BearerAuth
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	fileID, ok := parseIDParam(c, "id", "file")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), userID, fileID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "file deleted"})
}
