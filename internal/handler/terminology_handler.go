package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"medvault/internal/port"
)

// TerminologySearcher is satisfied by *terminology.Service.
type TerminologySearcher interface {
	Sources() []string
	Search(ctx context.Context, source, query string, limit int, state string) ([]port.Suggestion, error)
}

// TerminologyHandler serves autocomplete lookups.
type TerminologyHandler struct {
	terminology TerminologySearcher
}

// NewTerminologyHandler creates a new TerminologyHandler.
func NewTerminologyHandler(terminology TerminologySearcher) *TerminologyHandler {
	return &TerminologyHandler{terminology: terminology}
}

// Sources handles GET /api/v1/terminology
// @Summary List terminology sources
// @Tags terminology
// @Produce json
// @Success 200 {object} Response{data=[]string} "Source names"
// @Security BearerAuth
// @Router /terminology [get]
func (h *TerminologyHandler) Sources(c *gin.Context) {
	RespondOK(c, h.terminology.Sources())
}

// Search handles GET /api/v1/terminology/:source/search
// @Summary Autocomplete search
// @Description Suggestions from conditions, medications or providers. Short queries return an empty list.
// @Tags terminology
// @Produce json
// @Param source path string true "conditions, medications or providers"
// @Param q query string true "Search text"
// @Param limit query int false "Maximum suggestions"
// @Param state query string false "US state code (providers only)"
// @Success 200 {object} Response{data=[]port.Suggestion} "Suggestions"
// @Failure 404 {object} ErrorResponseBody "Unknown source"
// @Failure 503 {object} ErrorResponseBody "Source rate limited; see Retry-After"
// @Security BearerAuth
// @Router /terminology/{source}/search [get]
func (h *TerminologyHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	suggestions, err := h.terminology.Search(c.Request.Context(), c.Param("source"), c.Query("q"), limit, c.Query("state"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, suggestions)
}
