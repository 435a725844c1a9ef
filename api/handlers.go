package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/go-query-decomposer/internal/errors"
	"github.com/gcbaptista/go-query-decomposer/model"
	"github.com/gcbaptista/go-query-decomposer/services"
)

// AnalyticsProvider serves the analytics dashboard.
type AnalyticsProvider interface {
	GetDashboardData() (model.AnalyticsDashboard, error)
}

// API holds dependencies for API handlers, primarily the decomposition service.
type API struct {
	decomposer services.DecompositionService
	analytics  AnalyticsProvider
}

// NewAPI creates a new API handler structure.
func NewAPI(decomposer services.DecompositionService, analytics AnalyticsProvider) *API {
	return &API{
		decomposer: decomposer,
		analytics:  analytics,
	}
}

// SetupRoutes defines all the API routes for the query decomposer.
// analytics and metricsHandler are optional; their routes are only
// registered when they are non-nil.
func SetupRoutes(router *gin.Engine, decomposer services.DecompositionService, analytics AnalyticsProvider, metricsHandler http.Handler) {
	apiHandler := NewAPI(decomposer, analytics)

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	if analytics != nil {
		router.GET("/analytics", apiHandler.GetAnalyticsHandler)
	}
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// Decomposition routes
	decomposeRoutes := router.Group("/decompose")
	{
		decomposeRoutes.POST("", apiHandler.DecomposeHandler)             // Decompose a query sent as JSON
		decomposeRoutes.GET("", apiHandler.DecomposeQueryParamHandler)    // Decompose ?q=... for quick probing
		decomposeRoutes.POST("/_batch", apiHandler.BatchDecomposeHandler) // Decompose several named queries
	}

	// Text cleaning routes
	router.POST("/normalize", apiHandler.NormalizeHandler)
	router.GET("/stopwords", apiHandler.StopWordsHandler)
}

// DecomposeRequest defines the structure for decomposition requests.
type DecomposeRequest struct {
	Query         string `json:"query"`
	MaxSplitCount int    `json:"max_split_count,omitempty"` // Optional: lower the phrase cap for this query
}

// NormalizeRequest defines the structure for normalization requests.
type NormalizeRequest struct {
	Text string `json:"text"`
}

// DecomposeHandler handles decomposition of a single query.
// Request Body: DecomposeRequest
func (api *API) DecomposeHandler(c *gin.Context) {
	var req DecomposeRequest
	if !bindJSON(c, &req) {
		return
	}

	if result := ValidateDecomposeRequest(req.Query, req.MaxSplitCount); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	api.decompose(c, services.DecomposeQuery{Query: req.Query, MaxSplitCount: req.MaxSplitCount})
}

// DecomposeQueryParamHandler handles GET /decompose?q=...&max_split_count=...
func (api *API) DecomposeQueryParamHandler(c *gin.Context) {
	query := c.Query("q")

	maxSplitCount := 0
	if raw := c.Query("max_split_count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			result := &ValidationResult{Valid: true}
			result.AddError("max_split_count", "max_split_count must be an integer")
			SendValidationError(c, result)
			return
		}
		maxSplitCount = n
	}

	if result := ValidateDecomposeRequest(query, maxSplitCount); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	api.decompose(c, services.DecomposeQuery{Query: query, MaxSplitCount: maxSplitCount})
}

func (api *API) decompose(c *gin.Context, query services.DecomposeQuery) {
	result, err := api.decomposer.Decompose(c.Request.Context(), query)
	if err != nil {
		SendServiceError(c, "decompose", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// BatchDecomposeHandler handles multi-query decomposition requests.
// Request Body: services.BatchDecomposeQuery
func (api *API) BatchDecomposeHandler(c *gin.Context) {
	var req services.BatchDecomposeQuery
	if !bindJSON(c, &req) {
		return
	}

	if result := ValidateBatchRequest(req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	results, err := api.decomposer.DecomposeBatch(c.Request.Context(), req)
	if err != nil {
		SendServiceError(c, "batch decompose", err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// NormalizeHandler shows every cleaning step applied to a piece of text.
// Request Body: NormalizeRequest
func (api *API) NormalizeHandler(c *gin.Context) {
	var req NormalizeRequest
	if !bindJSON(c, &req) {
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		result := &ValidationResult{Valid: true}
		result.AddError("text", "Text is required")
		SendValidationError(c, result)
		return
	}

	c.JSON(http.StatusOK, api.decomposer.Normalize(req.Text))
}

// StopWordsHandler lists the active stop-word entries, longest first.
func (api *API) StopWordsHandler(c *gin.Context) {
	words := api.decomposer.StopWords()
	c.JSON(http.StatusOK, gin.H{
		"stop_words": words,
		"count":      len(words),
	})
}

// bindJSON decodes the request body into target and sends the error
// response itself when that fails.
func bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			SendRequestTooLargeError(c, tooLarge.Limit)
			return false
		}
		SendInvalidJSONError(c, err)
		return false
	}
	return true
}

// SendServiceError maps an error returned by the decomposition service to
// the matching API error response.
func SendServiceError(c *gin.Context, operation string, err error) {
	var validationErr *internalErrors.ValidationError
	var tooLongErr *internalErrors.QueryTooLongError

	switch {
	case errors.As(err, &validationErr):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error(), ErrorDetail{
			Field:   validationErr.Field,
			Message: validationErr.Message,
			Code:    "VALIDATION_ERROR",
		})
	case errors.Is(err, internalErrors.ErrEmptyBatch):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	case errors.As(err, &tooLongErr):
		SendQueryTooLongError(c, tooLongErr)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		SendError(c, http.StatusRequestTimeout, ErrorCodeRequestCanceled, "Request cancelled during "+operation)
	default:
		log.Printf("Error: %s failed: %v", operation, err)
		SendInternalError(c, operation, err)
	}
}
