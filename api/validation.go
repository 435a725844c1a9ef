// Package api provides the HTTP interface of the query decomposer and the
// validation utilities for its request handling.
package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-query-decomposer/internal/decompose"
	"github.com/gcbaptista/go-query-decomposer/services"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateDecomposeRequest validates the query text and the optional split cap.
// A zero maxSplitCount means "use the service default".
func ValidateDecomposeRequest(query string, maxSplitCount int) *ValidationResult {
	result := &ValidationResult{Valid: true}
	validateQuery(result, "query", query, "max_split_count", maxSplitCount)
	return result
}

// ValidateBatchRequest validates every named query of a batch request.
// The per-batch query limit is enforced by the service, which knows its settings.
func ValidateBatchRequest(req services.BatchDecomposeQuery) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Queries) == 0 {
		result.AddError("queries", "At least one query is required")
		return result
	}

	names := make(map[string]bool, len(req.Queries))
	for i, q := range req.Queries {
		prefix := fmt.Sprintf("queries[%d]", i)

		switch {
		case strings.TrimSpace(q.Name) == "":
			result.AddError(prefix+".name", "All queries must have a non-empty name")
		case names[q.Name]:
			result.AddError(prefix+".name", "Query names must be unique: '"+q.Name+"' appears multiple times")
		default:
			names[q.Name] = true
		}

		validateQuery(result, prefix+".query", q.Query, prefix+".max_split_count", q.MaxSplitCount)
	}

	return result
}

func validateQuery(result *ValidationResult, queryField, query, capField string, maxSplitCount int) {
	if strings.TrimSpace(query) == "" {
		result.AddError(queryField, "Query is required")
	}
	if maxSplitCount != 0 && (maxSplitCount < decompose.MinSplitCount || maxSplitCount > decompose.MaxSplitCount) {
		result.AddError(capField, fmt.Sprintf("max_split_count must be between %d and %d",
			decompose.MinSplitCount, decompose.MaxSplitCount))
	}
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}
