package handlers

import (
	"net/http"
	"strconv"

	"clausewise-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QueryHandler handles HTTP requests for coverage queries
type QueryHandler struct {
	queryService *service.QueryService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService *service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// AnalyzeQueryRequest represents the JSON body for query analysis
type AnalyzeQueryRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Query  string `json:"query" binding:"required"`
}

// AnalyzeQuery handles POST /api/queries/analyze
func (h *QueryHandler) AnalyzeQuery(c *gin.Context) {
	var req AnalyzeQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "user_id and query are required",
			},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	result, err := h.queryService.AnalyzeQuery(c.Request.Context(), service.AnalyzeQueryRequest{
		UserID:    userID,
		QueryText: req.Query,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"query_id":           result.Query.ID,
			"structured_query":   result.Query.Structured,
			"decision":           result.Result.Decision,
			"amount":             result.Result.Amount,
			"deductible":         result.Result.Deductible,
			"coverage_details":   result.Result.CoverageDetails,
			"justification":      result.Result.Justification,
			"confidence_score":   result.Result.ConfidenceScore,
			"processing_time_ms": result.Result.ProcessingTimeMs,
			"source":             result.Source,
		},
	})
}

// GetHistory handles GET /api/queries
func (h *QueryHandler) GetHistory(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Valid user_id query parameter is required",
			},
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.queryService.GetHistory(c.Request.Context(), service.GetHistoryRequest{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "HISTORY_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Queries,
	})
}

// GetResult handles GET /api/queries/:id/result
func (h *QueryHandler) GetResult(c *gin.Context) {
	queryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid query ID format",
			},
		})
		return
	}

	result, err := h.queryService.GetResult(c.Request.Context(), service.GetResultRequest{
		QueryID: queryID,
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RESULT_NOT_FOUND",
				"message": "No result found for this query",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Result,
	})
}
