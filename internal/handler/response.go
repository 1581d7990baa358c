package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "timesheet/backend/internal/errors"
	"timesheet/backend/internal/ledger"
	"timesheet/backend/internal/middleware"
	"timesheet/backend/internal/model"
)

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	if apiErr == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "internal_error",
				"message": "internal server error",
			},
		})
		return
	}

	errorBody := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		errorBody["details"] = apiErr.Details
	}

	c.JSON(apiErr.Status, gin.H{
		"error": errorBody,
	})
}

func writeInvalidJSON(c *gin.Context) {
	writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
}

// currentUser reads the user set by middleware.Auth and writes 401 when it
// is missing.
func currentUser(c *gin.Context) (model.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, apperrors.Unauthorized(""))
	}
	return user, ok
}

// weekOffset parses the optional ?offset= query; missing means 0.
func weekOffset(c *gin.Context) (int, *apperrors.APIError) {
	raw := strings.TrimSpace(c.Query("offset"))
	if raw == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation("invalid_offset", "offset", "offset must be an integer")
	}
	if offset < -ledger.MaxWeekOffset || offset > ledger.MaxWeekOffset {
		return 0, apperrors.Validation("invalid_offset", "offset",
			fmt.Sprintf("offset must be between -%d and %d", ledger.MaxWeekOffset, ledger.MaxWeekOffset))
	}
	return offset, nil
}
