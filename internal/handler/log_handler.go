package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"timesheet/backend/internal/ledger"
	"timesheet/backend/internal/service"
)

type LogHandler struct {
	logService *service.LogService
}

type submitLogRequest struct {
	ProjectID    string `json:"projectId"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	BreakMinutes int    `json:"breakMinutes"`
	Note         string `json:"note"`
}

// editLogRequest leaves absent fields untouched. Hours are always derived
// and cannot be sent.
type editLogRequest struct {
	StartTime    *string `json:"startTime"`
	EndTime      *string `json:"endTime"`
	BreakMinutes *int    `json:"breakMinutes"`
	Note         *string `json:"note"`
}

func NewLogHandler(logService *service.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

func (h *LogHandler) Week(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	offset, apiErr := weekOffset(c)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	view, apiErr := h.logService.Week(c.Request.Context(), user, offset)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *LogHandler) UserWeek(c *gin.Context) {
	offset, apiErr := weekOffset(c)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	view, apiErr := h.logService.UserWeek(c.Request.Context(), c.Param("id"), offset)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *LogHandler) Submit(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req submitLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	entry, apiErr := h.logService.Submit(c.Request.Context(), user, service.SubmitInput{
		ProjectID:    req.ProjectID,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		Note:         req.Note,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (h *LogHandler) Edit(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req editLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	entry, apiErr := h.logService.Edit(c.Request.Context(), user, c.Param("id"), ledger.Patch{
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		Note:         req.Note,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

func (h *LogHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if apiErr := h.logService.Delete(c.Request.Context(), user, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
