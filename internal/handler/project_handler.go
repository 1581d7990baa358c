package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"timesheet/backend/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Client      string `json:"client"`
	Status      string `json:"status"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

func (r projectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		Name:        r.Name,
		Description: r.Description,
		Client:      r.Client,
		Status:      r.Status,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, apiErr := h.projectService.List(c.Request.Context(), c.Query("status"), c.Query("search"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": projects})
}

func (h *ProjectHandler) Create(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	project, apiErr := h.projectService.Create(c.Request.Context(), admin, req.input())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	project, apiErr := h.projectService.Update(c.Request.Context(), admin, c.Param("id"), req.input())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	if apiErr := h.projectService.Delete(c.Request.Context(), admin, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) Details(c *gin.Context) {
	details, apiErr := h.projectService.Details(c.Request.Context(), c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, details)
}
