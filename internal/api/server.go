package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ims/internal/excel"
	"ims/internal/models"
	"ims/internal/services"
)

// Server wires handlers to the checklist service.
type Server struct {
	Checklist *services.Checklist
}

// RegisterRoutes attaches handlers to the gin engine.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", s.handleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/templates", s.handleListTemplates)
		v1.POST("/sessions", s.handleCreateSession)
		v1.GET("/sessions/:token", s.handleGetSession)
		v1.POST("/sessions/:token/fill", s.handleFillTask)
		v1.POST("/sessions/:token/complete", s.handleCompleteSession)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

func (s *Server) handleListTemplates(c *gin.Context) {
	templates, err := s.Checklist.Templates()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "template_dir_unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

type createSessionRequest struct {
	Template string `json:"template"`
	Initials string `json:"initials"`
	Day      int    `json:"day"`
	Period   string `json:"period"`
	Year     int    `json:"year"`
}

type sessionResponse struct {
	Token     string          `json:"token"`
	Details   models.Details  `json:"details"`
	Sheets    []models.Sheet  `json:"sheets"`
	Filled    int             `json:"filled"`
	Total     int             `json:"total"`
	ExpiresAt time.Time       `json:"expires_at"`
	Warnings  []excel.Warning `json:"warnings,omitempty"`
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	details := models.Details{
		Initials: req.Initials,
		Day:      req.Day,
		Period:   req.Period,
		Year:     req.Year,
	}
	session, warnings, err := s.Checklist.StartSession(req.Template, details)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{
		Token:     session.Token,
		Details:   session.Details,
		Sheets:    session.Sheets,
		Filled:    models.CountFilled(session.Sheets),
		Total:     models.CountTasks(session.Sheets),
		ExpiresAt: session.ExpiresAt,
		Warnings:  warnings,
	})
}

func (s *Server) handleGetSession(c *gin.Context) {
	filled, total, err := s.Checklist.Progress(c.Param("token"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filled": filled, "total": total})
}

type fillRequest struct {
	Sheet    int    `json:"sheet"`
	Category int    `json:"category"`
	Task     int    `json:"task"`
	Status   string `json:"status"`
}

func (s *Server) handleFillTask(c *gin.Context) {
	var req fillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	token := c.Param("token")
	if err := s.Checklist.Fill(token, req.Sheet, req.Category, req.Task, req.Status); err != nil {
		abortWithError(c, err)
		return
	}
	filled, total, err := s.Checklist.Progress(token)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filled": filled, "total": total})
}

func (s *Server) handleCompleteSession(c *gin.Context) {
	outputPath, err := s.Checklist.Complete(c.Param("token"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"output_path": outputPath})
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInitials):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_initials"})
	case errors.Is(err, models.ErrInvalidDate):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
	case errors.Is(err, models.ErrInvalidStatus):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
	case errors.Is(err, services.ErrTemplateNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "template_not_found"})
	case errors.Is(err, models.ErrSessionNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
	case errors.Is(err, models.ErrTaskNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "task_not_found"})
	case errors.Is(err, models.ErrCommentTask):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "comment_task"})
	case errors.Is(err, excel.ErrMissingColumns):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "missing_input_columns"})
	case errors.Is(err, excel.ErrFilenameFormat):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "bad_workbook_filename"})
	case errors.Is(err, excel.ErrSourceDocumentMissing):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "source_workbook_missing"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
