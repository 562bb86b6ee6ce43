package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rankforge/rankforge/internal/config"
	"github.com/rankforge/rankforge/internal/orchestrator"
	"github.com/rankforge/rankforge/pkg/util"
)

func (s *Server) handleCreateJob(c *gin.Context) {
	var req orchestrator.BulkPublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if req.ID == "" {
		req.ID = util.NewJobID()
	}
	s.applyDefaultCredentials(&req)

	jobID, err := s.Orchestrator.CreateJob(req)
	if err != nil {
		var validationErr *orchestrator.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		s.Logger.Error("Failed to create bulk publish job", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"job_id": jobID})
}

// applyDefaultCredentials fills in tenant-wide credentials from config for
// targets that did not bring their own.
func (s *Server) applyDefaultCredentials(req *orchestrator.BulkPublishRequest) {
	defaults := map[string]config.PlatformConfig{
		"wordpress": s.Config.Platforms.WordPress,
		"shopify":   s.Config.Platforms.Shopify,
		"hubspot":   s.Config.Platforms.HubSpot,
	}
	for i := range req.Platforms {
		target := &req.Platforms[i]
		if len(target.Credentials) > 0 {
			continue
		}
		if platformCfg, ok := defaults[target.Platform]; ok && len(platformCfg.Credentials) > 0 {
			target.Credentials = platformCfg.Credentials
		}
	}
}

func (s *Server) handleGetProgress(c *gin.Context) {
	progress, ok := s.Orchestrator.GetProgress(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func (s *Server) handleCancel(c *gin.Context) {
	jobID := c.Param("id")
	userID := c.Query("user_id")

	if !s.Orchestrator.Cancel(jobID, userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found or already finished"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job cancelled"})
}

func (s *Server) handlePause(c *gin.Context) {
	if !s.Orchestrator.Pause(c.Param("id")) {
		c.JSON(http.StatusConflict, gin.H{"error": "job is not running"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job paused"})
}

func (s *Server) handleResume(c *gin.Context) {
	if !s.Orchestrator.Resume(c.Param("id")) {
		c.JSON(http.StatusConflict, gin.H{"error": "job is not paused"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job resumed"})
}

func (s *Server) handleListJobs(c *gin.Context) {
	filter := orchestrator.ListFilter{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("order"),
	}

	if statuses := c.Query("status"); statuses != "" {
		for _, status := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, orchestrator.JobStatus(strings.TrimSpace(status)))
		}
	}
	if platforms := c.Query("platform"); platforms != "" {
		for _, platform := range strings.Split(platforms, ",") {
			filter.Platforms = append(filter.Platforms, strings.TrimSpace(platform))
		}
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	jobs := s.Orchestrator.ListJobs(filter)
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": s.Orchestrator.GetStats(c.Query("user_id"))})
}

func (s *Server) handleHistory(c *gin.Context) {
	records, err := s.Archive.GetHistory(c.Param("id"))
	if err != nil {
		s.Logger.Error("Failed to get publish history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get publish history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *Server) handlePlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": s.Registry.Names()})
}
