package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/megactek/productivity-management/internal/storage"
)

func (s *Server) handleStorageGet(c *gin.Context) {
	entity := c.Param("entity")
	if !storage.ValidName(entity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity name"})
		return
	}
	filename := c.Query("filename")
	if filename != "" && !storage.ValidName(filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filename"})
		return
	}

	switch c.DefaultQuery("operation", "read") {
	case "read":
		data, err := s.backend.Read(c.Request.Context(), entity, filename)
		if err != nil {
			handleStorageError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", data)

	case "exists":
		exists, err := s.backend.Exists(c.Request.Context(), entity, filename)
		if err != nil {
			handleStorageError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"exists": exists})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported operation"})
	}
}

func (s *Server) handleStoragePost(c *gin.Context) {
	entity := c.Param("entity")
	if !storage.ValidName(entity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity name"})
		return
	}
	filename := c.Query("filename")
	if filename != "" && !storage.ValidName(filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filename"})
		return
	}

	switch c.Query("operation") {
	case "write":
		var body struct {
			Data json.RawMessage `json:"data"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || len(body.Data) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing data"})
			return
		}
		if err := s.backend.Write(c.Request.Context(), entity, filename, body.Data); err != nil {
			handleStorageError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})

	case "backup":
		backupID, err := s.backend.CreateBackup(c.Request.Context(), entity, filename)
		if err != nil {
			handleStorageError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"backupId": backupID})

	case "restore":
		var body struct {
			BackupID string `json:"backupId"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.BackupID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing backupId"})
			return
		}
		if err := s.backend.RestoreFromBackup(c.Request.Context(), entity, body.BackupID); err != nil {
			handleStorageError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported operation"})
	}
}

// handleStorageError maps backend errors onto API statuses: misses to
// 404, bad names to 400, everything else to 500.
func handleStorageError(c *gin.Context, err error) {
	switch {
	case storage.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, storage.ErrInvalidEntity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
