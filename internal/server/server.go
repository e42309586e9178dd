// Package server exposes the storage API consumed by browser clients
// and by storage.RemoteBackend:
//
//	GET  /api/storage/{entity}?operation=read|exists&filename=
//	POST /api/storage/{entity}?operation=write|backup|restore
package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/megactek/productivity-management/internal/storage"
)

// Server routes storage API requests onto a backend.
type Server struct {
	backend storage.Backend
	router  *gin.Engine
}

// New builds the router over the given backend.
func New(backend storage.Backend) *Server {
	s := &Server{backend: backend}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(RecoveryWithLog())
	router.Use(cors.Default())

	router.GET("/health", s.handleHealth)
	router.GET("/api/storage/:entity", s.handleStorageGet)
	router.POST("/api/storage/:entity", s.handleStoragePost)

	s.router = router
	return s
}

// Router returns the underlying gin engine, ready to serve.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
