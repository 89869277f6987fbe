package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bft-labs/lumberjack/internal/adapters/fs"
	"github.com/bft-labs/lumberjack/internal/domain"
)

// EnqueueResponse is returned by POST /v1/records/:suffix/:type.
type EnqueueResponse struct {
	Queued   int `json:"queued"`
	QueueLen int `json:"queue_len"`
}

// HealthResponse is returned by GET /v1/health.
type HealthResponse struct {
	Status           string    `json:"status"`
	QueueLen         int       `json:"queue_len"`
	LastException    string    `json:"last_exception,omitempty"`
	FallbackLogFile  string    `json:"fallback_log_file,omitempty"`
	FallbackFileSize string    `json:"fallback_file_size,omitempty"`
	Uptime           string    `json:"uptime"`
	Timestamp        time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleEnqueue accepts a JSON object, or an array of objects, as document
// bodies for prefix+suffix.
func (s *Server) handleEnqueue(c *gin.Context) {
	suffix := c.Param("suffix")
	typ := c.Param("type")

	var payload any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	bodies, ok := toBodies(payload)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "body must be a JSON object or an array of objects"})
		return
	}

	for _, body := range bodies {
		s.backend.Enqueue(suffix, typ, body)
	}
	c.JSON(http.StatusAccepted, EnqueueResponse{
		Queued:   len(bodies),
		QueueLen: s.backend.QueueLen(),
	})
}

func toBodies(payload any) ([]domain.Body, bool) {
	switch v := payload.(type) {
	case map[string]any:
		return []domain.Body{v}, true
	case []any:
		bodies := make([]domain.Body, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			bodies = append(bodies, m)
		}
		return bodies, true
	default:
		return nil, false
	}
}

func (s *Server) handleFlush(c *gin.Context) {
	s.backend.TriggerFlush()
	c.JSON(http.StatusAccepted, gin.H{"status": "flush triggered"})
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		Status:          "ok",
		QueueLen:        s.backend.QueueLen(),
		FallbackLogFile: s.config.FallbackLogFile,
		Uptime:          time.Since(s.startTime).Round(time.Second).String(),
		Timestamp:       time.Now(),
	}

	if err := s.backend.LastException(); err != nil {
		resp.Status = "degraded"
		resp.LastException = err.Error()
	}

	if s.config.FallbackLogFile != "" {
		size, err := fs.FileSize(s.config.FallbackLogFile)
		if err != nil {
			size = "unknown"
		}
		resp.FallbackFileSize = size
	}

	c.JSON(http.StatusOK, resp)
}
