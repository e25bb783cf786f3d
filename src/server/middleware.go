package server

import (
	"errors"
	"net/http"
	"time"

	"quote-server/src/logger"
	"quote-server/src/workerpool"

	"github.com/gin-gonic/gin"
)

// admission runs the rest of the handler chain on a pool worker and blocks
// the connection goroutine until it is done.
func (s *QuoteServer) admission() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := s.pool.SubmitAndWait(c.Next)

		switch {
		case err == nil:
		case errors.Is(err, workerpool.ErrTaskPanicked):
			s.Logger.Error("Handler panicked for %s %s", c.Request.Method, c.Request.URL.Path)
			if !c.Writer.Written() {
				c.Data(http.StatusInternalServerError, contentTypeJSON, nil)
			}
			c.Abort()
		default:
			if !c.Writer.Written() {
				c.Data(http.StatusServiceUnavailable, contentTypeJSON, nil)
			}
			c.Abort()
		}
	}
}

// -----------------------------------------------------------------------------

// exactTarget answers like an unknown path when the request target carries a
// query string; routes match on the full target.
func (s *QuoteServer) exactTarget() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.RawQuery != "" || c.Request.URL.ForceQuery {
			s.unknown(c)
			c.Abort()
		}
	}
}

// -----------------------------------------------------------------------------

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
