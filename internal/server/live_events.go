package server

import (
	"github.com/gin-gonic/gin"
)

var streamableTables = map[string]bool{
	"products":       true,
	"orders":         true,
	"user_purchases": true,
}

// StreamTableEvents handles GET /api/v1/admin/events/:table, a server-sent
// event feed of row changes for the back office.
func (s *Server) StreamTableEvents(c *gin.Context) {
	table := c.Param("table")
	if !streamableTables[table] {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	sub, backlog, err := s.hub.Subscribe(table)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	for _, event := range backlog {
		c.SSEvent("change", event)
	}
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			c.SSEvent("change", event)
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}
