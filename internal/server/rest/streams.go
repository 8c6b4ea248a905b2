package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/10xr-agents/browse-automation-service/internal/stream"
)

type streamLagResp struct {
	RoomName         string `json:"room_name"`
	HeadSeq          int64  `json:"head_seq"`
	LastProcessedSeq int64  `json:"last_processed_seq"`
	Lag              int64  `json:"lag"`
}

// streamLag handles GET /streams/{room_name}/lag: reports how far the
// command stream consumer group has fallen behind the head of room_name's
// command stream, for operators watching for a stuck or crashed consumer.
func (s *Server) streamLag(c *gin.Context) {
	room := c.Param("room_name")
	streamKey := stream.CommandStreamKey(room)

	head, err := s.deps.StreamStore.HeadSeq(c.Request.Context(), streamKey)
	if err != nil {
		writeError(c, err)
		return
	}
	last, err := s.deps.StreamStore.LastProcessedSeq(c.Request.Context(), room)
	if err != nil {
		writeError(c, err)
		return
	}

	lag := head - last
	if lag < 0 {
		lag = 0
	}
	c.JSON(http.StatusOK, streamLagResp{
		RoomName:         room,
		HeadSeq:          head,
		LastProcessedSeq: last,
		Lag:              lag,
	})
}
