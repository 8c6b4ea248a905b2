package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/store"
	"github.com/10xr-agents/browse-automation-service/internal/pagination"
)

const defaultEntityPageSize = 100

var entityCollection = map[string]string{
	"screens":     store.CollectionScreens,
	"tasks":       store.CollectionTasks,
	"actions":     store.CollectionActions,
	"transitions": store.CollectionTransitions,
}

// getEntity handles GET /{collection}/:id (§6.2): look up a single knowledge
// entity by its primary key, regardless of which knowledge_id it belongs to.
func (s *Server) getEntity(collection string) gin.HandlerFunc {
	coll := entityCollection[collection]
	return func(c *gin.Context) {
		raw, ok, err := s.deps.Docs.Get(c.Request.Context(), coll, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if !ok {
			writeError(c, errNotFound(collection+" "+c.Param("id")+" not found"))
			return
		}
		c.Data(http.StatusOK, "application/json", raw)
	}
}

// listEntities handles GET /{collection}?website_id=...&cursor=...&limit=...
// (§6.2): lists every entity of the given kind scoped to one knowledge
// graph, paginated with the same composite cursor scheme the teacher uses
// for live browser event logs (sequence-only, since stored entities carry
// no timestamp of their own).
func (s *Server) listEntities(collection string) gin.HandlerFunc {
	coll := entityCollection[collection]
	return func(c *gin.Context) {
		knowledgeID := c.Query("website_id")
		if knowledgeID == "" {
			knowledgeID = c.Query("knowledge_id")
		}
		if knowledgeID == "" {
			writeError(c, braerr.New(braerr.InvalidParams, "website_id is required"))
			return
		}

		cursor, err := pagination.ParseCursor(c.Query("cursor"))
		if err != nil {
			writeError(c, braerr.New(braerr.InvalidParams, err.Error()))
			return
		}
		limit := defaultEntityPageSize
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		raw, err := s.deps.Docs.ListByKnowledgeID(c.Request.Context(), coll, knowledgeID)
		if err != nil {
			writeError(c, err)
			return
		}

		start := int(cursor.Sequence)
		if start < 0 || start > len(raw) {
			start = len(raw)
		}
		end := start + limit
		if end > len(raw) {
			end = len(raw)
		}
		page := raw[start:end]

		nextCursor := ""
		if end < len(raw) {
			nextCursor = pagination.BuildCursor("", int64(end))
		}
		c.JSON(http.StatusOK, gin.H{collection: rawMessages(page), "next_cursor": nextCursor})
	}
}

func rawMessages(raw [][]byte) []json.RawMessage {
	out := make([]json.RawMessage, len(raw))
	for i, r := range raw {
		out[i] = json.RawMessage(r)
	}
	return out
}
