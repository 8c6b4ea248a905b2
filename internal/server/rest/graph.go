package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/graph"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/store"
)

type graphQueryReq struct {
	KnowledgeID string `json:"knowledge_id" binding:"required"`
	QueryType   string `json:"query_type" binding:"required"`
	ScreenID    string `json:"screen_id"`
	FromID      string `json:"from_id"`
	ToID        string `json:"to_id"`
	Q           string `json:"q"`
}

// graphQuery handles POST /graph/query (§6.2): find_path, get_neighbors,
// search_screens, get_transitions.
func (s *Server) graphQuery(c *gin.Context) {
	var req graphQueryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, braerr.New(braerr.InvalidParams, err.Error()))
		return
	}

	ctx := c.Request.Context()
	idx, err := graph.Build(ctx, s.deps.Docs, req.KnowledgeID)
	if err != nil {
		writeError(c, err)
		return
	}

	switch req.QueryType {
	case "find_path":
		if req.FromID == "" || req.ToID == "" {
			writeError(c, braerr.New(braerr.InvalidParams, "from_id and to_id are required for find_path"))
			return
		}
		path, ok := idx.ShortestPath(req.FromID, req.ToID)
		c.JSON(http.StatusOK, gin.H{"found": ok, "path": path})
	case "get_neighbors":
		if req.ScreenID == "" {
			writeError(c, braerr.New(braerr.InvalidParams, "screen_id is required for get_neighbors"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"neighbors": idx.Neighbors(req.ScreenID)})
	case "search_screens":
		raw, err := s.deps.Docs.ListByKnowledgeID(ctx, store.CollectionScreens, req.KnowledgeID)
		if err != nil {
			writeError(c, err)
			return
		}
		screens := decodeAll[model.Screen](raw)
		c.JSON(http.StatusOK, gin.H{"screens": searchScreens(screens, req.Q)})
	case "get_transitions":
		raw, err := s.deps.Docs.ListByKnowledgeID(ctx, store.CollectionTransitions, req.KnowledgeID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"transitions": decodeAll[model.Transition](raw)})
	default:
		writeError(c, braerr.New(braerr.InvalidParams, "unknown query_type: "+req.QueryType))
	}
}

func searchScreens(screens []model.Screen, q string) []model.Screen {
	q = strings.ToLower(q)
	var matches []model.Screen
	for _, sc := range screens {
		if strings.Contains(strings.ToLower(sc.Name), q) {
			matches = append(matches, sc)
			continue
		}
		for _, p := range sc.URLPatterns {
			if strings.Contains(strings.ToLower(p), q) {
				matches = append(matches, sc)
				break
			}
		}
	}
	return matches
}

func decodeAll[T any](raw [][]byte) []T {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if json.Unmarshal(r, &v) == nil {
			out = append(out, v)
		}
	}
	return out
}
