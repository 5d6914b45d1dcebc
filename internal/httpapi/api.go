// Package httpapi exposes the ingestion and ranking operations over HTTP.
package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"fraglog/internal/ingest"
	"fraglog/internal/logging"
	"fraglog/internal/rank"
	"fraglog/internal/store"
)

// Handler wires the ingestion engine and ranking service into gin routes.
type Handler struct {
	ingestor *ingest.Ingestor
	ranks    *rank.Service
	store    store.Store
}

// New creates the HTTP handler set.
func New(ingestor *ingest.Ingestor, ranks *rank.Service, st store.Store) *Handler {
	return &Handler{ingestor: ingestor, ranks: ranks, store: st}
}

// Router builds the gin engine with all routes attached.
func (h *Handler) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", h.health)
	engine.POST("/logs/upload", h.uploadLogs)
	engine.POST("/logs/matches/:label/teams", h.setTeams)
	engine.GET("/matches", h.listMatches)
	engine.GET("/matches/:label/ranking", h.matchRanking)
	engine.GET("/players/ranking", h.globalRanking)

	return engine
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// uploadLogs accepts the log document as a multipart file upload (field
// "file") or as the raw request body.
func (h *Handler) uploadLogs(c *gin.Context) {
	document, err := readDocument(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing log document"})
		return
	}

	if err := h.ingestor.Ingest(c.Request.Context(), document); err != nil {
		logging.Logger().Errorf("ingest failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func readDocument(c *gin.Context) (string, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()

		raw, err := io.ReadAll(f)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 {
		return "", errors.New("empty document")
	}
	return string(raw), nil
}

type setTeamsRequest struct {
	Teams map[string]string `json:"teams" binding:"required"`
}

func (h *Handler) setTeams(c *gin.Context) {
	var req setTeamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "teams mapping is required"})
		return
	}

	err := h.ingestor.SetTeams(c.Request.Context(), c.Param("label"), req.Teams)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}
	if err != nil {
		logging.Logger().Errorf("set teams failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "set teams failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listMatches(c *gin.Context) {
	matches, err := h.store.ListMatches(c.Request.Context())
	if err != nil {
		logging.Logger().Errorf("list matches failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list matches failed"})
		return
	}

	out := make([]rank.MatchInfo, 0, len(matches))
	for _, m := range matches {
		out = append(out, rank.MatchInfo{Label: m.Label, StartedAt: m.StartedAt, EndedAt: m.EndedAt})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) matchRanking(c *gin.Context) {
	ranking, err := h.ranks.MatchRanking(c.Request.Context(), c.Param("label"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}
	if err != nil {
		logging.Logger().Errorf("match ranking failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ranking failed"})
		return
	}

	c.JSON(http.StatusOK, ranking)
}

func (h *Handler) globalRanking(c *gin.Context) {
	entries, err := h.ranks.GlobalRanking(c.Request.Context())
	if err != nil {
		logging.Logger().Errorf("global ranking failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ranking failed"})
		return
	}

	c.JSON(http.StatusOK, entries)
}
