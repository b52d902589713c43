package server

import (
	"errors"
	"log"
	"net/http"

	"bingo-nights/internal/config"

	"github.com/gin-gonic/gin"
)

// Header carrying the authenticated identity. Identity provisioning itself
// is an external concern; the value is opaque to this service.
const headerUserID = "X-User-Id"

// Header carrying the viewer's game slot, used by the sharing gate when one
// slot reads the other slot's progress or secret squares.
const headerPlayerSlot = "X-Player-Slot"

type Server struct {
	store Store
	cfg   config.Config
	ai    *aiClient
}

func New(store Store, cfg config.Config) *Server {
	registerValidators()
	return &Server{
		store: store,
		cfg:   cfg,
		ai:    newAIClient(cfg),
	}
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	api.POST("/games", s.handleCreateGame)
	api.GET("/games", s.handleListGames)
	api.GET("/games/templates", s.handleListTemplates)
	api.GET("/games/stats", s.handleStats)
	api.GET("/games/:id", s.handleGetGame)
	api.PATCH("/games/:id", s.handleUpdateGame)
	api.DELETE("/games/:id", s.handleDeleteGame)
	api.POST("/games/:id/duplicate", s.handleDuplicateGame)
	api.POST("/games/:id/join", s.handleJoinGame)
	api.PATCH("/games/:id/winner", s.handleDeclareWinner)
	api.GET("/games/:id/qr", s.handleGameQR)

	api.GET("/progress/:player/:gameId", s.handleGetProgress)
	api.POST("/progress", s.handleUpsertProgress)

	api.GET("/secrets/:player/:gameId", s.handleGetSecrets)
	api.POST("/secrets", s.handleCreateSecret)
	api.PATCH("/secrets/:id", s.handleToggleSecret)

	api.POST("/auth/setup", s.handleAuthSetup)
	api.POST("/auth/login", s.handleAuthLogin)
	api.GET("/auth/status/:player", s.handleAuthStatus)
	api.PATCH("/auth/share/:player", s.handleAuthShare)

	api.POST("/ai/suggestions", s.handleAISuggestions)
	api.POST("/ai/bet-suggestion", s.handleAIBetSuggestion)

	return router
}

// callerID returns the authenticated identity, writing a 401 when absent.
func callerID(c *gin.Context) (string, bool) {
	id := c.GetHeader(headerUserID)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + headerUserID + " header"})
		return "", false
	}
	return id, true
}

func viewerSlot(c *gin.Context) string {
	return c.GetHeader(headerPlayerSlot)
}

// canViewSlot enforces the sharing gate: a slot always sees its own data;
// the other slot sees it only while the sharing flag is on. The flag is
// read fresh on every request. The response body is identical whether the
// target slot has a credential or not.
func (s *Server) canViewSlot(c *gin.Context, target string) bool {
	viewer := viewerSlot(c)
	if viewer == "" || viewer == target {
		return true
	}
	cred, err := s.store.GetCredential(target)
	if err == nil && cred.Shared {
		return true
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		writeStoreError(c, err)
		return false
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "this player has not shared their card"})
	return false
}

// writeStoreError maps store error kinds onto HTTP statuses.
func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error path=%s err=%v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
