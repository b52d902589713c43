package server

import (
	"net/http"

	"bingo-nights/internal/grid"

	"github.com/gin-gonic/gin"
)

type progressResponse struct {
	Entries    []ProgressEntry  `json:"entries"`
	Highlights []grid.Highlight `json:"highlights"`
	Bingos     int              `json:"bingos"`
}

// handleGetProgress returns one slot's ledger for a game, plus the derived
// highlight state so poll-based clients carry no grid rules of their own.
func (s *Server) handleGetProgress(c *gin.Context) {
	player := c.Param("player")
	if !ValidSlot(player) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player must be him or her"})
		return
	}
	if !s.canViewSlot(c, player) {
		return
	}
	game, err := s.store.GetGame(c.Param("gameId"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	entries, err := s.store.GetProgress(player, game.ID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	checked := make(map[int]bool, len(entries))
	for _, entry := range entries {
		if entry.Checked {
			checked[entry.SquareIndex] = true
		}
	}
	c.JSON(http.StatusOK, progressResponse{
		Entries:    entries,
		Highlights: grid.Highlights(game.GridSize, checked),
		Bingos:     len(grid.CompletedLines(game.GridSize, checked)),
	})
}

type upsertProgressRequest struct {
	Player      string `json:"player" binding:"required,slot"`
	GameID      string `json:"game_id" binding:"required"`
	SquareIndex *int   `json:"square_index" binding:"required"`
	Checked     bool   `json:"checked"`
}

var upsertProgressMessages = bindMessages{
	"Player":      {"required": "player is required", "slot": "player must be him or her"},
	"GameID":      {"required": "game_id is required"},
	"SquareIndex": {"required": "square_index is required"},
}

func (s *Server) handleUpsertProgress(c *gin.Context) {
	var req upsertProgressRequest
	if !bindJSON(c, &req, upsertProgressMessages, "invalid progress entry") {
		return
	}
	// Writes are always to the caller's own ledger; a mismatched viewer
	// slot is the one ownership check the service performs.
	if viewer := viewerSlot(c); viewer != "" && viewer != req.Player {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot mark another player's squares"})
		return
	}
	entry, err := s.store.UpsertProgress(req.Player, req.GameID, *req.SquareIndex, req.Checked)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
