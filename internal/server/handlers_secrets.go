package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Secret squares carry no permission logic of their own; the sharing gate
// is consulted here, at the API boundary.
func (s *Server) handleGetSecrets(c *gin.Context) {
	player := c.Param("player")
	if !ValidSlot(player) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player must be him or her"})
		return
	}
	if !s.canViewSlot(c, player) {
		return
	}
	secrets, err := s.store.GetSecrets(player, c.Param("gameId"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, secrets)
}

type createSecretRequest struct {
	Player      string `json:"player" binding:"required,slot"`
	GameID      string `json:"game_id" binding:"required"`
	Text        string `json:"text" binding:"required"`
	Description string `json:"description"`
}

var createSecretMessages = bindMessages{
	"Player": {"required": "player is required", "slot": "player must be him or her"},
	"GameID": {"required": "game_id is required"},
	"Text":   {"required": "text is required"},
}

func (s *Server) handleCreateSecret(c *gin.Context) {
	var req createSecretRequest
	if !bindJSON(c, &req, createSecretMessages, "invalid secret square") {
		return
	}
	if viewer := viewerSlot(c); viewer != "" && viewer != req.Player {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot create secret squares for another player"})
		return
	}
	text, err := validateText("text", req.Text, maxSquareTextLength)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	secret, err := s.store.CreateSecret(Secret{
		Player:      req.Player,
		GameID:      req.GameID,
		Text:        text,
		Description: req.Description,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, secret)
}

type toggleSecretRequest struct {
	Checked *bool `json:"checked" binding:"required"`
}

// handleToggleSecret flips a secret square. Only the owning slot may
// toggle, so the viewer header is required here.
func (s *Server) handleToggleSecret(c *gin.Context) {
	var req toggleSecretRequest
	messages := bindMessages{"Checked": {"required": "checked is required"}}
	if !bindJSON(c, &req, messages, "invalid secret update") {
		return
	}
	secret, err := s.store.GetSecret(c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if viewerSlot(c) != secret.Player {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can toggle a secret square"})
		return
	}
	updated, err := s.store.SetSecretChecked(secret.ID, *req.Checked)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
