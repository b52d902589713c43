package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type authSetupRequest struct {
	Player string `json:"player" binding:"required,slot"`
	PIN    string `json:"pin" binding:"required,pin"`
}

var authSetupMessages = bindMessages{
	"Player": {"required": "player is required", "slot": "player must be him or her"},
	"PIN":    {"required": "pin is required", "pin": "pin must be 4-8 characters"},
}

// handleAuthSetup stores a slot's PIN. Set-once: a slot with an existing
// credential must log in with it, never overwrite it.
func (s *Server) handleAuthSetup(c *gin.Context) {
	var req authSetupRequest
	if !bindJSON(c, &req, authSetupMessages, "invalid setup request") {
		return
	}
	cred, err := s.store.CreateCredential(req.Player, req.PIN)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	log.Printf("credential created player=%s", req.Player)
	c.JSON(http.StatusOK, gin.H{"player": cred.Player, "shared": cred.Shared})
}

type authLoginRequest struct {
	Player string `json:"player" binding:"required,slot"`
	PIN    string `json:"pin" binding:"required"`
}

var authLoginMessages = bindMessages{
	"Player": {"required": "player is required", "slot": "player must be him or her"},
	"PIN":    {"required": "pin is required"},
}

func (s *Server) handleAuthLogin(c *gin.Context) {
	var req authLoginRequest
	if !bindJSON(c, &req, authLoginMessages, "invalid login request") {
		return
	}
	cred, err := s.store.GetCredential(req.Player)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no pin set for this player"})
			return
		}
		writeStoreError(c, err)
		return
	}
	if cred.PIN != req.PIN {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong pin"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": cred.Player, "shared": cred.Shared})
}

func (s *Server) handleAuthStatus(c *gin.Context) {
	player := c.Param("player")
	if !ValidSlot(player) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player must be him or her"})
		return
	}
	cred, err := s.store.GetCredential(player)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"has_pin": false, "shared": false})
			return
		}
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_pin": true, "shared": cred.Shared})
}

type shareRequest struct {
	Shared *bool `json:"shared" binding:"required"`
}

// handleAuthShare flips a slot's sharing flag. Owner-only and idempotent.
func (s *Server) handleAuthShare(c *gin.Context) {
	player := c.Param("player")
	if !ValidSlot(player) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player must be him or her"})
		return
	}
	if viewerSlot(c) != player {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can change sharing"})
		return
	}
	var req shareRequest
	messages := bindMessages{"Shared": {"required": "shared is required"}}
	if !bindJSON(c, &req, messages, "invalid sharing update") {
		return
	}
	cred, err := s.store.SetShared(player, *req.Shared)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	log.Printf("sharing updated player=%s shared=%t", player, cred.Shared)
	c.JSON(http.StatusOK, gin.H{"player": cred.Player, "shared": cred.Shared})
}
