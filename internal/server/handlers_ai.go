package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type aiSuggestionsRequest struct {
	Theme    string   `json:"theme" binding:"required"`
	Count    int      `json:"count" binding:"required,min=1"`
	Existing []string `json:"existing"`
	Rating   string   `json:"rating" binding:"omitempty,rating"`
	Mood     string   `json:"mood" binding:"omitempty,mood"`
}

var aiSuggestionsMessages = bindMessages{
	"Theme":  {"required": "theme is required"},
	"Count":  {"required": "count is required", "min": "count must be at least 1"},
	"Rating": {"rating": "rating must be pg, pg13, r or nc17"},
	"Mood":   {"mood": "mood must be couples, friends-trip, party or custom"},
}

// Suggestion failures are local to the request: a broken upstream yields a
// 502 (or an empty list on malformed content), never a change to any game.
func (s *Server) handleAISuggestions(c *gin.Context) {
	var req aiSuggestionsRequest
	if !bindJSON(c, &req, aiSuggestionsMessages, "invalid suggestion request") {
		return
	}
	if !s.ai.configured() {
		c.JSON(http.StatusBadGateway, gin.H{"error": "ai suggestions are not configured"})
		return
	}
	squares, err := s.ai.GenerateSquares(c.Request.Context(), req.Theme, req.Count, req.Existing, req.Rating, req.Mood)
	if err != nil {
		log.Printf("ai suggestions failed theme=%q err=%v", req.Theme, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"squares": squares})
}

type aiBetRequest struct {
	Theme  string `json:"theme"`
	Rating string `json:"rating" binding:"omitempty,rating"`
	Mood   string `json:"mood" binding:"omitempty,mood"`
	Count  int    `json:"count"`
}

func (s *Server) handleAIBetSuggestion(c *gin.Context) {
	var req aiBetRequest
	messages := bindMessages{
		"Rating": {"rating": "rating must be pg, pg13, r or nc17"},
		"Mood":   {"mood": "mood must be couples, friends-trip, party or custom"},
	}
	if !bindJSON(c, &req, messages, "invalid bet request") {
		return
	}
	if !s.ai.configured() {
		c.JSON(http.StatusBadGateway, gin.H{"error": "ai suggestions are not configured"})
		return
	}
	bets, err := s.ai.GenerateBetIdeas(c.Request.Context(), req.Theme, req.Rating, req.Mood, req.Count)
	if err != nil {
		log.Printf("ai bet suggestion failed theme=%q err=%v", req.Theme, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": bets})
}
