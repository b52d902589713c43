package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type createGameRequest struct {
	Title          string   `json:"title" binding:"required"`
	Theme          string   `json:"theme" binding:"required"`
	GridSize       int      `json:"grid_size" binding:"required"`
	Squares        []Square `json:"squares" binding:"required"`
	BetDescription string   `json:"bet_description"`
	Rating         string   `json:"rating" binding:"omitempty,rating"`
	Mood           string   `json:"mood" binding:"omitempty,mood"`
	Player1Label   string   `json:"player1_label"`
	Player2Label   string   `json:"player2_label"`
	IsTemplate     bool     `json:"is_template"`
}

var createGameMessages = bindMessages{
	"Title":    {"required": "title is required"},
	"Theme":    {"required": "theme is required"},
	"GridSize": {"required": "grid size is required"},
	"Squares":  {"required": "squares are required"},
	"Rating":   {"rating": "rating must be pg, pg13, r or nc17"},
	"Mood":     {"mood": "mood must be couples, friends-trip, party or custom"},
}

func (s *Server) handleCreateGame(c *gin.Context) {
	owner, ok := callerID(c)
	if !ok {
		return
	}
	var req createGameRequest
	if !bindJSON(c, &req, createGameMessages, "invalid game") {
		return
	}

	title, err := validateTitle(req.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	theme, err := validateTheme(req.Theme)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	squares, err := validateSquares(req.Squares, req.GridSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p1, err := validateLabel(req.Player1Label, "Him")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p2, err := validateLabel(req.Player2Label, "Her")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.BetDescription) > maxBetLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bet description is too long"})
		return
	}

	rating := req.Rating
	if rating == "" {
		rating = "r"
	}
	mood := req.Mood
	if mood == "" {
		mood = "couples"
	}

	game, err := s.store.CreateGame(&Game{
		Title:          title,
		Theme:          theme,
		GridSize:       req.GridSize,
		Squares:        squares,
		BetDescription: req.BetDescription,
		Rating:         rating,
		Mood:           mood,
		Player1Label:   p1,
		Player2Label:   p2,
		IsTemplate:     req.IsTemplate,
		OwnerID:        owner,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	log.Printf("game created game_id=%s owner=%s grid=%d template=%t", game.ID, owner, game.GridSize, game.IsTemplate)
	c.JSON(http.StatusCreated, game)
}

func (s *Server) handleListGames(c *gin.Context) {
	status := c.Query("status")
	if status != "" && status != StatusActive && status != StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or completed"})
		return
	}
	games, err := s.store.ListGames(c.Query("owner"), status)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (s *Server) handleListTemplates(c *gin.Context) {
	templates, err := s.store.ListTemplates()
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (s *Server) handleGetGame(c *gin.Context) {
	game, err := s.store.GetGame(c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

type updateGameRequest struct {
	Title          *string   `json:"title"`
	Theme          *string   `json:"theme"`
	GridSize       *int      `json:"grid_size"`
	Squares        *[]Square `json:"squares"`
	BetDescription *string   `json:"bet_description"`
	Rating         *string   `json:"rating"`
	Mood           *string   `json:"mood"`
	Player1Label   *string   `json:"player1_label"`
	Player2Label   *string   `json:"player2_label"`
}

// handleUpdateGame applies a partial edit. Owner and partner may both edit
// while the game is active; concurrent edits are last-write-wins with no
// merging, so the later writer overwrites the earlier one entirely.
func (s *Server) handleUpdateGame(c *gin.Context) {
	var req updateGameRequest
	if !bindJSON(c, &req, nil, "invalid game update") {
		return
	}
	if req.Rating != nil {
		if _, ok := ratings[*req.Rating]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be pg, pg13, r or nc17"})
			return
		}
	}
	if req.Mood != nil {
		if _, ok := moods[*req.Mood]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mood must be couples, friends-trip, party or custom"})
			return
		}
	}

	game, err := s.store.UpdateGame(c.Param("id"), func(g *Game) error {
		if err := checkEdit(g); err != nil {
			return err
		}
		if req.Title != nil {
			title, err := validateTitle(*req.Title)
			if err != nil {
				return wrapInvalid(err)
			}
			g.Title = title
		}
		if req.Theme != nil {
			theme, err := validateTheme(*req.Theme)
			if err != nil {
				return wrapInvalid(err)
			}
			g.Theme = theme
		}
		if req.GridSize != nil {
			g.GridSize = *req.GridSize
		}
		if req.Squares != nil {
			squares, err := validateSquares(*req.Squares, g.GridSize)
			if err != nil {
				return wrapInvalid(err)
			}
			g.Squares = squares
		}
		if req.BetDescription != nil {
			if len(*req.BetDescription) > maxBetLength {
				return wrapInvalid(errors.New("bet description is too long"))
			}
			g.BetDescription = *req.BetDescription
		}
		if req.Rating != nil {
			g.Rating = *req.Rating
		}
		if req.Mood != nil {
			g.Mood = *req.Mood
		}
		if req.Player1Label != nil {
			label, err := validateLabel(*req.Player1Label, "Him")
			if err != nil {
				return wrapInvalid(err)
			}
			g.Player1Label = label
		}
		if req.Player2Label != nil {
			label, err := validateLabel(*req.Player2Label, "Her")
			if err != nil {
				return wrapInvalid(err)
			}
			g.Player2Label = label
		}
		return nil
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (s *Server) handleDeleteGame(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := s.store.DeleteGame(id, caller); err != nil {
		writeStoreError(c, err)
		return
	}
	log.Printf("game deleted game_id=%s owner=%s", id, caller)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDuplicateGame(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	game, err := s.store.DuplicateGame(c.Param("id"), caller)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	log.Printf("game duplicated source_id=%s game_id=%s owner=%s", c.Param("id"), game.ID, caller)
	c.JSON(http.StatusCreated, game)
}

func (s *Server) handleJoinGame(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	game, err := s.store.JoinGame(c.Param("id"), caller)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

type declareWinnerRequest struct {
	Winner string `json:"winner" binding:"required,winner"`
}

func (s *Server) handleDeclareWinner(c *gin.Context) {
	var req declareWinnerRequest
	messages := bindMessages{"Winner": {
		"required": "winner is required",
		"winner":   "winner must be him, her or tie",
	}}
	if !bindJSON(c, &req, messages, "invalid winner") {
		return
	}
	game, err := s.store.DeclareWinner(c.Param("id"), req.Winner)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	log.Printf("winner declared game_id=%s winner=%s", game.ID, req.Winner)
	c.JSON(http.StatusOK, game)
}

func (s *Server) handleStats(c *gin.Context) {
	identity, ok := callerID(c)
	if !ok {
		return
	}
	stats, err := s.store.StatsFor(identity)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
