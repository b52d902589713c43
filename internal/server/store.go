package server

import (
	"errors"
	"fmt"

	"bingo-nights/internal/grid"
)

// Error kinds returned by Store implementations. Handlers map these onto
// HTTP statuses; everything else surfaces as a 500.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid input")
)

// Store is the persistence boundary for games, progress ledgers, secret
// squares and sharing credentials. Two implementations exist: memStore for
// tests and database-less runs, and gormStore backed by Postgres.
type Store interface {
	CreateGame(g *Game) (*Game, error)
	GetGame(id string) (*Game, error)
	ListGames(ownerID, status string) ([]*Game, error)
	ListTemplates() ([]*Game, error)
	UpdateGame(id string, apply func(g *Game) error) (*Game, error)
	DeleteGame(id, callerID string) error
	DuplicateGame(sourceID, callerID string) (*Game, error)
	JoinGame(id, callerID string) (*Game, error)
	DeclareWinner(id, winner string) (*Game, error)
	StatsFor(identity string) (Stats, error)

	GetProgress(player, gameID string) ([]ProgressEntry, error)
	UpsertProgress(player, gameID string, squareIndex int, checked bool) (ProgressEntry, error)

	GetSecrets(player, gameID string) ([]Secret, error)
	GetSecretsByPlayer(player string) ([]Secret, error)
	GetSecret(id string) (Secret, error)
	CreateSecret(secret Secret) (Secret, error)
	SetSecretChecked(id string, checked bool) (Secret, error)

	GetCredential(player string) (Credential, error)
	CreateCredential(player, pin string) (Credential, error)
	SetShared(player string, shared bool) (Credential, error)
}

// wrapInvalid tags a plain validation error as ErrInvalid so handlers map
// it to a 400.
func wrapInvalid(err error) error {
	return fmt.Errorf("%w: %s", ErrInvalid, err.Error())
}

// Rule helpers shared by both store implementations so the two stay in
// lockstep on game semantics.

func checkUpsertProgress(g *Game, squareIndex int) error {
	if g.Status == StatusCompleted {
		return fmt.Errorf("%w: game is completed", ErrConflict)
	}
	if squareIndex < 0 || squareIndex >= g.GridSize*g.GridSize {
		return fmt.Errorf("%w: square index %d outside %dx%d grid", ErrInvalid, squareIndex, g.GridSize, g.GridSize)
	}
	return nil
}

func checkJoin(g *Game, callerID string) error {
	if g.IsTemplate {
		return fmt.Errorf("%w: templates cannot be joined", ErrConflict)
	}
	if g.OwnerID == callerID {
		return fmt.Errorf("%w: already own this game", ErrConflict)
	}
	if g.PartnerID != nil && *g.PartnerID != callerID {
		return fmt.Errorf("%w: game already has a partner", ErrConflict)
	}
	return nil
}

func checkDeclareWinner(g *Game, winner string) error {
	if !ValidWinner(winner) {
		return fmt.Errorf("%w: winner must be him, her or tie", ErrInvalid)
	}
	if g.IsTemplate {
		return fmt.Errorf("%w: templates cannot be completed", ErrConflict)
	}
	if g.Status != StatusActive {
		return fmt.Errorf("%w: game is already completed", ErrConflict)
	}
	return nil
}

func checkEdit(g *Game) error {
	if g.IsTemplate {
		return fmt.Errorf("%w: templates are not playable", ErrConflict)
	}
	if g.Status == StatusCompleted {
		return fmt.Errorf("%w: game is completed", ErrConflict)
	}
	return nil
}

// duplicateOf builds the copy created by DuplicateGame: display fields and
// squares carry over, lifecycle and ownership never do.
func duplicateOf(source *Game, callerID string) *Game {
	copy := &Game{
		Title:          source.Title,
		Theme:          source.Theme,
		GridSize:       source.GridSize,
		Squares:        append([]Square(nil), source.Squares...),
		BetDescription: source.BetDescription,
		Rating:         source.Rating,
		Mood:           source.Mood,
		Player1Label:   source.Player1Label,
		Player2Label:   source.Player2Label,
		Status:         StatusActive,
		IsTemplate:     false,
		OwnerID:        callerID,
	}
	return copy
}

func tallyStats(games []*Game, identity string) Stats {
	var stats Stats
	for _, g := range games {
		if g.Status != StatusCompleted || g.IsTemplate || g.Winner == nil {
			continue
		}
		if g.OwnerID != identity && (g.PartnerID == nil || *g.PartnerID != identity) {
			continue
		}
		stats.Completed++
		switch *g.Winner {
		case WinnerHim:
			stats.WinsAsHim++
		case WinnerHer:
			stats.WinsAsHer++
		case WinnerTie:
			stats.Ties++
		}
	}
	return stats
}

func validateGameShape(g *Game) error {
	if !grid.ValidSize(g.GridSize) {
		return fmt.Errorf("%w: grid size must be 3, 4 or 5", ErrInvalid)
	}
	if len(g.Squares) != g.GridSize*g.GridSize {
		return fmt.Errorf("%w: expected %d squares, got %d", ErrInvalid, g.GridSize*g.GridSize, len(g.Squares))
	}
	for i, sq := range g.Squares {
		if sq.Text == "" {
			return fmt.Errorf("%w: square %d has empty text", ErrInvalid, i)
		}
	}
	return nil
}
