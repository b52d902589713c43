package server

import "time"

// Player slots are game-relative roles, not authenticated identities.
// Progress and secret squares are keyed by slot; win/loss stats are keyed
// by the owner/partner identities on the game record.
const (
	SlotHim = "him"
	SlotHer = "her"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

const (
	WinnerHim = "him"
	WinnerHer = "her"
	WinnerTie = "tie"
)

type Square struct {
	Text        string `json:"text"`
	Description string `json:"description"`
}

type Game struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Theme          string     `json:"theme"`
	GridSize       int        `json:"grid_size"`
	Squares        []Square   `json:"squares"`
	BetDescription string     `json:"bet_description"`
	Rating         string     `json:"rating"`
	Mood           string     `json:"mood"`
	Player1Label   string     `json:"player1_label"`
	Player2Label   string     `json:"player2_label"`
	Status         string     `json:"status"`
	Winner         *string    `json:"winner"`
	IsTemplate     bool       `json:"is_template"`
	OwnerID        string     `json:"owner_id"`
	PartnerID      *string    `json:"partner_id"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

type ProgressEntry struct {
	ID          string `json:"id"`
	Player      string `json:"player"`
	GameID      string `json:"game_id"`
	SquareIndex int    `json:"square_index"`
	Checked     bool   `json:"checked"`
}

type Secret struct {
	ID          string `json:"id"`
	Player      string `json:"player"`
	GameID      string `json:"game_id"`
	Text        string `json:"text"`
	Description string `json:"description"`
	Checked     bool   `json:"checked"`
}

type Credential struct {
	Player string `json:"player"`
	PIN    string `json:"-"`
	Shared bool   `json:"shared"`
}

// Stats is a read-side projection over completed, non-template games where
// the identity is owner or partner. Ties count toward neither slot.
type Stats struct {
	WinsAsHim int `json:"wins_as_him"`
	WinsAsHer int `json:"wins_as_her"`
	Ties      int `json:"ties"`
	Completed int `json:"completed"`
}

// ValidSlot reports whether player names one of the two game slots.
func ValidSlot(player string) bool {
	return player == SlotHim || player == SlotHer
}

// ValidWinner reports whether winner is a declarable result.
func ValidWinner(winner string) bool {
	return winner == WinnerHim || winner == WinnerHer || winner == WinnerTie
}

func cloneGame(g *Game) *Game {
	out := *g
	out.Squares = append([]Square(nil), g.Squares...)
	if g.Winner != nil {
		winner := *g.Winner
		out.Winner = &winner
	}
	if g.PartnerID != nil {
		partner := *g.PartnerID
		out.PartnerID = &partner
	}
	if g.CompletedAt != nil {
		completed := *g.CompletedAt
		out.CompletedAt = &completed
	}
	return &out
}
