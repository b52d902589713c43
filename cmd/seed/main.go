// Command seed loads the three classic bingo night templates and each
// player's default secret squares. Safe to re-run: existing rows are kept.
package main

import (
	"log"

	"bingo-nights/internal/config"
	"bingo-nights/internal/db"
	"bingo-nights/internal/server"
)

const seedOwner = "seed"

type nightSeed struct {
	Title          string
	Theme          string
	GridSize       int
	Squares        []server.Square
	BetDescription string
	Secrets        map[string]server.Square
}

var nights = []nightSeed{
	{
		Title:    "Thursday Night",
		Theme:    "Cute in public, tension building",
		GridSize: 3,
		Squares: []server.Square{
			{Text: "Slow dance a little too close", Description: "Dancing with minimal personal space; innocent but intimate."},
			{Text: "Compliment whispered in ear", Description: "Private praise said quietly so only your partner hears."},
			{Text: "Hand on waist longer than needed", Description: "A touch that lingers just enough to feel intentional."},
			{Text: `"Later" said quietly`, Description: "A subtle promise of what's coming after."},
			{Text: "One of us blushes", Description: "Visible reaction to flirting or attention."},
			{Text: "Eye contact + smile during a song", Description: "Shared moment without words."},
			{Text: "Overdressed parent spotted", Description: "Another adult clearly trying too hard at the event."},
			{Text: "Kid side-eye moment", Description: "A child judging adult behavior."},
			{Text: "First real kiss once alone", Description: "The first uninterrupted kiss after leaving the public space."},
		},
		BetDescription: "Winner chooses how the night ends (movie, couch, bedroom, pace).",
		Secrets: map[string]server.Square{
			server.SlotHim: {Text: "Make her laugh until she snorts", Description: "Get a genuine, uncontrollable laugh out of her."},
			server.SlotHer: {Text: "Steal his hoodie", Description: "Claim it as yours for the rest of the night."},
		},
	},
	{
		Title:    "Friday",
		Theme:    "Us vs. Them (people-watching + flirting)",
		GridSize: 4,
		Squares: []server.Square{
			{Text: "Sneaky butt squeeze", Description: "Quick, discreet grab in a crowd."},
			{Text: "Hand on thigh full ride", Description: "Hand stays planted for the entire ride duration."},
			{Text: "Whisper something dirty", Description: "Sexual or suggestive comment kept vague and quiet."},
			{Text: "Kiss that lingers", Description: "Longer than socially normal."},
			{Text: "Aggressive PDA spotted", Description: "Another couple being very affectionate in public."},
			{Text: "Couple arguing in line", Description: "Audible tension between strangers."},
			{Text: "Honeymoon vibes", Description: "Couple clearly obsessed with each other."},
			{Text: "Overheard flirting", Description: "Strangers flirting nearby."},
			{Text: "Choose a dark ride on purpose", Description: "Selecting a ride specifically for privacy."},
			{Text: `"Behave" is said`, Description: "One partner jokingly telling the other to stop."},
			{Text: "Ride photo glued together", Description: "Bodies pressed together in the photo."},
			{Text: "Someone stares at us", Description: "Another guest notices your chemistry."},
			{Text: "See PDA, copy it", Description: "You mirror affection you just witnessed."},
			{Text: `"At least we're not them"`, Description: "Comment after seeing awkward couple behavior."},
			{Text: "Someone dressed wildly impractical", Description: "Outfit clearly wrong for weather or walking."},
			{Text: "Jealous side-eye moment", Description: "One partner notices attention and reacts playfully."},
		},
		BetDescription: "1 bingo = pick next ride or drink\n2 bingos = 5-minute massage later\n3 bingos = winner controls the hotel night",
		Secrets: map[string]server.Square{
			server.SlotHim: {Text: "Win her a prize", Description: "Spend way too much trying to win something at a game booth."},
			server.SlotHer: {Text: "Catch him staring", Description: "Notice him watching you when he thinks you're not looking."},
		},
	},
	{
		Title:    "Saturday Night",
		Theme:    "Intimate, confident, last full night",
		GridSize: 3,
		Squares: []server.Square{
			{Text: "Nostalgia story, then a kiss", Description: "Sharing a memory leads to affection."},
			{Text: "Hand stays on thigh entire drive", Description: "Sustained physical contact in the car."},
			{Text: "Whisper a fantasy (vague)", Description: "Suggestive future plan without graphic detail."},
			{Text: `"Stop, people are watching"`, Description: "Acknowledging public boundaries."},
			{Text: "Claim-your-partner moment", Description: "Intentional affection after someone else notices."},
			{Text: "Kiss that lasts too long", Description: "Extended kissing in semi-public space."},
			{Text: `"Hotel. Now." energy`, Description: "Clear urgency to leave."},
			{Text: "We forget the plan", Description: "Abandoning schedule due to chemistry."},
			{Text: "Teasing promise made", Description: "Specific flirtatious promise for later."},
		},
		BetDescription: "Bingo = winner decides how the night starts\nBlackout = phones away, lights optional\nTie = shower together, no talking",
		Secrets: map[string]server.Square{
			server.SlotHim: {Text: "Tell her something you've never said", Description: "A real, vulnerable moment between you two."},
			server.SlotHer: {Text: "Leave a lipstick mark", Description: "A little reminder on his collar or cheek."},
		},
	},
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	store := server.NewGormStore(conn)

	templates, err := store.ListTemplates()
	if err != nil {
		log.Fatalf("failed to list templates: %v", err)
	}
	byTitle := make(map[string]*server.Game, len(templates))
	for _, tpl := range templates {
		byTitle[tpl.Title] = tpl
	}

	for _, night := range nights {
		game, ok := byTitle[night.Title]
		if !ok {
			game, err = store.CreateGame(&server.Game{
				Title:          night.Title,
				Theme:          night.Theme,
				GridSize:       night.GridSize,
				Squares:        night.Squares,
				BetDescription: night.BetDescription,
				Rating:         "r",
				Mood:           "couples",
				Player1Label:   "Him",
				Player2Label:   "Her",
				IsTemplate:     true,
				OwnerID:        seedOwner,
			})
			if err != nil {
				log.Fatalf("failed to seed template %q: %v", night.Title, err)
			}
			log.Printf("seeded template %q game_id=%s", night.Title, game.ID)
		}
		for player, secret := range night.Secrets {
			if err := seedSecret(store, player, game.ID, secret); err != nil {
				log.Fatalf("failed to seed secret for %s on %q: %v", player, night.Title, err)
			}
		}
	}
	log.Println("seed complete")
}

func seedSecret(store server.Store, player, gameID string, secret server.Square) error {
	existing, err := store.GetSecretsByPlayer(player)
	if err != nil {
		return err
	}
	for _, row := range existing {
		if row.GameID == gameID && row.Text == secret.Text {
			return nil
		}
	}
	_, err = store.CreateSecret(server.Secret{
		Player:      player,
		GameID:      gameID,
		Text:        secret.Text,
		Description: secret.Description,
	})
	return err
}
