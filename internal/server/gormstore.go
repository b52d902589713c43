package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bingo-nights/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore persists through Postgres. Same-key progress upserts serialize
// on the composite unique index; the winner transition is a single
// conditional UPDATE so readers never observe a half-finished completion.
type gormStore struct {
	conn *gorm.DB
}

func NewGormStore(conn *gorm.DB) Store {
	return &gormStore{conn: conn}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func gameToRecord(g *Game) (db.Game, error) {
	payload, err := json.Marshal(g.Squares)
	if err != nil {
		return db.Game{}, fmt.Errorf("encode squares: %w", err)
	}
	return db.Game{
		ID:             g.ID,
		Title:          g.Title,
		Theme:          g.Theme,
		GridSize:       g.GridSize,
		Squares:        datatypes.JSON(payload),
		BetDescription: g.BetDescription,
		Rating:         g.Rating,
		Mood:           g.Mood,
		Player1Label:   g.Player1Label,
		Player2Label:   g.Player2Label,
		Status:         g.Status,
		Winner:         g.Winner,
		IsTemplate:     g.IsTemplate,
		OwnerID:        g.OwnerID,
		PartnerID:      g.PartnerID,
		CreatedAt:      g.CreatedAt,
		CompletedAt:    g.CompletedAt,
	}, nil
}

func gameFromRecord(record db.Game) (*Game, error) {
	var squares []Square
	if len(record.Squares) > 0 {
		if err := json.Unmarshal(record.Squares, &squares); err != nil {
			return nil, fmt.Errorf("decode squares for game %s: %w", record.ID, err)
		}
	}
	return &Game{
		ID:             record.ID,
		Title:          record.Title,
		Theme:          record.Theme,
		GridSize:       record.GridSize,
		Squares:        squares,
		BetDescription: record.BetDescription,
		Rating:         record.Rating,
		Mood:           record.Mood,
		Player1Label:   record.Player1Label,
		Player2Label:   record.Player2Label,
		Status:         record.Status,
		Winner:         record.Winner,
		IsTemplate:     record.IsTemplate,
		OwnerID:        record.OwnerID,
		PartnerID:      record.PartnerID,
		CreatedAt:      record.CreatedAt,
		CompletedAt:    record.CompletedAt,
	}, nil
}

func gamesFromRecords(records []db.Game) ([]*Game, error) {
	list := make([]*Game, 0, len(records))
	for _, record := range records {
		game, err := gameFromRecord(record)
		if err != nil {
			return nil, err
		}
		list = append(list, game)
	}
	return list, nil
}

func (s *gormStore) CreateGame(g *Game) (*Game, error) {
	if err := validateGameShape(g); err != nil {
		return nil, err
	}
	stored := cloneGame(g)
	stored.ID = uuid.NewString()
	stored.Status = StatusActive
	stored.Winner = nil
	stored.CompletedAt = nil
	stored.CreatedAt = time.Now().UTC()
	record, err := gameToRecord(stored)
	if err != nil {
		return nil, err
	}
	if err := s.conn.Create(&record).Error; err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *gormStore) GetGame(id string) (*Game, error) {
	var record db.Game
	if err := s.conn.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
		}
		return nil, err
	}
	return gameFromRecord(record)
}

func (s *gormStore) ListGames(ownerID, status string) ([]*Game, error) {
	query := s.conn.Where("is_template = ?", false)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if ownerID != "" {
		query = query.Where("owner_id = ? OR partner_id = ?", ownerID, ownerID)
	}
	var records []db.Game
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return gamesFromRecords(records)
}

func (s *gormStore) ListTemplates() ([]*Game, error) {
	var records []db.Game
	if err := s.conn.Where("is_template = ?", true).Order("title").Find(&records).Error; err != nil {
		return nil, err
	}
	return gamesFromRecords(records)
}

func (s *gormStore) UpdateGame(id string, apply func(g *Game) error) (*Game, error) {
	var updated *Game
	err := s.conn.Transaction(func(tx *gorm.DB) error {
		var record db.Game
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: game %s", ErrNotFound, id)
			}
			return err
		}
		game, err := gameFromRecord(record)
		if err != nil {
			return err
		}
		if err := apply(game); err != nil {
			return err
		}
		if err := validateGameShape(game); err != nil {
			return err
		}
		next, err := gameToRecord(game)
		if err != nil {
			return err
		}
		if err := tx.Model(&db.Game{}).Where("id = ?", id).Updates(map[string]any{
			"title":           next.Title,
			"theme":           next.Theme,
			"grid_size":       next.GridSize,
			"squares":         next.Squares,
			"bet_description": next.BetDescription,
			"rating":          next.Rating,
			"mood":            next.Mood,
			"player1_label":   next.Player1Label,
			"player2_label":   next.Player2Label,
		}).Error; err != nil {
			return err
		}
		updated = game
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *gormStore) DeleteGame(id, callerID string) error {
	return s.conn.Transaction(func(tx *gorm.DB) error {
		var record db.Game
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: game %s", ErrNotFound, id)
			}
			return err
		}
		if record.OwnerID != callerID {
			return fmt.Errorf("%w: only the owner may delete a game", ErrForbidden)
		}
		if err := tx.Where("game_id = ?", id).Delete(&db.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", id).Delete(&db.SecretSquare{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&db.Game{}).Error
	})
}

func (s *gormStore) DuplicateGame(sourceID, callerID string) (*Game, error) {
	source, err := s.GetGame(sourceID)
	if err != nil {
		return nil, err
	}
	copy := duplicateOf(source, callerID)
	copy.ID = uuid.NewString()
	copy.CreatedAt = time.Now().UTC()
	record, err := gameToRecord(copy)
	if err != nil {
		return nil, err
	}
	if err := s.conn.Create(&record).Error; err != nil {
		return nil, err
	}
	return copy, nil
}

func (s *gormStore) JoinGame(id, callerID string) (*Game, error) {
	var joined *Game
	err := s.conn.Transaction(func(tx *gorm.DB) error {
		var record db.Game
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: game %s", ErrNotFound, id)
			}
			return err
		}
		game, err := gameFromRecord(record)
		if err != nil {
			return err
		}
		if game.PartnerID != nil && *game.PartnerID == callerID {
			joined = game
			return nil
		}
		if err := checkJoin(game, callerID); err != nil {
			return err
		}
		if err := tx.Model(&db.Game{}).Where("id = ?", id).Update("partner_id", callerID).Error; err != nil {
			return err
		}
		partner := callerID
		game.PartnerID = &partner
		joined = game
		return nil
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}

func (s *gormStore) DeclareWinner(id, winner string) (*Game, error) {
	if !ValidWinner(winner) {
		return nil, fmt.Errorf("%w: winner must be him, her or tie", ErrInvalid)
	}
	now := time.Now().UTC()
	res := s.conn.Model(&db.Game{}).
		Where("id = ? AND status = ? AND is_template = ?", id, StatusActive, false).
		Updates(map[string]any{
			"status":       StatusCompleted,
			"winner":       winner,
			"completed_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		game, err := s.GetGame(id)
		if err != nil {
			return nil, err
		}
		// The game exists, so the transition itself was rejected.
		if err := checkDeclareWinner(game, winner); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: game is already completed", ErrConflict)
	}
	return s.GetGame(id)
}

func (s *gormStore) StatsFor(identity string) (Stats, error) {
	var records []db.Game
	err := s.conn.
		Where("status = ? AND is_template = ?", StatusCompleted, false).
		Where("owner_id = ? OR partner_id = ?", identity, identity).
		Find(&records).Error
	if err != nil {
		return Stats{}, err
	}
	games, err := gamesFromRecords(records)
	if err != nil {
		return Stats{}, err
	}
	return tallyStats(games, identity), nil
}

func (s *gormStore) GetProgress(player, gameID string) ([]ProgressEntry, error) {
	var records []db.Progress
	err := s.conn.
		Where("player = ? AND game_id = ?", player, gameID).
		Order("square_index").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	entries := make([]ProgressEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, ProgressEntry{
			ID:          record.ID,
			Player:      record.Player,
			GameID:      record.GameID,
			SquareIndex: record.SquareIndex,
			Checked:     record.Checked,
		})
	}
	return entries, nil
}

func (s *gormStore) UpsertProgress(player, gameID string, squareIndex int, checked bool) (ProgressEntry, error) {
	game, err := s.GetGame(gameID)
	if err != nil {
		return ProgressEntry{}, err
	}
	if err := checkUpsertProgress(game, squareIndex); err != nil {
		return ProgressEntry{}, err
	}
	record := db.Progress{
		ID:          uuid.NewString(),
		Player:      player,
		GameID:      gameID,
		SquareIndex: squareIndex,
		Checked:     checked,
	}
	err = s.conn.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player"}, {Name: "game_id"}, {Name: "square_index"}},
		DoUpdates: clause.Assignments(map[string]any{
			"checked":    checked,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&record).Error
	if err != nil {
		return ProgressEntry{}, err
	}
	// Re-read so the caller sees the surviving row's id after a conflict.
	var stored db.Progress
	err = s.conn.
		Where("player = ? AND game_id = ? AND square_index = ?", player, gameID, squareIndex).
		First(&stored).Error
	if err != nil {
		return ProgressEntry{}, err
	}
	return ProgressEntry{
		ID:          stored.ID,
		Player:      stored.Player,
		GameID:      stored.GameID,
		SquareIndex: stored.SquareIndex,
		Checked:     stored.Checked,
	}, nil
}

func secretFromRecord(record db.SecretSquare) Secret {
	return Secret{
		ID:          record.ID,
		Player:      record.Player,
		GameID:      record.GameID,
		Text:        record.Text,
		Description: record.Description,
		Checked:     record.Checked,
	}
}

func (s *gormStore) GetSecrets(player, gameID string) ([]Secret, error) {
	var records []db.SecretSquare
	err := s.conn.
		Where("player = ? AND game_id = ?", player, gameID).
		Order("created_at").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	secrets := make([]Secret, 0, len(records))
	for _, record := range records {
		secrets = append(secrets, secretFromRecord(record))
	}
	return secrets, nil
}

func (s *gormStore) GetSecretsByPlayer(player string) ([]Secret, error) {
	var records []db.SecretSquare
	if err := s.conn.Where("player = ?", player).Order("created_at").Find(&records).Error; err != nil {
		return nil, err
	}
	secrets := make([]Secret, 0, len(records))
	for _, record := range records {
		secrets = append(secrets, secretFromRecord(record))
	}
	return secrets, nil
}

func (s *gormStore) GetSecret(id string) (Secret, error) {
	var record db.SecretSquare
	if err := s.conn.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Secret{}, fmt.Errorf("%w: secret square %s", ErrNotFound, id)
		}
		return Secret{}, err
	}
	return secretFromRecord(record), nil
}

func (s *gormStore) CreateSecret(secret Secret) (Secret, error) {
	if secret.Text == "" {
		return Secret{}, fmt.Errorf("%w: secret square text is required", ErrInvalid)
	}
	if _, err := s.GetGame(secret.GameID); err != nil {
		return Secret{}, err
	}
	record := db.SecretSquare{
		ID:          uuid.NewString(),
		Player:      secret.Player,
		GameID:      secret.GameID,
		Text:        secret.Text,
		Description: secret.Description,
		Checked:     false,
	}
	if err := s.conn.Create(&record).Error; err != nil {
		return Secret{}, err
	}
	return secretFromRecord(record), nil
}

func (s *gormStore) SetSecretChecked(id string, checked bool) (Secret, error) {
	secret, err := s.GetSecret(id)
	if err != nil {
		return Secret{}, err
	}
	game, err := s.GetGame(secret.GameID)
	if err == nil && game.Status == StatusCompleted {
		return Secret{}, fmt.Errorf("%w: game is completed", ErrConflict)
	}
	err = s.conn.Model(&db.SecretSquare{}).Where("id = ?", id).Update("checked", checked).Error
	if err != nil {
		return Secret{}, err
	}
	secret.Checked = checked
	return secret, nil
}

func credentialFromRecord(record db.PlayerCredential) Credential {
	return Credential{Player: record.Player, PIN: record.PIN, Shared: record.Shared}
}

func (s *gormStore) GetCredential(player string) (Credential, error) {
	var record db.PlayerCredential
	if err := s.conn.Where("player = ?", player).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Credential{}, fmt.Errorf("%w: no credential for %s", ErrNotFound, player)
		}
		return Credential{}, err
	}
	return credentialFromRecord(record), nil
}

func (s *gormStore) CreateCredential(player, pin string) (Credential, error) {
	record := db.PlayerCredential{
		ID:     uuid.NewString(),
		Player: player,
		PIN:    pin,
		Shared: false,
	}
	if err := s.conn.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return Credential{}, fmt.Errorf("%w: credential already set for %s", ErrConflict, player)
		}
		return Credential{}, err
	}
	return credentialFromRecord(record), nil
}

func (s *gormStore) SetShared(player string, shared bool) (Credential, error) {
	res := s.conn.Model(&db.PlayerCredential{}).Where("player = ?", player).Update("shared", shared)
	if res.Error != nil {
		return Credential{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Credential{}, fmt.Errorf("%w: no credential for %s", ErrNotFound, player)
	}
	return s.GetCredential(player)
}
