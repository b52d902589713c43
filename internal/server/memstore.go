package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore keeps everything behind a single mutex. It backs the test suite
// and database-less runs; semantics must match gormStore exactly.
type memStore struct {
	mu       sync.Mutex
	games    map[string]*Game
	progress map[string]*ProgressEntry
	secrets  map[string]*Secret
	creds    map[string]*Credential
}

func NewMemStore() Store {
	return &memStore{
		games:    make(map[string]*Game),
		progress: make(map[string]*ProgressEntry),
		secrets:  make(map[string]*Secret),
		creds:    make(map[string]*Credential),
	}
}

func progressKey(player, gameID string, squareIndex int) string {
	return fmt.Sprintf("%s|%s|%d", player, gameID, squareIndex)
}

func (s *memStore) CreateGame(g *Game) (*Game, error) {
	if err := validateGameShape(g); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneGame(g)
	stored.ID = uuid.NewString()
	stored.Status = StatusActive
	stored.Winner = nil
	stored.CompletedAt = nil
	stored.CreatedAt = time.Now().UTC()
	s.games[stored.ID] = stored
	return cloneGame(stored), nil
}

func (s *memStore) GetGame(id string) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	return cloneGame(game), nil
}

func (s *memStore) ListGames(ownerID, status string) ([]*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Game, 0, len(s.games))
	for _, game := range s.games {
		if game.IsTemplate {
			continue
		}
		if status != "" && game.Status != status {
			continue
		}
		if ownerID != "" && game.OwnerID != ownerID && (game.PartnerID == nil || *game.PartnerID != ownerID) {
			continue
		}
		list = append(list, cloneGame(game))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *memStore) ListTemplates() ([]*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Game, 0)
	for _, game := range s.games {
		if game.IsTemplate {
			list = append(list, cloneGame(game))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Title < list[j].Title
	})
	return list, nil
}

func (s *memStore) UpdateGame(id string, apply func(g *Game) error) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	updated := cloneGame(game)
	if err := apply(updated); err != nil {
		return nil, err
	}
	if err := validateGameShape(updated); err != nil {
		return nil, err
	}
	s.games[id] = updated
	return cloneGame(updated), nil
}

func (s *memStore) DeleteGame(id, callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if game.OwnerID != callerID {
		return fmt.Errorf("%w: only the owner may delete a game", ErrForbidden)
	}
	delete(s.games, id)
	for key, entry := range s.progress {
		if entry.GameID == id {
			delete(s.progress, key)
		}
	}
	for key, secret := range s.secrets {
		if secret.GameID == id {
			delete(s.secrets, key)
		}
	}
	return nil
}

func (s *memStore) DuplicateGame(sourceID, callerID string) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	source, ok := s.games[sourceID]
	if !ok {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, sourceID)
	}
	copy := duplicateOf(source, callerID)
	copy.ID = uuid.NewString()
	copy.CreatedAt = time.Now().UTC()
	s.games[copy.ID] = copy
	return cloneGame(copy), nil
}

func (s *memStore) JoinGame(id, callerID string) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if game.PartnerID != nil && *game.PartnerID == callerID {
		return cloneGame(game), nil
	}
	if err := checkJoin(game, callerID); err != nil {
		return nil, err
	}
	partner := callerID
	game.PartnerID = &partner
	return cloneGame(game), nil
}

func (s *memStore) DeclareWinner(id, winner string) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err := checkDeclareWinner(game, winner); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	value := winner
	game.Status = StatusCompleted
	game.Winner = &value
	game.CompletedAt = &now
	return cloneGame(game), nil
}

func (s *memStore) StatsFor(identity string) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games := make([]*Game, 0, len(s.games))
	for _, game := range s.games {
		games = append(games, game)
	}
	return tallyStats(games, identity), nil
}

func (s *memStore) GetProgress(player, gameID string) ([]ProgressEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]ProgressEntry, 0)
	for _, entry := range s.progress {
		if entry.Player == player && entry.GameID == gameID {
			entries = append(entries, *entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SquareIndex < entries[j].SquareIndex
	})
	return entries, nil
}

func (s *memStore) UpsertProgress(player, gameID string, squareIndex int, checked bool) (ProgressEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return ProgressEntry{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if err := checkUpsertProgress(game, squareIndex); err != nil {
		return ProgressEntry{}, err
	}
	key := progressKey(player, gameID, squareIndex)
	if entry, ok := s.progress[key]; ok {
		entry.Checked = checked
		return *entry, nil
	}
	entry := &ProgressEntry{
		ID:          uuid.NewString(),
		Player:      player,
		GameID:      gameID,
		SquareIndex: squareIndex,
		Checked:     checked,
	}
	s.progress[key] = entry
	return *entry, nil
}

func (s *memStore) GetSecrets(player, gameID string) ([]Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	secrets := make([]Secret, 0)
	for _, secret := range s.secrets {
		if secret.Player == player && secret.GameID == gameID {
			secrets = append(secrets, *secret)
		}
	}
	sort.Slice(secrets, func(i, j int) bool {
		return secrets[i].ID < secrets[j].ID
	})
	return secrets, nil
}

func (s *memStore) GetSecretsByPlayer(player string) ([]Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	secrets := make([]Secret, 0)
	for _, secret := range s.secrets {
		if secret.Player == player {
			secrets = append(secrets, *secret)
		}
	}
	sort.Slice(secrets, func(i, j int) bool {
		return secrets[i].ID < secrets[j].ID
	})
	return secrets, nil
}

func (s *memStore) GetSecret(id string) (Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	secret, ok := s.secrets[id]
	if !ok {
		return Secret{}, fmt.Errorf("%w: secret square %s", ErrNotFound, id)
	}
	return *secret, nil
}

func (s *memStore) CreateSecret(secret Secret) (Secret, error) {
	if secret.Text == "" {
		return Secret{}, fmt.Errorf("%w: secret square text is required", ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[secret.GameID]; !ok {
		return Secret{}, fmt.Errorf("%w: game %s", ErrNotFound, secret.GameID)
	}
	secret.ID = uuid.NewString()
	secret.Checked = false
	stored := secret
	s.secrets[stored.ID] = &stored
	return stored, nil
}

func (s *memStore) SetSecretChecked(id string, checked bool) (Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	secret, ok := s.secrets[id]
	if !ok {
		return Secret{}, fmt.Errorf("%w: secret square %s", ErrNotFound, id)
	}
	if game, ok := s.games[secret.GameID]; ok && game.Status == StatusCompleted {
		return Secret{}, fmt.Errorf("%w: game is completed", ErrConflict)
	}
	secret.Checked = checked
	return *secret, nil
}

func (s *memStore) GetCredential(player string) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[player]
	if !ok {
		return Credential{}, fmt.Errorf("%w: no credential for %s", ErrNotFound, player)
	}
	return *cred, nil
}

func (s *memStore) CreateCredential(player, pin string) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[player]; ok {
		return Credential{}, fmt.Errorf("%w: credential already set for %s", ErrConflict, player)
	}
	cred := &Credential{Player: player, PIN: pin}
	s.creds[player] = cred
	return *cred, nil
}

func (s *memStore) SetShared(player string, shared bool) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[player]
	if !ok {
		return Credential{}, fmt.Errorf("%w: no credential for %s", ErrNotFound, player)
	}
	cred.Shared = shared
	return *cred, nil
}
