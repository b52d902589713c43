package server

import (
	"net/http"
	"testing"
)

func TestCreateGameHandler(t *testing.T) {
	ts := newTestServer(t)

	resp := doRequestAs(t, ts, http.MethodPost, "/api/games", gamePayload(3), "owner-1", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["owner_id"] != "owner-1" {
		t.Fatalf("expected owner_id owner-1, got %v", body["owner_id"])
	}
	if body["rating"] != "r" || body["mood"] != "couples" {
		t.Fatalf("expected default rating/mood, got %v/%v", body["rating"], body["mood"])
	}
	if body["player1_label"] != "Him" || body["player2_label"] != "Her" {
		t.Fatalf("expected default labels, got %v/%v", body["player1_label"], body["player2_label"])
	}
	if body["status"] != StatusActive {
		t.Fatalf("expected active status, got %v", body["status"])
	}
}

func TestCreateGameRequiresIdentity(t *testing.T) {
	ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodPost, "/api/games", gamePayload(3))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestCreateGameRejectsWrongSquareCount(t *testing.T) {
	ts := newTestServer(t)

	payload := gamePayload(3)
	payload["squares"] = sampleSquares(4)
	resp := doRequestAs(t, ts, http.MethodPost, "/api/games", payload, "owner-1", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestCreateGameRejectsBadRating(t *testing.T) {
	ts := newTestServer(t)

	payload := gamePayload(3)
	payload["rating"] = "x"
	resp := doRequestAs(t, ts, http.MethodPost, "/api/games", payload, "owner-1", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "rating must be pg, pg13, r or nc17" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestGetGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodGet, "/api/games/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestListGamesStatusFilter(t *testing.T) {
	ts := newTestServer(t)
	first := createGame(t, ts, "owner-1")
	createGame(t, ts, "owner-1")

	resp := doRequest(t, ts, http.MethodPatch, "/api/games/"+first+"/winner", map[string]string{"winner": WinnerHim})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("declare winner: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/games?status="+StatusActive, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	games := decodeList(t, resp)
	if len(games) != 1 {
		t.Fatalf("expected 1 active game, got %d", len(games))
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/games?status=weird", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestTemplatesListedSeparately(t *testing.T) {
	ts := newTestServer(t)

	payload := gamePayload(3)
	payload["is_template"] = true
	resp := doRequestAs(t, ts, http.MethodPost, "/api/games", payload, "owner-1", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	template := decodeBody(t, resp)

	resp = doRequest(t, ts, http.MethodGet, "/api/games/templates", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	templates := decodeList(t, resp)
	if len(templates) != 1 || templates[0]["id"] != template["id"] {
		t.Fatalf("expected the created template, got %d entries", len(templates))
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/games", nil)
	games := decodeList(t, resp)
	if len(games) != 0 {
		t.Fatalf("expected templates excluded from the games list, got %d", len(games))
	}
}

func TestUpdateGame(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequest(t, ts, http.MethodPatch, "/api/games/"+id, map[string]any{
		"title":           "Updated Night",
		"bet_description": "Winner picks the movie",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["title"] != "Updated Night" || body["bet_description"] != "Winner picks the movie" {
		t.Fatalf("unexpected update result: %v", body)
	}
}

func TestUpdateCompletedGameConflicts(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequest(t, ts, http.MethodPatch, "/api/games/"+id+"/winner", map[string]string{"winner": WinnerTie})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("declare winner: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPatch, "/api/games/"+id, map[string]any{"title": "Too late"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestDeleteGame(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequestAs(t, ts, http.MethodDelete, "/api/games/"+id, nil, "intruder", "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}

	resp = doRequestAs(t, ts, http.MethodDelete, "/api/games/"+id, nil, "owner-1", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/games/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestDuplicateGameHandler(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequestAs(t, ts, http.MethodPost, "/api/games/"+id+"/duplicate", nil, "owner-2", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["id"] == id {
		t.Fatal("expected a new game id")
	}
	if body["owner_id"] != "owner-2" || body["is_template"] != false {
		t.Fatalf("unexpected duplicate: %v", body)
	}
}

func TestJoinGameHandler(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequestAs(t, ts, http.MethodPost, "/api/games/"+id+"/join", nil, "partner-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["partner_id"] != "partner-1" {
		t.Fatalf("expected partner_id partner-1, got %v", body["partner_id"])
	}

	resp = doRequestAs(t, ts, http.MethodPost, "/api/games/"+id+"/join", nil, "partner-2", "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestDeclareWinnerHandlerValidation(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequest(t, ts, http.MethodPatch, "/api/games/"+id+"/winner", map[string]string{"winner": "nobody"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "winner must be him, her or tie" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestStatsHandler(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequest(t, ts, http.MethodPatch, "/api/games/"+id+"/winner", map[string]string{"winner": WinnerHer})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("declare winner: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp = doRequestAs(t, ts, http.MethodGet, "/api/games/stats", nil, "owner-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	stats := decodeBody(t, resp)
	if stats["wins_as_her"] != float64(1) || stats["completed"] != float64(1) {
		t.Fatalf("unexpected stats: %v", stats)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/games/stats", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestProgressFlow(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	// Complete the top row of the 3x3 grid.
	for _, index := range []int{0, 1, 2} {
		resp := doRequestAs(t, ts, http.MethodPost, "/api/progress", map[string]any{
			"player":       SlotHim,
			"game_id":      id,
			"square_index": index,
			"checked":      true,
		}, "", SlotHim)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("upsert %d: expected status %d, got %d", index, http.StatusOK, resp.StatusCode)
		}
	}

	resp := doRequestAs(t, ts, http.MethodGet, "/api/progress/him/"+id, nil, "", SlotHim)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["bingos"] != float64(1) {
		t.Fatalf("expected 1 bingo, got %v", body["bingos"])
	}
	highlights, ok := body["highlights"].([]any)
	if !ok || len(highlights) != 9 {
		t.Fatalf("expected 9 highlight cells, got %v", body["highlights"])
	}
	for i := 0; i < 3; i++ {
		if highlights[i] != "complete" {
			t.Fatalf("expected top row complete, cell %d is %v", i, highlights[i])
		}
	}
}

func TestProgressRejectsWritingForOtherSlot(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequestAs(t, ts, http.MethodPost, "/api/progress", map[string]any{
		"player":       SlotHer,
		"game_id":      id,
		"square_index": 0,
		"checked":      true,
	}, "", SlotHim)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
}

func TestProgressRejectsUnknownSlot(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequest(t, ts, http.MethodGet, "/api/progress/them/"+id, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestSharingGate(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	// Without a credential the other slot is blocked, with the same body
	// a wrong-pin peek would get.
	resp := doRequestAs(t, ts, http.MethodGet, "/api/progress/her/"+id, nil, "", SlotHim)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
	blocked := decodeBody(t, resp)

	resp = doRequest(t, ts, http.MethodPost, "/api/auth/setup", map[string]string{"player": SlotHer, "pin": "1234"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("setup: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp = doRequestAs(t, ts, http.MethodGet, "/api/progress/her/"+id, nil, "", SlotHim)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
	stillBlocked := decodeBody(t, resp)
	if blocked["error"] != stillBlocked["error"] {
		t.Fatalf("expected identical refusal bodies, got %v vs %v", blocked["error"], stillBlocked["error"])
	}

	resp = doRequestAs(t, ts, http.MethodPatch, "/api/auth/share/her", map[string]bool{"shared": true}, "", SlotHer)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("share: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp = doRequestAs(t, ts, http.MethodGet, "/api/progress/her/"+id, nil, "", SlotHim)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d after sharing, got %d", http.StatusOK, resp.StatusCode)
	}

	// Revoking takes effect on the next read.
	resp = doRequestAs(t, ts, http.MethodPatch, "/api/auth/share/her", map[string]bool{"shared": false}, "", SlotHer)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unshare: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	resp = doRequestAs(t, ts, http.MethodGet, "/api/progress/her/"+id, nil, "", SlotHim)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d after revoking, got %d", http.StatusForbidden, resp.StatusCode)
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodGet, "/api/auth/status/him", nil)
	status := decodeBody(t, resp)
	if status["has_pin"] != false {
		t.Fatalf("expected has_pin false, got %v", status["has_pin"])
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/auth/login", map[string]string{"player": SlotHim, "pin": "1234"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d before setup, got %d", http.StatusNotFound, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/auth/setup", map[string]string{"player": SlotHim, "pin": "123"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d for a short pin, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/auth/setup", map[string]string{"player": SlotHim, "pin": "1234"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("setup: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/auth/setup", map[string]string{"player": SlotHim, "pin": "5678"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d on second setup, got %d", http.StatusConflict, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/auth/login", map[string]string{"player": SlotHim, "pin": "9999"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d for wrong pin, got %d", http.StatusUnauthorized, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/auth/login", map[string]string{"player": SlotHim, "pin": "1234"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["player"] != SlotHim || body["shared"] != false {
		t.Fatalf("unexpected login body: %v", body)
	}
	if _, leaked := body["pin"]; leaked {
		t.Fatal("pin must never appear in a response")
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/auth/status/him", nil)
	status = decodeBody(t, resp)
	if status["has_pin"] != true {
		t.Fatalf("expected has_pin true, got %v", status["has_pin"])
	}
}

func TestShareRequiresOwningSlot(t *testing.T) {
	ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodPost, "/api/auth/setup", map[string]string{"player": SlotHer, "pin": "1234"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("setup: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp = doRequestAs(t, ts, http.MethodPatch, "/api/auth/share/her", map[string]bool{"shared": true}, "", SlotHim)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
}

func TestSecretsFlow(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequestAs(t, ts, http.MethodPost, "/api/secrets", map[string]any{
		"player":  SlotHer,
		"game_id": id,
		"text":    "Steal his hoodie",
	}, "", SlotHer)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	secret := decodeBody(t, resp)
	secretID := secret["id"].(string)

	// The other slot cannot list them while unshared.
	resp = doRequestAs(t, ts, http.MethodGet, "/api/secrets/her/"+id, nil, "", SlotHim)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}

	resp = doRequestAs(t, ts, http.MethodGet, "/api/secrets/her/"+id, nil, "", SlotHer)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	secrets := decodeList(t, resp)
	if len(secrets) != 1 {
		t.Fatalf("expected 1 secret, got %d", len(secrets))
	}

	// Only the owning slot may toggle.
	resp = doRequestAs(t, ts, http.MethodPatch, "/api/secrets/"+secretID, map[string]bool{"checked": true}, "", SlotHim)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
	resp = doRequestAs(t, ts, http.MethodPatch, "/api/secrets/"+secretID, map[string]bool{"checked": true}, "", SlotHer)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	toggled := decodeBody(t, resp)
	if toggled["checked"] != true {
		t.Fatalf("expected checked true, got %v", toggled["checked"])
	}
}

func TestCreateSecretForOtherSlotForbidden(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequestAs(t, ts, http.MethodPost, "/api/secrets", map[string]any{
		"player":  SlotHer,
		"game_id": id,
		"text":    "Planted challenge",
	}, "", SlotHim)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
}

func TestGameQR(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts, "owner-1")

	resp := doRequest(t, ts, http.MethodGet, "/api/games/"+id+"/qr", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}
