package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bingo-nights/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := New(NewMemStore(), config.Default())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func sampleSquares(gridSize int) []map[string]string {
	total := gridSize * gridSize
	squares := make([]map[string]string, 0, total)
	for i := 0; i < total; i++ {
		squares = append(squares, map[string]string{
			"text":        fmt.Sprintf("Square %d", i),
			"description": fmt.Sprintf("How to earn square %d", i),
		})
	}
	return squares
}

func gamePayload(gridSize int) map[string]any {
	return map[string]any{
		"title":     "Date Night",
		"theme":     "Cute in public, tension building",
		"grid_size": gridSize,
		"squares":   sampleSquares(gridSize),
	}
}

func createGame(t *testing.T, ts *httptest.Server, owner string) string {
	t.Helper()
	resp := doRequestAs(t, ts, http.MethodPost, "/api/games", gamePayload(3), owner, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["id"].(string)
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	return doRequestAs(t, ts, method, path, payload, "", "")
}

func doRequestAs(t *testing.T, ts *httptest.Server, method, path string, payload any, userID, slot string) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(headerUserID, userID)
	}
	if slot != "" {
		req.Header.Set(headerPlayerSlot, slot)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func decodeList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	var body []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return body
}

func testGame(gridSize int) *Game {
	return &Game{
		Title:        "Date Night",
		Theme:        "Cute in public",
		GridSize:     gridSize,
		Squares:      testSquares(gridSize),
		Rating:       "r",
		Mood:         "couples",
		Player1Label: "Him",
		Player2Label: "Her",
		OwnerID:      "owner-1",
	}
}

func testSquares(gridSize int) []Square {
	total := gridSize * gridSize
	squares := make([]Square, 0, total)
	for i := 0; i < total; i++ {
		squares = append(squares, Square{Text: fmt.Sprintf("Square %d", i)})
	}
	return squares
}
