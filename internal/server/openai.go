package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bingo-nights/internal/config"
)

// aiClient talks to an OpenAI-compatible chat completions endpoint. The
// suggestion flow is best-effort: a failure here never touches game state.
type aiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func newAIClient(cfg config.Config) *aiClient {
	return &aiClient{
		apiKey:     cfg.OpenAIAPIKey,
		model:      cfg.OpenAIModel,
		baseURL:    strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *aiClient) configured() bool {
	return strings.TrimSpace(a.apiKey) != ""
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *aiClient) chat(ctx context.Context, system, user string) (string, error) {
	reqBody := openAIChatRequest{
		Model: a.model,
		Messages: []openAIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.9,
		MaxTokens:   900,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to build suggestion request")
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build suggestion request")
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(a.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach suggestion service")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read suggestion response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("suggestion request failed (%d)", resp.StatusCode)
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse suggestion response")
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("suggestion service error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("suggestion service returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func ratingTone(rating string) string {
	switch rating {
	case "pg":
		return "Keep everything sweet, wholesome and family-friendly."
	case "pg13":
		return "Flirty and playful is fine; nothing explicit."
	case "nc17":
		return "Adults-only content is fine; be bold."
	default:
		return "Spicy but safe to act on in public."
	}
}

func moodContext(mood string) string {
	switch mood {
	case "friends-trip":
		return "The players are two teams of friends on a trip together."
	case "party":
		return "The players are two teams at a social gathering."
	case "custom":
		return "The players chose a custom game mode; stay close to the theme."
	default:
		return "The players are a couple on a date."
	}
}

// GenerateSquares asks for bingo squares matching the theme. The model is
// told to answer with a strict JSON document; anything that does not parse
// into the expected shape becomes an empty result rather than a guess.
func (a *aiClient) GenerateSquares(ctx context.Context, theme string, count int, existing []string, rating, mood string) ([]Square, error) {
	if count > maxSuggestionCount {
		count = maxSuggestionCount
	}
	system := "You write short, observable bingo square challenges for a two-player social bingo game. " +
		moodContext(mood) + " " + ratingTone(rating) + " " +
		`Respond with JSON only, shaped as {"squares": [{"text": "...", "description": "..."}]}. ` +
		"Each text is at most 8 words; each description is one sentence explaining how to earn the square."
	user := fmt.Sprintf("Theme: %s\nGenerate %d squares.", theme, count)
	if len(existing) > 0 {
		user += "\nDo not repeat any of these existing squares:\n- " + strings.Join(existing, "\n- ")
	}

	content, err := a.chat(ctx, system, user)
	if err != nil {
		return nil, err
	}
	return sanitizeSquares(parseSquarePayload(content), existing, count), nil
}

// GenerateBetIdeas asks for short bet descriptions for the winner's prize.
func (a *aiClient) GenerateBetIdeas(ctx context.Context, theme, rating, mood string, count int) ([]string, error) {
	if count <= 0 {
		count = 5
	}
	if count > maxSuggestionCount {
		count = maxSuggestionCount
	}
	system := "You invent fun stakes for the winner of a two-player social bingo game. " +
		moodContext(mood) + " " + ratingTone(rating) + " " +
		`Respond with JSON only, shaped as {"bets": ["..."]}. Each bet is one or two sentences.`
	user := fmt.Sprintf("Theme: %s\nGenerate %d bet ideas.", theme, count)

	content, err := a.chat(ctx, system, user)
	if err != nil {
		return nil, err
	}
	return sanitizeBets(parseBetPayload(content), count), nil
}

type squarePayload struct {
	Squares []Square `json:"squares"`
}

// parseSquarePayload accepts exactly two shapes: the requested document or
// a bare JSON array of squares. Anything else yields nil; the caller falls
// back to an empty suggestion list instead of hunting for arrays.
func parseSquarePayload(raw string) []Square {
	raw = stripCodeFence(raw)
	var doc squarePayload
	if err := json.Unmarshal([]byte(raw), &doc); err == nil && len(doc.Squares) > 0 {
		return doc.Squares
	}
	var bare []Square
	if err := json.Unmarshal([]byte(raw), &bare); err == nil {
		return bare
	}
	return nil
}

type betPayload struct {
	Bets []string `json:"bets"`
}

func parseBetPayload(raw string) []string {
	raw = stripCodeFence(raw)
	var doc betPayload
	if err := json.Unmarshal([]byte(raw), &doc); err == nil && len(doc.Bets) > 0 {
		return doc.Bets
	}
	var bare []string
	if err := json.Unmarshal([]byte(raw), &bare); err == nil {
		return bare
	}
	return nil
}

// stripCodeFence unwraps ```json fences that chat models like to add.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func sanitizeSquares(squares []Square, existing []string, count int) []Square {
	seen := make(map[string]struct{}, len(existing))
	for _, text := range existing {
		seen[strings.ToLower(strings.TrimSpace(text))] = struct{}{}
	}
	out := make([]Square, 0, len(squares))
	for _, sq := range squares {
		text := normalizeText(sq.Text)
		if text == "" || len(text) > maxSquareTextLength {
			continue
		}
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Square{Text: text, Description: strings.TrimSpace(sq.Description)})
		if len(out) == count {
			break
		}
	}
	return out
}

func sanitizeBets(bets []string, count int) []string {
	seen := make(map[string]struct{}, len(bets))
	out := make([]string, 0, len(bets))
	for _, bet := range bets {
		clean := strings.TrimSpace(bet)
		if clean == "" {
			continue
		}
		key := strings.ToLower(clean)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, clean)
		if len(out) == count {
			break
		}
	}
	return out
}
