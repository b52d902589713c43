package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxTitleLength       = 120
	maxThemeLength       = 200
	maxSquareTextLength  = 200
	maxDescriptionLength = 500
	maxBetLength         = 1000
	maxLabelLength       = 20
	minPINLength         = 4
	maxPINLength         = 8
	maxSuggestionCount   = 25
)

var ratings = map[string]struct{}{
	"pg": {}, "pg13": {}, "r": {}, "nc17": {},
}

var moods = map[string]struct{}{
	"couples": {}, "friends-trip": {}, "party": {}, "custom": {},
}

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("slot", func(fl validator.FieldLevel) bool {
			return ValidSlot(fl.Field().String())
		})
		_ = engine.RegisterValidation("winner", func(fl validator.FieldLevel) bool {
			return ValidWinner(fl.Field().String())
		})
		_ = engine.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
			_, ok := ratings[fl.Field().String()]
			return ok
		})
		_ = engine.RegisterValidation("mood", func(fl validator.FieldLevel) bool {
			_, ok := moods[fl.Field().String()]
			return ok
		})
		_ = engine.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
			_, err := validatePIN(fl.Field().String())
			return err == nil
		})
	})
}

func validatePIN(pin string) (string, error) {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return "", fmt.Errorf("pin must be %d-%d characters", minPINLength, maxPINLength)
	}
	return pin, nil
}

func validateTitle(title string) (string, error) {
	return validateText("title", title, maxTitleLength)
}

func validateTheme(theme string) (string, error) {
	return validateText("theme", theme, maxThemeLength)
}

func validateLabel(label, fallback string) (string, error) {
	trimmed := normalizeText(label)
	if trimmed == "" {
		return fallback, nil
	}
	if len(trimmed) > maxLabelLength {
		return "", fmt.Errorf("player label must be %d characters or fewer", maxLabelLength)
	}
	return trimmed, nil
}

func validateSquares(squares []Square, gridSize int) ([]Square, error) {
	total := gridSize * gridSize
	if len(squares) != total {
		return nil, fmt.Errorf("expected %d squares for a %dx%d grid, got %d", total, gridSize, gridSize, len(squares))
	}
	out := make([]Square, 0, total)
	for i, sq := range squares {
		text := normalizeText(sq.Text)
		if text == "" {
			return nil, fmt.Errorf("square %d text is required", i)
		}
		if len(text) > maxSquareTextLength {
			return nil, fmt.Errorf("square %d text must be %d characters or fewer", i, maxSquareTextLength)
		}
		description := strings.TrimSpace(sq.Description)
		if len(description) > maxDescriptionLength {
			return nil, fmt.Errorf("square %d description must be %d characters or fewer", i, maxDescriptionLength)
		}
		out = append(out, Square{Text: text, Description: description})
	}
	return out, nil
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", errors.New(label + " is required")
	}
	if len(trimmed) > maxLen {
		return "", fmt.Errorf("%s must be %d characters or fewer", label, maxLen)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
