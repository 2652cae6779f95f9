package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	apperrors "sjsage522/listingwatcher/pkg/errors"

	"gopkg.in/yaml.v2"
)

// Watchlist holds the notification target and the pages to scan
type Watchlist struct {
	TelegramToken  *string  `json:"telegram_token" yaml:"telegram_token"`
	TelegramChatID *string  `json:"telegram_chat_id" yaml:"telegram_chat_id"`
	VintedURLs     []string `json:"vinted_urls" yaml:"vinted_urls"`
	LbcURLs        []string `json:"lbc_urls" yaml:"lbc_urls"`
}

// LoadWatchlist reads a watchlist document. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfiguration("failed to read watchlist "+path, err)
	}

	var w Watchlist
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &w)
	default:
		err = json.Unmarshal(data, &w)
	}
	if err != nil {
		return nil, apperrors.NewConfiguration("failed to parse watchlist "+path, err)
	}

	if w.VintedURLs == nil {
		w.VintedURLs = []string{}
	}
	if w.LbcURLs == nil {
		w.LbcURLs = []string{}
	}

	return &w, nil
}

// HasTelegram reports whether both Telegram credentials are present
func (w *Watchlist) HasTelegram() bool {
	return w.TelegramToken != nil && *w.TelegramToken != "" &&
		w.TelegramChatID != nil && *w.TelegramChatID != ""
}

// Validate checks that the watchlist names something to scan
func (w *Watchlist) Validate() error {
	if len(w.VintedURLs)+len(w.LbcURLs) == 0 {
		return apperrors.NewValidation("watchlist has no vinted_urls or lbc_urls")
	}
	hasToken := w.TelegramToken != nil && *w.TelegramToken != ""
	hasChat := w.TelegramChatID != nil && *w.TelegramChatID != ""
	if hasToken != hasChat {
		return apperrors.NewValidation("telegram_token and telegram_chat_id must be set together")
	}
	return nil
}
