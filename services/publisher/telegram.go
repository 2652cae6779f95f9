package publisher

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sjsage522/listingwatcher/internal/crawler"
	apperrors "sjsage522/listingwatcher/pkg/errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramPublisher sends each item to a chat through the Bot API
type TelegramPublisher struct {
	bot    *tgbotapi.BotAPI
	client *http.Client
	token  string
	chatID string
}

// NewTelegramPublisher connects the bot and checks the token with getMe.
// apiURL is the Bot API root, normally https://api.telegram.org.
func NewTelegramPublisher(apiURL, token, chatID string, timeout time.Duration) (*TelegramPublisher, error) {
	client := &http.Client{Timeout: timeout}
	endpoint := strings.TrimRight(apiURL, "/") + "/bot%s/%s"

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, apperrors.NewPublisher("telegram", "bot login failed", redactToken(err, token))
	}

	return &TelegramPublisher{
		bot:    bot,
		client: client,
		token:  token,
		chatID: chatID,
	}, nil
}

// Publish sends the item as an HTML formatted chat message
func (p *TelegramPublisher) Publish(ctx context.Context, item crawler.Item) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewPublisher(item.Provider(), "telegram send cancelled", err)
	}

	msg := p.newMessage(crawler.RenderHTML(item))
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := p.bot.Send(msg); err != nil {
		var apiErr *tgbotapi.Error
		if stderrors.As(err, &apiErr) {
			return apperrors.NewPublisher(item.Provider(), fmt.Sprintf("telegram error %d: %s", apiErr.Code, apiErr.Message), nil)
		}
		return apperrors.NewPublisher(item.Provider(), "telegram request failed", redactToken(err, p.token))
	}

	return nil
}

// newMessage addresses numeric chat ids directly and anything else as a
// channel username
func (p *TelegramPublisher) newMessage(text string) tgbotapi.MessageConfig {
	if id, err := strconv.ParseInt(p.chatID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}
	return tgbotapi.NewMessageToChannel(p.chatID, text)
}

// Close releases idle connections
func (p *TelegramPublisher) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func redactToken(err error, token string) error {
	if token == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "<token>"))
}
