package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageSize stays below Telegram's 4096 character limit
const maxMessageSize = 4000

// Sender handles Telegram message sending
type Sender struct {
	bot *tgbotapi.BotAPI
}

// NewSender creates a new Telegram sender
func NewSender(token string) (*Sender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Sender{bot: bot}, nil
}

// SendHTML sends an HTML message to a chat, splitting if necessary
func (s *Sender) SendHTML(ctx context.Context, chatID int64, html string) error {
	chunks := chunkHTML(html, maxMessageSize)

	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		var lastErr error
		for attempt := 0; attempt < 3; attempt++ {
			_, err := s.bot.Send(msg)
			if err == nil {
				lastErr = nil
				break
			}

			lastErr = err

			if IsPermanentError(err) {
				return fmt.Errorf("permanent telegram error: %w", err)
			}

			if attempt < 2 {
				backoff := time.Duration(500*(attempt+1)) * time.Millisecond
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}
			}
		}

		if lastErr != nil {
			return fmt.Errorf("failed to send message after retries: %w", lastErr)
		}

		// Small delay between chunks to avoid rate limiting
		if i < len(chunks)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
		}
	}

	return nil
}

// chunkHTML splits text into chunks that fit Telegram's message size limit
func chunkHTML(text string, maxSize int) []string {
	if len(text) <= maxSize {
		return []string{text}
	}

	var chunks []string
	remaining := text

	for len(remaining) > maxSize {
		breakPoint := findBreakPoint(remaining, maxSize)
		if breakPoint == -1 {
			breakPoint = runeBoundary(remaining, maxSize)
		}

		chunks = append(chunks, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], "\n ")
	}

	if len(remaining) > 0 {
		chunks = append(chunks, remaining)
	}

	return chunks
}

// findBreakPoint returns the index just after the last newline (or failing
// that, space) within the limit, or -1 when none sits in its second half
func findBreakPoint(text string, maxSize int) int {
	if len(text) <= maxSize {
		return len(text)
	}

	window := text[:maxSize]

	if i := strings.LastIndexByte(window, '\n'); i > maxSize/2 {
		return i + 1
	}
	if i := strings.LastIndexByte(window, ' '); i > maxSize/2 {
		return i + 1
	}

	return -1
}

// runeBoundary moves n back until it does not split a UTF-8 sequence
func runeBoundary(s string, n int) int {
	i := n
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	if i == 0 {
		return n
	}
	return i
}

// IsPermanentError checks if a Telegram API error is permanent and shouldn't be retried
func IsPermanentError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	permanentErrors := []string{
		"chat not found",
		"bot was blocked by the user",
		"user is deactivated",
		"text must be encoded in utf-8",
		"message is too long",
		"bad request: can't parse entities",
		"forbidden",
	}

	for _, permErr := range permanentErrors {
		if strings.Contains(errStr, permErr) {
			return true
		}
	}

	return false
}
