package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const historyLimit = 10

// Store interface for bot commands
type Store interface {
	AddRepository(ctx context.Context, owner, name string, trackPrereleases bool) error
	RemoveRepository(ctx context.Context, owner, name string) error
	ListRepositories(ctx context.Context) ([]Repository, error)
	AddChat(ctx context.Context, chatID int64, title string) error
	RemoveChat(ctx context.Context, chatID int64) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// JobRunner interface for triggering release checks
type JobRunner interface {
	TriggerCheck(ctx context.Context) error
}

// NotesGenerator generates release notes for the default repository and
// returns an HTML summary suitable for a reply
type NotesGenerator interface {
	GenerateNotes(ctx context.Context, endTag, startTag string) (string, error)
}

// Repository represents a repository for bot operations
type Repository struct {
	Owner            string
	Name             string
	TrackPrereleases bool
}

// Run is a past generation as listed by /history
type Run struct {
	Repo      string
	EndTag    string
	StartTag  string
	Total     int
	CreatedAt time.Time
}

// Bot handles Telegram bot commands
type Bot struct {
	api          *tgbotapi.BotAPI
	send         func(c tgbotapi.Chattable) (tgbotapi.Message, error)
	store        Store
	jobRunner    JobRunner
	generator    NotesGenerator
	allowedUsers map[int64]bool
	logger       *slog.Logger
}

// NewBot creates a new bot instance. jobRunner and generator may be nil,
// which disables /forcecheck and /notes.
func NewBot(token string, store Store, jobRunner JobRunner, generator NotesGenerator, allowedUserIDs []int64, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	b := newBot(store, jobRunner, generator, allowedUserIDs, logger)
	b.api = api
	b.send = api.Send
	return b, nil
}

func newBot(store Store, jobRunner JobRunner, generator NotesGenerator, allowedUserIDs []int64, logger *slog.Logger) *Bot {
	allowedUsers := make(map[int64]bool)
	for _, id := range allowedUserIDs {
		allowedUsers[id] = true
	}

	return &Bot{
		store:        store,
		jobRunner:    jobRunner,
		generator:    generator,
		allowedUsers: allowedUsers,
		logger:       logger,
	}
}

// StartPolling starts polling for updates
func (b *Bot) StartPolling(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message != nil {
				go b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || !message.IsCommand() {
		return
	}

	response, ok := b.dispatch(ctx, message.From.ID, message.Chat.ID, message.Chat.Title, message.Command(), message.CommandArguments())
	if !ok {
		return
	}

	b.reply(message.Chat.ID, response)
}

// reply sends an HTML response, split into several messages when it does not
// fit into one
func (b *Bot) reply(chatID int64, response string) {
	for _, chunk := range chunkHTML(response, maxMessageSize) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := b.send(msg); err != nil {
			b.logger.Error("Failed to send command response", "chat_id", chatID, "error", err)
			return
		}
	}
}

// dispatch runs a command and returns the reply. Commands from users that
// are not allowed are ignored.
func (b *Bot) dispatch(ctx context.Context, userID, chatID int64, chatTitle, command, args string) (string, bool) {
	if !b.allowedUsers[userID] {
		return "", false
	}

	b.logger.Info("Processing command",
		"command", command,
		"args", args,
		"user_id", userID,
		"chat_id", chatID)

	var response string
	var err error

	switch command {
	case "notes":
		response, err = b.handleNotes(ctx, args)
	case "addrepo":
		response, err = b.handleAddRepo(ctx, args)
	case "delrepo":
		response, err = b.handleDelRepo(ctx, args)
	case "list":
		response, err = b.handleList(ctx)
	case "setchat":
		response, err = b.handleSetChat(ctx, chatID, chatTitle, args)
	case "history":
		response, err = b.handleHistory(ctx)
	case "forcecheck":
		response, err = b.handleForceCheck(ctx)
	case "help", "start":
		response = helpText
	default:
		response = "Unknown command. Use /help for available commands."
	}

	if err != nil {
		b.logger.Error("Command execution failed", "command", command, "error", err)
		response = "❌ Error: " + html.EscapeString(err.Error())
	}
	return response, true
}

// handleNotes handles /notes command
func (b *Bot) handleNotes(ctx context.Context, args string) (string, error) {
	if b.generator == nil {
		return "❌ Release notes generation is not configured", nil
	}

	parts := strings.Fields(args)
	if len(parts) < 1 || len(parts) > 2 {
		return "Usage: /notes end_tag [start_tag]", nil
	}

	startTag := ""
	if len(parts) == 2 {
		startTag = parts[1]
	}
	return b.generator.GenerateNotes(ctx, parts[0], startTag)
}

// handleAddRepo handles /addrepo command
func (b *Bot) handleAddRepo(ctx context.Context, args string) (string, error) {
	parts := strings.Fields(args)
	if len(parts) < 1 {
		return "Usage: /addrepo owner/repo [--pre]", nil
	}

	owner, name, ok := splitRepo(parts[0])
	if !ok {
		return "Invalid format. Use: owner/repo", nil
	}

	trackPrereleases := false
	for _, part := range parts[1:] {
		if part == "--pre" {
			trackPrereleases = true
			break
		}
	}

	if err := b.store.AddRepository(ctx, owner, name, trackPrereleases); err != nil {
		return "", err
	}

	suffix := ""
	if trackPrereleases {
		suffix = " (including prereleases)"
	}
	return fmt.Sprintf("✅ Added repository <b>%s/%s</b>%s", html.EscapeString(owner), html.EscapeString(name), suffix), nil
}

// handleDelRepo handles /delrepo command
func (b *Bot) handleDelRepo(ctx context.Context, args string) (string, error) {
	owner, name, ok := splitRepo(strings.TrimSpace(args))
	if !ok {
		return "Usage: /delrepo owner/repo", nil
	}

	if err := b.store.RemoveRepository(ctx, owner, name); err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Removed repository <b>%s/%s</b>", html.EscapeString(owner), html.EscapeString(name)), nil
}

// handleList handles /list command
func (b *Bot) handleList(ctx context.Context) (string, error) {
	repos, err := b.store.ListRepositories(ctx)
	if err != nil {
		return "", err
	}

	if len(repos) == 0 {
		return "No repositories are being tracked.", nil
	}

	var response strings.Builder
	response.WriteString("<b>Tracked repositories:</b>\n\n")

	for _, repo := range repos {
		response.WriteString(fmt.Sprintf("• <b>%s/%s</b>", html.EscapeString(repo.Owner), html.EscapeString(repo.Name)))
		if repo.TrackPrereleases {
			response.WriteString(" (with prereleases)")
		}
		response.WriteString("\n")
	}

	return response.String(), nil
}

// handleSetChat handles /setchat command
func (b *Bot) handleSetChat(ctx context.Context, currentChatID int64, currentTitle, args string) (string, error) {
	chatID := currentChatID
	title := currentTitle

	if args = strings.TrimSpace(args); args != "" {
		id, err := strconv.ParseInt(args, 10, 64)
		if err != nil {
			return "Invalid chat ID format", nil
		}
		chatID = id
		if chatID != currentChatID {
			title = ""
		}
	}
	if title == "" {
		title = fmt.Sprintf("Chat %d", chatID)
	}

	if err := b.store.AddChat(ctx, chatID, title); err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Chat <b>%d</b> has been added to notifications", chatID), nil
}

// handleHistory handles /history command
func (b *Bot) handleHistory(ctx context.Context) (string, error) {
	runs, err := b.store.ListRuns(ctx, historyLimit)
	if err != nil {
		return "", err
	}

	if len(runs) == 0 {
		return "No release notes have been generated yet.", nil
	}

	var response strings.Builder
	response.WriteString("<b>Recent release notes:</b>\n\n")

	for _, run := range runs {
		response.WriteString(fmt.Sprintf("• <b>%s</b> <code>%s</code>", html.EscapeString(run.Repo), html.EscapeString(run.EndTag)))
		if run.StartTag != "" {
			response.WriteString(" since <code>" + html.EscapeString(run.StartTag) + "</code>")
		}
		response.WriteString(fmt.Sprintf(" - %d PRs, %s\n", run.Total, run.CreatedAt.UTC().Format("2006-01-02 15:04")))
	}

	return response.String(), nil
}

// handleForceCheck handles /forcecheck command
func (b *Bot) handleForceCheck(ctx context.Context) (string, error) {
	if b.jobRunner == nil {
		return "❌ Force check not available", nil
	}

	b.logger.Info("Manual release check triggered")

	if err := b.jobRunner.TriggerCheck(ctx); err != nil {
		return "", err
	}

	return "🔄 Manual release check started...", nil
}

func splitRepo(s string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}

const helpText = `<b>Available commands:</b>

/notes end_tag [start_tag] - Generate release notes for the default repository
/addrepo owner/repo [--pre] - Add repository to watch
/delrepo owner/repo - Remove repository from watching
/list - List all watched repositories
/setchat [chat_id] - Add current or specified chat for announcements
/history - Show recently generated release notes
/forcecheck - Manually trigger release check
/help - Show this help message

<b>Examples:</b>
/notes v2.0.0
/notes v2.0.0 v1.5.0
/addrepo golang/go
/addrepo kubernetes/kubernetes --pre
/setchat -1001234567890`
