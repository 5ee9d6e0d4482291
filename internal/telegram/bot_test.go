package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourorg/relnotes/internal/db"
)

type fakeRunner struct{ triggered int }

func (f *fakeRunner) TriggerCheck(ctx context.Context) error {
	f.triggered++
	return nil
}

type fakeNotes struct {
	end, start string
	err        error
}

func (f *fakeNotes) GenerateNotes(ctx context.Context, endTag, startTag string) (string, error) {
	f.end, f.start = endTag, startTag
	if f.err != nil {
		return "", f.err
	}
	return "notes for " + endTag, nil
}

func newTestBot(t *testing.T, runner JobRunner, gen NotesGenerator) (*Bot, *db.Store) {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := db.NewStore(database)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newBot(NewStoreAdapter(store), runner, gen, []int64{42}, logger), store
}

func run(t *testing.T, b *Bot, command, args string) string {
	t.Helper()
	resp, ok := b.dispatch(context.Background(), 42, -100, "Releases", command, args)
	if !ok {
		t.Fatalf("command %s was ignored", command)
	}
	return resp
}

func TestDispatchIgnoresUnknownUsers(t *testing.T) {
	b, _ := newTestBot(t, nil, nil)
	if _, ok := b.dispatch(context.Background(), 7, 1, "", "list", ""); ok {
		t.Fatalf("commands from unknown users must be ignored")
	}
}

func TestRepositoryCommands(t *testing.T) {
	b, store := newTestBot(t, nil, nil)

	if resp := run(t, b, "list", ""); !strings.Contains(resp, "No repositories") {
		t.Fatalf("unexpected empty list: %s", resp)
	}
	if resp := run(t, b, "addrepo", "acme/widget --pre"); !strings.Contains(resp, "including prereleases") {
		t.Fatalf("unexpected addrepo reply: %s", resp)
	}
	if resp := run(t, b, "addrepo", "widget"); !strings.Contains(resp, "Invalid format") {
		t.Fatalf("expected format error, got %s", resp)
	}

	resp := run(t, b, "list", "")
	if !strings.Contains(resp, "<b>acme/widget</b> (with prereleases)") {
		t.Fatalf("unexpected list: %s", resp)
	}

	run(t, b, "delrepo", "acme/widget")
	repos, err := store.ListRepositories(context.Background())
	if err != nil || len(repos) != 0 {
		t.Fatalf("expected repository removed, got %+v (%v)", repos, err)
	}
}

func TestSetChat(t *testing.T) {
	b, store := newTestBot(t, nil, nil)

	run(t, b, "setchat", "")
	run(t, b, "setchat", "-1001234")
	if resp := run(t, b, "setchat", "abc"); resp != "Invalid chat ID format" {
		t.Fatalf("unexpected reply: %s", resp)
	}

	chats, err := store.ListChats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 2 || chats[0].ID != -1001234 || chats[1].Title != "Releases" {
		t.Fatalf("unexpected chats: %+v", chats)
	}
}

func TestHistory(t *testing.T) {
	b, store := newTestBot(t, nil, nil)

	if resp := run(t, b, "history", ""); !strings.Contains(resp, "No release notes") {
		t.Fatalf("unexpected empty history: %s", resp)
	}

	err := store.RecordRun(context.Background(), &db.Run{Owner: "acme", Repo: "widget", EndTag: "v2.0.0", StartTag: "v1.0.0", Features: 2, Other: 1})
	if err != nil {
		t.Fatal(err)
	}
	resp := run(t, b, "history", "")
	if !strings.Contains(resp, "<b>acme/widget</b> <code>v2.0.0</code> since <code>v1.0.0</code> - 3 PRs") {
		t.Fatalf("unexpected history: %s", resp)
	}
}

func TestNotesCommand(t *testing.T) {
	gen := &fakeNotes{}
	b, _ := newTestBot(t, nil, gen)

	if resp := run(t, b, "notes", ""); !strings.HasPrefix(resp, "Usage") {
		t.Fatalf("expected usage, got %s", resp)
	}
	if resp := run(t, b, "notes", "v2.0.0 v1.0.0"); resp != "notes for v2.0.0" {
		t.Fatalf("unexpected reply: %s", resp)
	}
	if gen.end != "v2.0.0" || gen.start != "v1.0.0" {
		t.Fatalf("unexpected tags: %q %q", gen.end, gen.start)
	}

	gen.err = errors.New(`release tag "v9" (end) not found`)
	if resp := run(t, b, "notes", "v9"); !strings.Contains(resp, "&#34;v9&#34; (end) not found") {
		t.Fatalf("expected escaped error, got %s", resp)
	}
}

func TestNotesAndForceCheckUnavailable(t *testing.T) {
	b, _ := newTestBot(t, nil, nil)
	if resp := run(t, b, "notes", "v1"); !strings.Contains(resp, "not configured") {
		t.Fatalf("unexpected reply: %s", resp)
	}
	if resp := run(t, b, "forcecheck", ""); !strings.Contains(resp, "not available") {
		t.Fatalf("unexpected reply: %s", resp)
	}
}

func TestForceCheck(t *testing.T) {
	runner := &fakeRunner{}
	b, _ := newTestBot(t, runner, nil)
	run(t, b, "forcecheck", "")
	if runner.triggered != 1 {
		t.Fatalf("expected one trigger, got %d", runner.triggered)
	}
}

func TestHelpAndUnknown(t *testing.T) {
	b, _ := newTestBot(t, nil, nil)
	if resp := run(t, b, "help", ""); !strings.Contains(resp, "/notes end_tag") {
		t.Fatalf("unexpected help: %s", resp)
	}
	if resp := run(t, b, "bogus", ""); !strings.Contains(resp, "Unknown command") {
		t.Fatalf("unexpected reply: %s", resp)
	}
}

type longNotes struct{ lines int }

func (l longNotes) GenerateNotes(ctx context.Context, endTag, startTag string) (string, error) {
	var sb strings.Builder
	sb.WriteString("<b>Release notes " + endTag + "</b>\n")
	for i := 0; i < l.lines; i++ {
		sb.WriteString("• <i>" + strings.Repeat("x", 110) + "</i>\n")
	}
	return sb.String(), nil
}

func TestNotesReplySplitIntoMessages(t *testing.T) {
	b, _ := newTestBot(t, nil, longNotes{lines: 60})

	var sent []tgbotapi.MessageConfig
	b.send = func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
		sent = append(sent, c.(tgbotapi.MessageConfig))
		return tgbotapi.Message{}, nil
	}

	b.handleMessage(context.Background(), &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 42},
		Chat:     &tgbotapi.Chat{ID: -100},
		Text:     "/notes v2.0.0",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len("/notes")}},
	})

	if len(sent) < 2 {
		t.Fatalf("expected the reply to be split, got %d messages", len(sent))
	}
	items := 0
	for _, msg := range sent {
		if len(msg.Text) > maxMessageSize {
			t.Fatalf("message of %d bytes exceeds %d", len(msg.Text), maxMessageSize)
		}
		if msg.ChatID != -100 || msg.ParseMode != tgbotapi.ModeHTML {
			t.Fatalf("unexpected message settings: chat %d, mode %q", msg.ChatID, msg.ParseMode)
		}
		items += strings.Count(msg.Text, "• <i>")
	}
	if items != 60 {
		t.Fatalf("expected 60 items across messages, got %d", items)
	}
}

func TestShortReplySentOnce(t *testing.T) {
	b, _ := newTestBot(t, nil, nil)

	var sent []tgbotapi.MessageConfig
	b.send = func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
		sent = append(sent, c.(tgbotapi.MessageConfig))
		return tgbotapi.Message{}, errors.New("network down")
	}

	b.reply(-100, "hello")
	if len(sent) != 1 || sent[0].Text != "hello" {
		t.Fatalf("unexpected messages %+v", sent)
	}
}
