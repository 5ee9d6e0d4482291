// Package generator runs one release notes generation end to end: select
// and categorize, summarize, render, record and announce.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/relnotes/internal/advisor"
	"github.com/yourorg/relnotes/internal/compose"
	"github.com/yourorg/relnotes/internal/db"
	"github.com/yourorg/relnotes/internal/notes"
	"github.com/yourorg/relnotes/internal/render"
	"github.com/yourorg/relnotes/internal/telegram"
)

const advisorTimeout = 15 * time.Second

// SourceFactory returns the collaborator for one repository
type SourceFactory func(owner, repo string) notes.Source

// Advisor writes a short summary of the categorized changes
type Advisor interface {
	Advise(ctx context.Context, repo, tag string, res *notes.Result) (string, error)
}

// Writer persists the rendered notes
type Writer interface {
	Write(n render.Notes, email render.EmailFields) (render.Files, error)
}

// RunStore records finished generations
type RunStore interface {
	RecordRun(ctx context.Context, run *db.Run) error
}

// ChatStore lists the chats that receive announcements
type ChatStore interface {
	ListChats(ctx context.Context) ([]db.Chat, error)
	RemoveChat(ctx context.Context, chatID int64) error
}

// Sender delivers an HTML message to a chat
type Sender interface {
	SendHTML(ctx context.Context, chatID int64, html string) error
}

// Generator wires the selection engine to its outputs. Sources and Writer
// are required; every other collaborator is optional.
type Generator struct {
	Sources SourceFactory
	Writer  Writer
	Advisor Advisor
	Runs    RunStore
	Chats   ChatStore
	Sender  Sender
	Email   render.EmailFields
	Compose compose.Options
	Logger  *slog.Logger
	Now     func() time.Time
}

// Request names the release to generate notes for
type Request struct {
	Owner    string
	Repo     string
	EndTag   string
	StartTag string // empty selects the release preceding EndTag
	Product  string // defaults to Repo
	Announce bool

	// Optional release metadata used in announcements
	URL       string
	Published time.Time
}

// Report describes a finished generation
type Report struct {
	Selection  *notes.Selection
	Files      render.Files
	Run        *db.Run
	Highlights string
	Announced  int // chats that received the announcement
}

// Generate produces the notes for req. Selection errors are returned
// unchanged so callers can inspect them with errors.As. Failures of the
// advisor and of individual chats are logged and do not fail the run.
func (g *Generator) Generate(ctx context.Context, req Request) (*Report, error) {
	if g.Sources == nil || g.Writer == nil {
		return nil, errors.New("generator is missing a source or writer")
	}
	if req.Owner == "" || req.Repo == "" {
		return nil, errors.New("repository owner and name are required")
	}
	if req.EndTag == "" {
		return nil, errors.New("end tag is required")
	}

	repoFull := req.Owner + "/" + req.Repo
	logger := g.logger().With("repo", repoFull, "tag", req.EndTag)

	logger.Info("Generating release notes", "start_tag", req.StartTag)

	sel, err := notes.SelectAndCategorize(ctx, g.Sources(req.Owner, req.Repo), req.EndTag, req.StartTag)
	if err != nil {
		return nil, err
	}

	counts := sel.Result.Counts()
	logger.Info("Pull requests categorized",
		"features", counts[notes.Features],
		"bug_fixes", counts[notes.BugFixes],
		"documentation", counts[notes.Documentation],
		"other", counts[notes.Other])

	report := &Report{Selection: sel}
	report.Highlights = g.advise(ctx, logger, repoFull, req.EndTag, sel.Result)

	product := req.Product
	if product == "" {
		product = req.Repo
	}
	email := g.Email
	email.Product = product

	files, err := g.Writer.Write(render.Notes{
		Product:     product,
		EndTag:      req.EndTag,
		StartTag:    req.StartTag,
		Result:      sel.Result,
		Highlights:  report.Highlights,
		GeneratedAt: g.now(),
	}, email)
	if err != nil {
		return nil, fmt.Errorf("write release notes: %w", err)
	}
	report.Files = files
	logger.Info("Release notes written", "markdown", files.Markdown, "pdf", files.PDF, "email", files.Email)

	run := &db.Run{
		Owner:         req.Owner,
		Repo:          req.Repo,
		EndTag:        req.EndTag,
		StartTag:      req.StartTag,
		WindowStart:   sel.Window.Start,
		WindowEnd:     sel.Window.End,
		Features:      counts[notes.Features],
		BugFixes:      counts[notes.BugFixes],
		Documentation: counts[notes.Documentation],
		Other:         counts[notes.Other],
		MarkdownPath:  files.Markdown,
		PDFPath:       files.PDF,
		EmailPath:     files.Email,
	}
	if g.Runs != nil {
		if err := g.Runs.RecordRun(ctx, run); err != nil {
			logger.Warn("Failed to record run", "error", err)
		} else {
			report.Run = run
		}
	}

	if req.Announce {
		msg := compose.BuildHTML(compose.Input{
			RepoFull:  repoFull,
			Tag:       req.EndTag,
			StartTag:  req.StartTag,
			URL:       req.URL,
			Result:    sel.Result,
			Published: req.Published,
			Advisor:   report.Highlights,
		}, g.Compose)
		report.Announced = g.announce(ctx, logger, msg)
	}

	return report, nil
}

func (g *Generator) advise(ctx context.Context, logger *slog.Logger, repo, tag string, res *notes.Result) string {
	if g.Advisor == nil {
		return ""
	}

	llmCtx, cancel := context.WithTimeout(ctx, advisorTimeout)
	defer cancel()

	advice, err := g.Advisor.Advise(llmCtx, repo, tag, res)
	if err != nil {
		if advisor.IsTimeout(err) {
			logger.Debug("Advisor timed out, continuing without highlights", "error", err)
		} else {
			logger.Warn("Failed to get advisor summary", "error", err)
		}
		return ""
	}
	return advice
}

// announce sends msg to every registered chat and returns how many got it.
// Chats failing with a permanent error are removed.
func (g *Generator) announce(ctx context.Context, logger *slog.Logger, msg string) int {
	if g.Sender == nil || g.Chats == nil {
		logger.Warn("Announcement requested but Telegram is not configured")
		return 0
	}

	chats, err := g.Chats.ListChats(ctx)
	if err != nil {
		logger.Error("Failed to get chats", "error", err)
		return 0
	}
	if len(chats) == 0 {
		logger.Warn("No chats configured for notifications")
		return 0
	}

	sent := 0
	for _, chat := range chats {
		chatLogger := logger.With("chat_id", chat.ID)

		if err := g.Sender.SendHTML(ctx, chat.ID, msg); err != nil {
			chatLogger.Error("Failed to send message", "error", err)

			if telegram.IsPermanentError(err) {
				chatLogger.Warn("Removing chat due to permanent error")
				if removeErr := g.Chats.RemoveChat(ctx, chat.ID); removeErr != nil {
					chatLogger.Error("Failed to remove invalid chat", "remove_error", removeErr)
				}
			}
			continue
		}

		sent++
		chatLogger.Info("Message sent successfully")
	}
	return sent
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}
