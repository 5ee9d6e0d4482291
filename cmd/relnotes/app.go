package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourorg/relnotes/internal/advisor"
	"github.com/yourorg/relnotes/internal/compose"
	"github.com/yourorg/relnotes/internal/config"
	"github.com/yourorg/relnotes/internal/db"
	"github.com/yourorg/relnotes/internal/generator"
	"github.com/yourorg/relnotes/internal/github"
	"github.com/yourorg/relnotes/internal/logging"
	"github.com/yourorg/relnotes/internal/notes"
	"github.com/yourorg/relnotes/internal/render"
	"github.com/yourorg/relnotes/internal/telegram"
)

const (
	maxItemsPerCategory = 10
	maxTitleChars       = 120
)

// app holds the collaborators shared by the commands
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	database *db.DB
	store    *db.Store
	github   *github.Client
}

// loadConfig reads configuration and installs the default logger
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, logging.Setup(cfg.LogLevel, cfg.Env), nil
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		database: database,
		store:    db.NewStore(database),
		github: github.New(cfg.GithubToken,
			github.WithBaseURL(cfg.GithubAPIURL),
			github.WithMaxRetries(cfg.GithubMaxRetries)),
	}, nil
}

func (a *app) Close() error {
	return a.database.Close()
}

// generator wires the release notes pipeline. sender may be nil when
// Telegram is not configured.
func (a *app) generator(sender *telegram.Sender) (*generator.Generator, error) {
	tmpl, err := render.LoadEmailTemplate(a.cfg.EmailTemplate)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(a.cfg.TimeZone)
	if err != nil {
		a.logger.Warn("Unknown time zone, using UTC", "timezone", a.cfg.TimeZone, "error", err)
		loc = time.UTC
	}

	g := &generator.Generator{
		Sources: func(owner, repo string) notes.Source {
			return notes.NewGitHubSource(a.github, owner, repo)
		},
		Writer: &render.Writer{
			Dir:           a.cfg.OutputDir,
			Cleanup:       a.cfg.CleanupOutput,
			EmailTemplate: tmpl,
			PDF:           render.PDFOptions{AssetsDir: a.cfg.AssetsDir, Location: loc},
			Logger:        a.logger,
		},
		Runs: a.store,
		Email: render.EmailFields{
			From: a.cfg.EmailFrom,
			To:   a.cfg.EmailTo,
			CC:   a.cfg.EmailCC,
		},
		Compose: compose.Options{
			MaxItemsPerCategory: maxItemsPerCategory,
			MaxTitleChars:       maxTitleChars,
			TimeZone:            loc.String(),
		},
		Logger: a.logger,
	}

	if a.cfg.AdvisorEnabled {
		g.Advisor = advisor.New(a.cfg.OpenRouterAPIKey, a.cfg.OpenRouterModel)
		a.logger.Info("LLM advisor enabled", "model", a.cfg.OpenRouterModel)
	}
	if sender != nil {
		g.Sender = sender
		g.Chats = a.store
	}

	return g, nil
}
