package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourorg/relnotes/internal/compose"
	"github.com/yourorg/relnotes/internal/generator"
	"github.com/yourorg/relnotes/internal/scheduler"
	"github.com/yourorg/relnotes/internal/telegram"
	"github.com/yourorg/relnotes/internal/watch"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll watched repositories and generate notes for every new release",
		Long: `Poll the watched repositories every POLL_INTERVAL_MINUTES. Each new
release gets release notes generated against the release before it and,
when TELEGRAM_BOT_TOKEN is set, announced to the registered chats.
With ALLOWED_USER_IDS set, the Telegram bot also accepts commands.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateWatch(); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger.Info("Starting release notes watcher")

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var sender *telegram.Sender
	if cfg.TelegramToken != "" {
		if sender, err = telegram.NewSender(cfg.TelegramToken); err != nil {
			return err
		}
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN is not set, release notes will not be announced")
	}

	gen, err := a.generator(sender)
	if err != nil {
		return err
	}

	if cfg.DefaultChatID != 0 {
		if err := a.store.AddChat(ctx, cfg.DefaultChatID, "Default Chat"); err != nil {
			logger.Warn("Failed to add default chat", "chat_id", cfg.DefaultChatID, "error", err)
		}
	}

	watch.SeedRepositories(ctx, logger, a.store, cfg.WatchRepositories)

	job := &watch.Job{
		Releases:      a.github,
		Store:         a.store,
		Generator:     gen,
		Logger:        logger,
		MaxReleaseAge: time.Duration(cfg.MaxReleaseAgeDays) * 24 * time.Hour,
	}

	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	releaseScheduler := scheduler.New(logger, interval, job.Run)
	releaseScheduler.Start(ctx)

	commandsEnabled := len(cfg.AllowedUserIDs) > 0
	if commandsEnabled {
		notesGen := &botNotes{
			gen:     gen,
			owner:   cfg.GithubOwner,
			repo:    cfg.GithubRepo,
			product: cfg.Product(),
		}
		bot, err := telegram.NewBot(cfg.TelegramToken, telegram.NewStoreAdapter(a.store), releaseScheduler, notesGen, cfg.AllowedUserIDs, logger)
		if err != nil {
			logger.Error("Failed to create bot", "error", err)
		} else {
			logger.Info("Bot commands enabled", "allowed_users", cfg.AllowedUserIDs)
			go bot.StartPolling(ctx)
		}
	}

	logger.Info("Watcher started successfully",
		"interval", interval,
		"advisor_enabled", cfg.AdvisorEnabled,
		"commands_enabled", commandsEnabled)

	<-ctx.Done()
	logger.Info("Shutting down...")

	releaseScheduler.Stop()
	logger.Info("Watcher stopped")
	return nil
}

// botNotes serves /notes for the configured default repository
type botNotes struct {
	gen     *generator.Generator
	owner   string
	repo    string
	product string
}

func (n *botNotes) GenerateNotes(ctx context.Context, endTag, startTag string) (string, error) {
	if n.owner == "" || n.repo == "" {
		return "", errors.New("GITHUB_OWNER and GITHUB_REPO must be set to use /notes")
	}

	report, err := n.gen.Generate(ctx, generator.Request{
		Owner:    n.owner,
		Repo:     n.repo,
		EndTag:   endTag,
		StartTag: startTag,
		Product:  n.product,
	})
	if err != nil {
		return "", err
	}

	return compose.BuildHTML(compose.Input{
		RepoFull: n.owner + "/" + n.repo,
		Tag:      endTag,
		StartTag: startTag,
		Result:   report.Selection.Result,
		Advisor:  report.Highlights,
	}, n.gen.Compose), nil
}
