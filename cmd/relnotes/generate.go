package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yourorg/relnotes/internal/generator"
	"github.com/yourorg/relnotes/internal/notes"
	"github.com/yourorg/relnotes/internal/telegram"
)

func generateCmd() *cobra.Command {
	var (
		owner     string
		repo      string
		output    string
		announce  bool
		noCleanup bool
	)

	cmd := &cobra.Command{
		Use:   "generate [endTag] [startTag]",
		Short: "Generate release notes for the pull requests merged up to endTag",
		Long: `Generate release notes for the pull requests merged after startTag
(or the release before endTag) and up to endTag. The notes are written as
Markdown, PDF and an email draft into the output directory.

Tags fall back to END_VERSION and START_VERSION.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if owner != "" {
				cfg.GithubOwner = owner
			}
			if repo != "" {
				cfg.GithubRepo = repo
			}
			if output != "" {
				cfg.OutputDir = output
			}
			if noCleanup {
				cfg.CleanupOutput = false
			}

			endTag, startTag := cfg.EndVersion, cfg.StartVersion
			if len(args) > 0 {
				endTag = args[0]
			}
			if len(args) > 1 {
				startTag = args[1]
			}

			if err := cfg.ValidateGenerate(); err != nil {
				return err
			}
			if endTag == "" {
				return errors.New("end tag is required: pass it as an argument or set END_VERSION")
			}
			if announce && cfg.TelegramToken == "" {
				return errors.New("--announce requires TELEGRAM_BOT_TOKEN")
			}

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			var sender *telegram.Sender
			if announce {
				if sender, err = telegram.NewSender(cfg.TelegramToken); err != nil {
					return err
				}
				if cfg.DefaultChatID != 0 {
					if err := a.store.AddChat(cmd.Context(), cfg.DefaultChatID, "Default Chat"); err != nil {
						logger.Warn("Failed to add default chat", "chat_id", cfg.DefaultChatID, "error", err)
					}
				}
			}

			gen, err := a.generator(sender)
			if err != nil {
				return err
			}

			report, err := gen.Generate(cmd.Context(), generator.Request{
				Owner:    cfg.GithubOwner,
				Repo:     cfg.GithubRepo,
				EndTag:   endTag,
				StartTag: startTag,
				Product:  cfg.Product(),
				Announce: announce,
			})
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), endTag, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Repository owner (overrides GITHUB_OWNER)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository name (overrides GITHUB_REPO)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (overrides OUTPUT_DIR)")
	cmd.Flags().BoolVar(&announce, "announce", false, "Announce the notes to every registered Telegram chat")
	cmd.Flags().BoolVar(&noCleanup, "no-cleanup", false, "Keep release notes from earlier runs in the output directory")

	return cmd
}

func printReport(w io.Writer, endTag string, report *generator.Report) {
	res := report.Selection.Result
	fmt.Fprintf(w, "Release notes for %s: %d pull requests\n", endTag, res.Total())
	for _, c := range notes.Categories {
		fmt.Fprintf(w, "  %-14s %d\n", c.Title()+":", len(res.Get(c)))
	}
	fmt.Fprintf(w, "Markdown: %s\nPDF:      %s\nEmail:    %s\n", report.Files.Markdown, report.Files.PDF, report.Files.Email)
	if report.Run != nil {
		fmt.Fprintf(w, "Run ID:   %s\n", report.Run.ID)
	}
	if report.Announced > 0 {
		fmt.Fprintf(w, "Announced to %d chats\n", report.Announced)
	}
}
