package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigFile is read from the working directory when present
const DefaultConfigFile = "relnotes.yaml"

// RepoSpec names a repository to watch
type RepoSpec struct {
	Owner            string
	Name             string
	TrackPrereleases bool
}

func (r RepoSpec) String() string {
	return r.Owner + "/" + r.Name
}

type Config struct {
	GithubToken      string
	GithubOwner      string
	GithubRepo       string
	GithubAPIURL     string
	GithubMaxRetries int

	EndVersion   string
	StartVersion string

	OutputDir     string
	CleanupOutput bool
	AssetsDir     string
	EmailTemplate string
	EmailFrom     string
	EmailTo       string
	EmailCC       string
	ProductName   string
	TimeZone      string

	TelegramToken  string
	DefaultChatID  int64
	AllowedUserIDs []int64

	IntervalMinutes   int
	MaxReleaseAgeDays int
	WatchRepositories []RepoSpec
	DBPath            string

	AdvisorEnabled   bool
	OpenRouterAPIKey string
	OpenRouterModel  string

	LogLevel string
	Env      string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github_api_url", "https://api.github.com")
	v.SetDefault("github_max_retries", 0)
	v.SetDefault("output_dir", "output")
	v.SetDefault("cleanup_output", true)
	v.SetDefault("assets_dir", "assets")
	v.SetDefault("email_template", "Template/email-template.eml")
	v.SetDefault("email_from", "release-bot@example.com")
	v.SetDefault("email_to", "team@example.com")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("poll_interval_minutes", 10)
	v.SetDefault("max_release_age_days", 30)
	v.SetDefault("db_path", "./relnotes.db")
	v.SetDefault("openrouter_model", "anthropic/claude-3-haiku")
	v.SetDefault("log_level", "info")
}

// Load reads configuration from defaults, the optional YAML file at path
// (RELNOTES_CONFIG or relnotes.yaml when path is empty) and environment
// variables, in increasing priority.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("RELNOTES_CONFIG")
	}
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	repos, err := parseRepoSpecs(stringList(v, "watch_repositories"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		GithubToken:       v.GetString("github_token"),
		GithubOwner:       v.GetString("github_owner"),
		GithubRepo:        v.GetString("github_repo"),
		GithubAPIURL:      v.GetString("github_api_url"),
		GithubMaxRetries:  v.GetInt("github_max_retries"),
		EndVersion:        v.GetString("end_version"),
		StartVersion:      v.GetString("start_version"),
		OutputDir:         v.GetString("output_dir"),
		CleanupOutput:     v.GetBool("cleanup_output"),
		AssetsDir:         v.GetString("assets_dir"),
		EmailTemplate:     v.GetString("email_template"),
		EmailFrom:         v.GetString("email_from"),
		EmailTo:           v.GetString("email_to"),
		EmailCC:           v.GetString("email_cc"),
		ProductName:       v.GetString("product_name"),
		TimeZone:          v.GetString("timezone"),
		TelegramToken:     v.GetString("telegram_bot_token"),
		DefaultChatID:     v.GetInt64("default_chat_id"),
		AllowedUserIDs:    parseUserIDs(stringList(v, "allowed_user_ids")),
		IntervalMinutes:   v.GetInt("poll_interval_minutes"),
		MaxReleaseAgeDays: v.GetInt("max_release_age_days"),
		WatchRepositories: repos,
		DBPath:            v.GetString("db_path"),
		AdvisorEnabled:    v.GetBool("advisor_enabled"),
		OpenRouterAPIKey:  v.GetString("openrouter_api_key"),
		OpenRouterModel:   v.GetString("openrouter_model"),
		LogLevel:          v.GetString("log_level"),
		Env:               v.GetString("env"),
	}

	return cfg, nil
}

// Product returns the product name used in emails, defaulting to the repository name
func (c *Config) Product() string {
	if c.ProductName != "" {
		return c.ProductName
	}
	return c.GithubRepo
}

// ValidateGenerate checks the settings needed to generate notes for one repository
func (c *Config) ValidateGenerate() error {
	var errs []error
	if c.GithubToken == "" {
		errs = append(errs, errors.New("GITHUB_TOKEN is not set"))
	}
	if c.GithubOwner == "" {
		errs = append(errs, errors.New("GITHUB_OWNER is not set"))
	}
	if c.GithubRepo == "" {
		errs = append(errs, errors.New("GITHUB_REPO is not set"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("OUTPUT_DIR is empty"))
	}
	return errors.Join(errs...)
}

// ValidateWatch checks the settings needed by watch mode
func (c *Config) ValidateWatch() error {
	var errs []error
	if c.GithubToken == "" {
		errs = append(errs, errors.New("GITHUB_TOKEN is not set"))
	}
	if c.IntervalMinutes <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL_MINUTES must be positive, got %d", c.IntervalMinutes))
	}
	if c.AdvisorEnabled && c.OpenRouterAPIKey == "" {
		errs = append(errs, errors.New("ADVISOR_ENABLED requires OPENROUTER_API_KEY"))
	}
	if len(c.AllowedUserIDs) > 0 && c.TelegramToken == "" {
		errs = append(errs, errors.New("ALLOWED_USER_IDS requires TELEGRAM_BOT_TOKEN"))
	}
	return errors.Join(errs...)
}

// stringList accepts either a YAML list or a comma separated string
func stringList(v *viper.Viper, key string) []string {
	var out []string
	switch val := v.Get(key).(type) {
	case nil:
		return nil
	case []any:
		for _, item := range val {
			out = append(out, fmt.Sprint(item))
		}
	case []string:
		out = val
	default:
		out = strings.Split(fmt.Sprint(val), ",")
	}

	var cleaned []string
	for _, s := range out {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

func parseUserIDs(parts []string) []int64 {
	var ids []int64
	for _, part := range parts {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil && id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// parseRepoSpecs parses entries of the form owner/repo or owner/repo:pre
func parseRepoSpecs(parts []string) ([]RepoSpec, error) {
	var specs []RepoSpec
	for _, part := range parts {
		name, flag, hasFlag := strings.Cut(part, ":")
		owner, repo, ok := strings.Cut(name, "/")
		if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
			return nil, fmt.Errorf("invalid repository %q, want owner/repo[:pre]", part)
		}
		if hasFlag && flag != "pre" {
			return nil, fmt.Errorf("invalid repository flag %q in %q", flag, part)
		}
		specs = append(specs, RepoSpec{Owner: owner, Name: repo, TrackPrereleases: hasFlag})
	}
	return specs, nil
}
