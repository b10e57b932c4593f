// Package cmd contains all CLI commands for lazybones.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/katapios/lazybones/internal/channel"
	"github.com/katapios/lazybones/internal/channel/mail"
	"github.com/katapios/lazybones/internal/channel/telegram"
	"github.com/katapios/lazybones/internal/credential"
	"github.com/katapios/lazybones/internal/ingest"
	"github.com/katapios/lazybones/internal/model"
	"github.com/katapios/lazybones/internal/reporting"
	"github.com/katapios/lazybones/internal/sharedoc"
	appstatus "github.com/katapios/lazybones/internal/status"
	"github.com/katapios/lazybones/internal/store"
)

var (
	// Version is the current version of lazybones.
	Version = "0.1.0"

	// Global flags
	verbose    bool
	configPath string
	dbPath     string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lazybones",
	Short: "Daily good/bad self-report tracker",
	Long: `lazybones tracks one self-report per day: what went well and what
did not. Reports publish to a messaging channel (telegram or mail) and
merge across devices through a shared plain-text document.

Examples:
  lazybones add --good "went running" --bad "slept late"
  lazybones status
  lazybones publish
  lazybones sync
  lazybones export`,
	Version: Version,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/lazybones/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to sqlite database (default: ~/.config/lazybones/lazybones.db)")
}

// app bundles the wired collaborators behind every subcommand.
type app struct {
	cfg     *model.AppConfig
	store   *store.SQLiteStore
	service *reporting.Service
	engine  *appstatus.Engine
	shared  *ingest.Shared
	log     *logrus.Logger

	// channels, externals, and channelCfgs line up index-for-index:
	// one adapter and pipeline per enabled channel entry.
	channels    []channel.Channel
	externals   []*ingest.External
	channelCfgs []model.ChannelConfig
}

// newApp loads config, opens the store, and wires the service layer.
func newApp() (*app, error) {
	log := newLogger()

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	db := dbPath
	if db == "" {
		db = model.DefaultDBPath()
	}
	if err := os.MkdirAll(filepath.Dir(db), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s, err := store.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}

	channels, channelCfgs, err := buildChannels(cfg, log)
	if err != nil {
		s.Close()
		return nil, err
	}

	var publishCh channel.Channel
	if len(channels) > 0 {
		publishCh = channels[0]
	}

	doc := sharedoc.NewFileDocument(cfg.SharedDocPath)

	externals := make([]*ingest.External, 0, len(channels))
	for _, ch := range channels {
		externals = append(externals, ingest.NewExternal(s, ch, log))
	}

	return &app{
		cfg:         cfg,
		store:       s,
		service:     reporting.NewService(s, publishCh, doc, cfg.AllowReevaluation, log),
		engine:      appstatus.NewEngine(s, cfg.Window),
		shared:      ingest.NewShared(s, doc, log),
		channels:    channels,
		externals:   externals,
		channelCfgs: channelCfgs,
		log:         log,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() error {
	return a.store.Close()
}

// buildChannels constructs an adapter per enabled channel entry,
// pulling secrets from the keyring. The second return value carries
// the config entry behind each adapter, in the same order.
func buildChannels(
	cfg *model.AppConfig,
	log *logrus.Logger,
) ([]channel.Channel, []model.ChannelConfig, error) {
	var channels []channel.Channel
	var used []model.ChannelConfig
	for _, c := range cfg.Channels {
		if !c.Enabled {
			continue
		}
		switch c.Type {
		case string(channel.TypeTelegram):
			token, err := credential.Get(credential.KeyBotToken)
			if err != nil {
				return nil, nil, fmt.Errorf(
					"telegram channel %q: no bot token; run 'lazybones auth set-token': %w",
					c.Name, err,
				)
			}
			channels = append(channels, telegram.NewAdapter(telegram.NewClient(token), c.ChatID))
			used = append(used, c)
		case string(channel.TypeMail):
			password, err := credential.Get(credential.KeyMailPassword)
			if err != nil {
				return nil, nil, fmt.Errorf(
					"mail channel %q: no password; run 'lazybones auth set-mail-password': %w",
					c.Name, err,
				)
			}
			channels = append(channels, mail.NewAdapter(
				c.IMAPHost, c.IMAPPort,
				c.SMTPHost, c.SMTPPort,
				c.Username, password,
				c.UseTLS,
			))
			used = append(used, c)
		default:
			log.WithField("type", c.Type).Warn("unknown channel type, skipping")
		}
	}
	return channels, used, nil
}

// newLogger builds the CLI logger; verbose enables debug output.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}
