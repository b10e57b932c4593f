package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/katapios/lazybones/internal/channel"
	"github.com/katapios/lazybones/internal/credential"
	"github.com/katapios/lazybones/internal/model"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage channel credentials",
	Long: `Store channel secrets in the system keyring. Secrets never go into
the config file.`,
}

var setTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Store the telegram bot token",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readSecret("Bot token: ")
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("empty token")
		}
		if err := credential.Set(credential.KeyBotToken, token); err != nil {
			return fmt.Errorf("storing token: %w", err)
		}
		fmt.Println("token stored")
		return verifyStored(channel.TypeTelegram)
	},
}

var setMailPasswordCmd = &cobra.Command{
	Use:   "set-mail-password",
	Short: "Store the mail account password",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readSecret("Mail password: ")
		if err != nil {
			return err
		}
		if password == "" {
			return fmt.Errorf("empty password")
		}
		if err := credential.Set(credential.KeyMailPassword, password); err != nil {
			return fmt.Errorf("storing password: %w", err)
		}
		fmt.Println("password stored")
		return verifyStored(channel.TypeMail)
	},
}

var clearAuthCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, key := range []string{credential.KeyBotToken, credential.KeyMailPassword} {
			if err := credential.Delete(key); err != nil {
				return fmt.Errorf("removing %s: %w", key, err)
			}
		}
		fmt.Println("credentials removed")
		return nil
	},
}

// verifyStored runs a connection check against the channels of the
// given type using the freshly stored secret. Entries of other types
// are left out so an unrelated missing secret cannot fail the check.
func verifyStored(typ channel.ChannelType) error {
	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	sub := *cfg
	sub.Channels = nil
	for _, c := range cfg.Channels {
		if c.Type == string(typ) {
			sub.Channels = append(sub.Channels, c)
		}
	}

	channels, _, err := buildChannels(&sub, newLogger())
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		fmt.Printf("no enabled %s channel configured, skipping check\n", typ)
		return nil
	}
	return checkChannels(context.Background(), os.Stdout, channels)
}

// readSecret prompts on stderr and reads without echo when stdin is a
// terminal; piped input falls back to a plain line read.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	authCmd.AddCommand(setTokenCmd, setMailPasswordCmd, clearAuthCmd)
	rootCmd.AddCommand(authCmd)
}
