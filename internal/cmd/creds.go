package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/config"
	"github.com/salmonumbrella/kibana-spaces-cli/internal/secrets"
)

// defaultProfile is the profile name used for stored credentials
const defaultProfile = "default"

// kibanaCreds is a resolved set of connection credentials
type kibanaCreds struct {
	BaseURL  string
	Username string
	Password string
}

// resolveCredentials resolves URL, username and password with consistent
// precedence: flag > environment > config file > keyring > interactive
// prompt. The password prompt never echoes.
func resolveCredentials(cmd *cobra.Command, cfg *config.Config) (kibanaCreds, error) {
	ctx := cmd.Context()

	var stored secrets.Credentials
	var haveStored bool
	if store, err := openSecretsStore(); err == nil {
		if creds, err := store.Get(defaultProfile); err == nil {
			stored = creds
			haveStored = true
		} else if !errors.Is(err, secrets.ErrNotFound) {
			log := loggerFromContext(ctx)
			log.Debug().Err(err).Msg("credential store unavailable")
		}
	}

	url := kibanaURL
	if url == "" {
		url = envGet("KIBANA_URL")
	}
	if url == "" && cfg != nil {
		url = cfg.BaseURL
	}
	if url == "" && haveStored {
		url = stored.BaseURL
	}
	if url == "" {
		return kibanaCreds{}, fmt.Errorf("Kibana URL required. Set KIBANA_URL or use --url flag.")
	}

	user := username
	if user == "" {
		user = envGet("KIBANA_USERNAME")
	}
	if user == "" && cfg != nil {
		user = cfg.Username
	}
	if user == "" && haveStored {
		user = stored.Username
	}
	if user == "" {
		return kibanaCreds{}, fmt.Errorf("Username required. Set KIBANA_USERNAME or use --username flag.")
	}

	password, err := resolvePassword(ctx, user, stored, haveStored)
	if err != nil {
		return kibanaCreds{}, err
	}

	return kibanaCreds{BaseURL: url, Username: user, Password: password}, nil
}

func resolvePassword(ctx context.Context, user string, stored secrets.Credentials, haveStored bool) (string, error) {
	if passwordStdin {
		reader := bufio.NewReader(stdinFromContext(ctx))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password from stdin: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	if pw := envGet("KIBANA_PASSWORD"); pw != "" {
		return pw, nil
	}

	// Stored credentials only apply to the user they were saved for
	if haveStored && stored.Username == user && stored.Password != "" {
		return stored.Password, nil
	}

	password, err := promptSecret(ctx, fmt.Sprintf("Password for %s: ", user))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}

// promptString prompts for a string input
func promptString(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(stderrFromContext(ctx), prompt)
	reader := bufio.NewReader(stdinFromContext(ctx))
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// promptSecret prompts for a secret input (no echo)
func promptSecret(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(stderrFromContext(ctx), prompt)

	in := stdinFromContext(ctx)
	if file, ok := in.(*os.File); ok {
		if term.IsTerminal(int(file.Fd())) {
			password, err := term.ReadPassword(int(file.Fd()))
			fmt.Fprintln(stderrFromContext(ctx))
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(string(password)), nil
		}
	}

	// Fall back to regular input for non-terminal (e.g., piped input)
	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
