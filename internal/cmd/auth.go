package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/secrets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Kibana credentials",
	Long: `Manage Kibana credentials for this tool.

Credentials are stored securely in your system keychain (macOS Keychain,
Windows Credential Manager, or encrypted file on Linux).

Examples:
  kbspaces auth login --url https://kibana.example.com --username elastic
  kbspaces auth login  # Interactive prompts
  kbspaces auth status
  kbspaces auth logout`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store Kibana credentials",
	Long: `Store Kibana URL, username and password in the system keychain.

Missing values are prompted for; the password prompt does not echo.
Once stored, other commands no longer need --url/--username flags or a
password prompt.

Examples:
  kbspaces auth login
  kbspaces auth login --url https://kibana.example.com --username elastic`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored credentials",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current authentication status",
	Long: `Display the stored credentials (password masked).

With --verify the credentials are checked against the Kibana spaces API.

Examples:
  kbspaces auth status
  kbspaces auth status --verify`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var verifyAuth bool

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(authCmd)

	statusCmd.Flags().BoolVar(&verifyAuth, "verify", false, "Verify credentials against the Kibana API")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	url := kibanaURL
	if url == "" {
		url = envGet("KIBANA_URL")
	}
	if url == "" {
		url, err = promptString(ctx, "Kibana URL: ")
		if err != nil {
			return fmt.Errorf("failed to read URL: %w", err)
		}
	}
	if url == "" {
		return fmt.Errorf("Kibana URL is required")
	}

	user := username
	if user == "" {
		user = envGet("KIBANA_USERNAME")
	}
	if user == "" {
		user, err = promptString(ctx, "Username: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}
	if user == "" {
		return fmt.Errorf("username is required")
	}

	password := envGet("KIBANA_PASSWORD")
	if password == "" {
		password, err = promptSecret(ctx, "Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	creds := secrets.Credentials{
		BaseURL:   url,
		Username:  user,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Set(defaultProfile, creds); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	out := stdoutFromContext(ctx)
	fmt.Fprintf(out, "Credentials stored for %s at %s\n", user, url)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	if err := store.Delete(defaultProfile); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	fmt.Fprintln(stdoutFromContext(cmd.Context()), "Credentials cleared")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := stdoutFromContext(ctx)

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	creds, err := store.Get(defaultProfile)
	if err != nil {
		fmt.Fprintln(out, "Not authenticated")
		fmt.Fprintln(out, "Run 'kbspaces auth login' to store credentials.")
		return nil
	}

	fmt.Fprintf(out, "URL: %s\n", creds.BaseURL)
	fmt.Fprintf(out, "Username: %s\n", creds.Username)
	if !creds.CreatedAt.IsZero() {
		fmt.Fprintf(out, "Stored: %s\n", creds.CreatedAt.Format(time.RFC3339))
	}

	if !verifyAuth {
		return nil
	}

	client := newClientFunc(creds.BaseURL, creds.Username, creds.Password, clientOptions(nil)...)
	spaces, err := client.ListSpaces(ctx)
	if err != nil {
		return fmt.Errorf("credential verification failed: %w", err)
	}
	fmt.Fprintf(out, "Verified: OK (%d spaces visible)\n", len(spaces))
	return nil
}
