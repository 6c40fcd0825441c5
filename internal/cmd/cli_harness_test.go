package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/api"
	"github.com/salmonumbrella/kibana-spaces-cli/internal/secrets"
)

// fakeStore is a secrets.Store with nothing in it
type fakeStore struct {
	creds map[string]secrets.Credentials
}

func (s *fakeStore) Get(profile string) (secrets.Credentials, error) {
	if s.creds != nil {
		if c, ok := s.creds[profile]; ok {
			return c, nil
		}
	}
	return secrets.Credentials{}, secrets.ErrNotFound
}

func (s *fakeStore) Set(profile string, creds secrets.Credentials) error {
	if s.creds == nil {
		s.creds = make(map[string]secrets.Credentials)
	}
	s.creds[profile] = creds
	return nil
}

func (s *fakeStore) Delete(profile string) error {
	delete(s.creds, profile)
	return nil
}

// harness wires the CLI up with buffers, a fake client, an empty credential
// store, and an isolated config file, returning a run function and the
// captured output buffers.
type harness struct {
	out   *bytes.Buffer
	err   *bytes.Buffer
	in    *bytes.Buffer
	store *fakeStore
}

func newHarness(t *testing.T, fake api.KibanaAPI) *harness {
	t.Helper()

	restore := snapshotCLIState()
	t.Cleanup(restore)

	h := &harness{
		out:   &bytes.Buffer{},
		err:   &bytes.Buffer{},
		in:    &bytes.Buffer{},
		store: &fakeStore{},
	}

	rootCmd.SetOut(h.out)
	rootCmd.SetErr(h.err)
	rootCmd.SetIn(h.in)
	rootCmd.SetContext(withIO(context.Background(), h.in, h.out, h.err))

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	configFile = cfgPath

	prevEnvGet := envGet
	envGet = func(key string) string {
		if key == "KIBANA_PASSWORD" {
			return "changeme"
		}
		return ""
	}
	t.Cleanup(func() { envGet = prevEnvGet })

	prevStore := openSecretsStore
	openSecretsStore = func() (secrets.Store, error) {
		return h.store, nil
	}
	t.Cleanup(func() { openSecretsStore = prevStore })

	prevNewClient := newClientFunc
	newClientFunc = func(baseURL, username, password string, opts ...api.ClientOption) api.KibanaAPI {
		return fake
	}
	t.Cleanup(func() { newClientFunc = prevNewClient })

	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append([]string{"--config", configFile, "--url", "http://kibana.test:5601", "--username", "elastic"}, args...))
	return rootCmd.Execute()
}

func snapshotCLIState() func() {
	prevURL := kibanaURL
	prevUsername := username
	prevPasswordStdin := passwordStdin
	prevInsecure := insecureTLS
	prevTimeout := timeoutFlag
	prevOutputFmt := outputFmt
	prevOutputType := outputType
	prevDebug := debug
	prevConfig := configFile
	prevQueryExpr := queryExpr
	prevQueryFile := queryFile
	prevErrorFmt := errorFmt
	prevQuiet := quietFlag
	prevClient := client

	prevExportSpaces := exportSpaces
	prevExportTypes := exportTypes
	prevExportNoSplit := exportNoSplit
	prevImportCreateNew := importCreateNewCopies
	prevImportOverwrite := importOverwrite
	prevImportCompat := importCompatibilityMode
	prevVerify := verifyAuth

	prevOut := rootCmd.OutOrStdout()
	prevErr := rootCmd.ErrOrStderr()
	prevIn := rootCmd.InOrStdin()
	prevCtx := rootCmd.Context()

	return func() {
		kibanaURL = prevURL
		username = prevUsername
		passwordStdin = prevPasswordStdin
		insecureTLS = prevInsecure
		timeoutFlag = prevTimeout
		outputFmt = prevOutputFmt
		outputType = prevOutputType
		debug = prevDebug
		configFile = prevConfig
		queryExpr = prevQueryExpr
		queryFile = prevQueryFile
		errorFmt = prevErrorFmt
		quietFlag = prevQuiet
		client = prevClient

		exportSpaces = prevExportSpaces
		exportTypes = prevExportTypes
		exportNoSplit = prevExportNoSplit
		importCreateNewCopies = prevImportCreateNew
		importOverwrite = prevImportOverwrite
		importCompatibilityMode = prevImportCompat
		verifyAuth = prevVerify

		rootCmd.SetOut(prevOut)
		rootCmd.SetErr(prevErr)
		rootCmd.SetIn(prevIn)
		rootCmd.SetContext(prevCtx)
		rootCmd.SetArgs(nil)
		resetFlagChanges(rootCmd)
		for _, sub := range rootCmd.Commands() {
			resetFlagChanges(sub)
			for _, subsub := range sub.Commands() {
				resetFlagChanges(subsub)
			}
		}
	}
}

func resetFlagChanges(cmdFlagSet interface {
	Flags() *pflag.FlagSet
	PersistentFlags() *pflag.FlagSet
	InheritedFlags() *pflag.FlagSet
},
) {
	if cmdFlagSet == nil {
		return
	}
	cmdFlagSet.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
	cmdFlagSet.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
	cmdFlagSet.InheritedFlags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
}
