package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/api"
	"github.com/salmonumbrella/kibana-spaces-cli/internal/secrets"
)

func TestAuthLogin_StoresCredentials(t *testing.T) {
	h := newHarness(t, &fakeClient{})

	if err := h.run(t, "auth", "login"); err != nil {
		t.Fatalf("execute: %v\nstderr: %s", err, h.err.String())
	}

	creds, err := h.store.Get(defaultProfile)
	if err != nil {
		t.Fatalf("credentials not stored: %v", err)
	}
	if creds.BaseURL != "http://kibana.test:5601" || creds.Username != "elastic" {
		t.Errorf("stored creds = %+v", creds)
	}
	if creds.Password != "changeme" {
		t.Errorf("password = %q, want value from KIBANA_PASSWORD", creds.Password)
	}
	if creds.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestAuthStatus_NotAuthenticated(t *testing.T) {
	h := newHarness(t, &fakeClient{})

	if err := h.run(t, "auth", "status"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(h.out.String(), "Not authenticated") {
		t.Errorf("output = %q", h.out.String())
	}
}

func TestAuthStatus_Verify(t *testing.T) {
	listCalled := false
	fake := &fakeClient{
		ListSpacesFunc: func(ctx context.Context) ([]api.Space, error) {
			listCalled = true
			return testSpaces, nil
		},
	}
	h := newHarness(t, fake)
	h.store.Set(defaultProfile, secrets.Credentials{
		BaseURL:  "http://kibana.test:5601",
		Username: "elastic",
		Password: "changeme",
	})

	if err := h.run(t, "auth", "status", "--verify"); err != nil {
		t.Fatalf("execute: %v\nstderr: %s", err, h.err.String())
	}

	if !listCalled {
		t.Error("--verify should call the spaces API")
	}
	out := h.out.String()
	if !strings.Contains(out, "elastic") || !strings.Contains(out, "Verified: OK") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "changeme") {
		t.Error("status must not print the password")
	}
}

func TestAuthLogout_ClearsCredentials(t *testing.T) {
	h := newHarness(t, &fakeClient{})
	h.store.Set(defaultProfile, secrets.Credentials{Username: "elastic"})

	if err := h.run(t, "auth", "logout"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if _, err := h.store.Get(defaultProfile); err != secrets.ErrNotFound {
		t.Errorf("credentials still present, err = %v", err)
	}
}
