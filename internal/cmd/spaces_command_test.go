package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/api"
)

func TestSpacesListCommand_JSON(t *testing.T) {
	fake := &fakeClient{
		ListSpacesFunc: func(ctx context.Context) ([]api.Space, error) {
			return testSpaces, nil
		},
	}
	h := newHarness(t, fake)

	if err := h.run(t, "--output", "json", "spaces", "list"); err != nil {
		t.Fatalf("execute: %v\nstderr: %s", err, h.err.String())
	}

	var got []api.Space
	if err := json.Unmarshal(h.out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\noutput: %s", err, h.out.String())
	}
	if len(got) != 2 || got[1].ID != "marketing" {
		t.Errorf("got = %+v", got)
	}
}

func TestSpacesListCommand_Query(t *testing.T) {
	fake := &fakeClient{
		ListSpacesFunc: func(ctx context.Context) ([]api.Space, error) {
			return testSpaces, nil
		},
	}
	h := newHarness(t, fake)

	if err := h.run(t, "--output", "json", "--query", ".[].id", "spaces", "list"); err != nil {
		t.Fatalf("execute: %v\nstderr: %s", err, h.err.String())
	}

	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	if len(lines) != 2 || lines[0] != `"default"` || lines[1] != `"marketing"` {
		t.Errorf("query output = %q", h.out.String())
	}
}

func TestSpacesListCommand_Table(t *testing.T) {
	fake := &fakeClient{
		ListSpacesFunc: func(ctx context.Context) ([]api.Space, error) {
			return testSpaces, nil
		},
	}
	h := newHarness(t, fake)

	if err := h.run(t, "--output", "table", "spaces", "list"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	out := h.out.String()
	if !strings.Contains(out, "ID") || !strings.Contains(out, "marketing") {
		t.Errorf("table output = %q", out)
	}
	if !strings.Contains(out, "(reserved)") {
		t.Errorf("reserved space should be marked, output = %q", out)
	}
}
