package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/api"
	"github.com/salmonumbrella/kibana-spaces-cli/internal/output"
)

func TestValidateErrorFormat(t *testing.T) {
	for _, valid := range []string{"", "auto", "text", "json", "yaml", "JSON "} {
		if err := validateErrorFormat(valid); err != nil {
			t.Errorf("validateErrorFormat(%q) = %v, want nil", valid, err)
		}
	}
	if err := validateErrorFormat("xml"); err == nil {
		t.Error("validateErrorFormat(xml) should fail")
	}
}

func TestEffectiveErrorFormat_FollowsOutputFormat(t *testing.T) {
	tests := []struct {
		outputFormat output.Format
		errorFormat  string
		want         string
	}{
		{output.FormatText, "auto", "text"},
		{output.FormatJSON, "auto", "json"},
		{output.FormatNDJSON, "", "json"},
		{output.FormatYAML, "auto", "yaml"},
		{output.FormatJSON, "text", "text"},
	}
	for _, tt := range tests {
		ctx := output.WithFormat(context.Background(), tt.outputFormat)
		ctx = WithErrorFormat(ctx, tt.errorFormat)
		if got := effectiveErrorFormat(ctx); got != tt.want {
			t.Errorf("effectiveErrorFormat(%s, %q) = %q, want %q",
				tt.outputFormat, tt.errorFormat, got, tt.want)
		}
	}
}

func TestPrintCommandError_JSONEnvelope(t *testing.T) {
	errBuf := &bytes.Buffer{}
	ctx := withIO(context.Background(), nil, nil, errBuf)
	ctx = output.WithFormat(ctx, output.FormatJSON)
	ctx = WithErrorFormat(ctx, "auto")

	printCommandError(ctx, api.InvalidSpacesError{IDs: []string{"bogus", "worse"}})

	var envelope map[string]map[string]interface{}
	if err := json.Unmarshal(errBuf.Bytes(), &envelope); err != nil {
		t.Fatalf("stderr is not JSON: %v\noutput: %s", err, errBuf.String())
	}

	errMap := envelope["error"]
	if errMap["type"] != "invalid_spaces" || errMap["category"] != "user" {
		t.Errorf("envelope = %v", errMap)
	}
	spaces, _ := errMap["spaces"].([]interface{})
	if len(spaces) != 2 {
		t.Errorf("spaces = %v, want both offenders", errMap["spaces"])
	}
}

func TestBuildErrorEnvelope_StatusError(t *testing.T) {
	envelope := buildErrorEnvelope(api.StatusError{StatusCode: 500, Body: "boom"})
	errMap := envelope["error"].(map[string]interface{})
	if errMap["type"] != "http_status" || errMap["status"] != 500 {
		t.Errorf("envelope = %v", errMap)
	}
	if errMap["category"] != "system" {
		t.Errorf("category = %v, want system", errMap["category"])
	}
}
