package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// ImportOptions control conflict handling on saved-object import.
// CreateNewCopies is mutually exclusive with the other two.
type ImportOptions struct {
	CreateNewCopies   bool
	Overwrite         bool
	CompatibilityMode bool
}

// Validate checks the mutual exclusivity constraint
func (o ImportOptions) Validate() error {
	if o.CreateNewCopies && (o.Overwrite || o.CompatibilityMode) {
		return ValidationError{Message: "createNewCopies cannot be combined with overwrite or compatibilityMode"}
	}
	return nil
}

func (o ImportOptions) query() url.Values {
	q := url.Values{}
	if o.CreateNewCopies {
		q.Set("createNewCopies", "true")
		return q
	}
	if o.Overwrite {
		q.Set("overwrite", "true")
	}
	if o.CompatibilityMode {
		q.Set("compatibilityMode", "true")
	}
	return q
}

// ImportResult is Kibana's response to a saved-objects import
type ImportResult struct {
	Success      bool              `json:"success"`
	SuccessCount int               `json:"successCount"`
	Errors       []json.RawMessage `json:"errors,omitempty"`
}

// ImportObjects uploads NDJSON content into the given space as a multipart
// file upload.
func (c *Client) ImportObjects(ctx context.Context, spaceID, filename string, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build import request: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build import request: %w", err)
	}

	path := fmt.Sprintf("/s/%s/api/saved_objects/_import", spaceID)
	if q := opts.query().Encode(); q != "" {
		path += "?" + q
	}

	resp, err := c.do(ctx, http.MethodPost, path, mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}

	var result ImportResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to parse import response: %w", err)
	}

	return &result, nil
}
