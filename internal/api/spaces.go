package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Space is Kibana's tenant/namespace concept. Saved objects belong to
// exactly one space. The server is the source of truth; this tool only
// reads and, on import, creates spaces.
type Space struct {
	ID               string   `json:"id"`
	Name             string   `json:"name,omitempty"`
	Description      string   `json:"description,omitempty"`
	Color            string   `json:"color,omitempty"`
	Initials         string   `json:"initials,omitempty"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	DisabledFeatures []string `json:"disabledFeatures,omitempty"`
	Reserved         bool     `json:"_reserved,omitempty"`
}

// InvalidSpacesError reports every requested space ID that the server
// does not know about.
type InvalidSpacesError struct {
	IDs []string
}

func (e InvalidSpacesError) Error() string {
	return fmt.Sprintf("unknown space id(s): %s", strings.Join(e.IDs, ", "))
}

// ListSpaces retrieves all spaces from Kibana
func (c *Client) ListSpaces(ctx context.Context) ([]Space, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/api/spaces/space", nil)
	if err != nil {
		return nil, err
	}

	var spaces []Space
	if err := json.Unmarshal(resp, &spaces); err != nil {
		return nil, fmt.Errorf("failed to parse spaces response: %w", err)
	}

	return spaces, nil
}

// GetSpace retrieves a single space by ID
func (c *Client) GetSpace(ctx context.Context, id string) (*Space, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/api/spaces/space/"+id, nil)
	if err != nil {
		return nil, err
	}

	var space Space
	if err := json.Unmarshal(resp, &space); err != nil {
		return nil, fmt.Errorf("failed to parse space response: %w", err)
	}

	return &space, nil
}

// CreateSpace creates a new space
func (c *Client) CreateSpace(ctx context.Context, space Space) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/api/spaces/space", space)
	return err
}

// UnknownSpaces returns the requested IDs that are absent from the known
// space list, sorted for stable reporting. An empty result means the
// selection is valid.
func UnknownSpaces(requested []string, known []Space) []string {
	ids := make(map[string]struct{}, len(known))
	for _, s := range known {
		ids[s.ID] = struct{}{}
	}

	var unknown []string
	for _, id := range requested {
		if _, ok := ids[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// SelectSpaces resolves the user's space selection against the server's
// space directory. An empty selection means all known spaces. Any unknown
// ID makes the whole selection invalid.
func SelectSpaces(requested []string, known []Space) ([]Space, error) {
	if len(requested) == 0 {
		return known, nil
	}

	if unknown := UnknownSpaces(requested, known); len(unknown) > 0 {
		return nil, InvalidSpacesError{IDs: unknown}
	}

	byID := make(map[string]Space, len(known))
	for _, s := range known {
		byID[s.ID] = s
	}

	selected := make([]Space, 0, len(requested))
	for _, id := range requested {
		selected = append(selected, byID[id])
	}
	return selected, nil
}
