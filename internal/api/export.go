package api

import (
	"context"
	"fmt"
	"net/http"
)

// ExportRequest is the body of a saved-objects export call. A single "*"
// entry exports every object type.
type ExportRequest struct {
	Type []string `json:"type"`
}

// ExportObjects exports saved objects from the given space and returns the
// raw NDJSON response bytes verbatim. An empty types slice exports all
// object types.
func (c *Client) ExportObjects(ctx context.Context, spaceID string, types []string) ([]byte, error) {
	if len(types) == 0 {
		types = []string{"*"}
	}

	path := fmt.Sprintf("/s/%s/api/saved_objects/_export", spaceID)
	return c.doJSON(ctx, http.MethodPost, path, ExportRequest{Type: types})
}
