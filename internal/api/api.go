package api

import (
	"context"
	"io"
)

// KibanaAPI defines the operations this tool needs from a Kibana instance.
// Commands depend on this interface so tests can substitute a fake client.
type KibanaAPI interface {
	// ListSpaces retrieves all spaces visible to the authenticated user.
	ListSpaces(ctx context.Context) ([]Space, error)

	// GetSpace retrieves a single space by ID, returning NotFoundError
	// if it does not exist.
	GetSpace(ctx context.Context, id string) (*Space, error)

	// CreateSpace creates a new space.
	CreateSpace(ctx context.Context, space Space) error

	// ExportObjects exports saved objects from a space as raw NDJSON.
	// An empty types slice exports all object types.
	ExportObjects(ctx context.Context, spaceID string, types []string) ([]byte, error)

	// ImportObjects uploads an NDJSON export into a space.
	ImportObjects(ctx context.Context, spaceID, filename string, r io.Reader, opts ImportOptions) (*ImportResult, error)
}
