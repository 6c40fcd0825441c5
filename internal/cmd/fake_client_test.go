package cmd

import (
	"context"
	"io"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/api"
)

type fakeClient struct {
	ListSpacesFunc    func(ctx context.Context) ([]api.Space, error)
	GetSpaceFunc      func(ctx context.Context, id string) (*api.Space, error)
	CreateSpaceFunc   func(ctx context.Context, space api.Space) error
	ExportObjectsFunc func(ctx context.Context, spaceID string, types []string) ([]byte, error)
	ImportObjectsFunc func(ctx context.Context, spaceID, filename string, r io.Reader, opts api.ImportOptions) (*api.ImportResult, error)
}

func (f *fakeClient) ListSpaces(ctx context.Context) ([]api.Space, error) {
	if f.ListSpacesFunc != nil {
		return f.ListSpacesFunc(ctx)
	}
	return nil, nil
}

func (f *fakeClient) GetSpace(ctx context.Context, id string) (*api.Space, error) {
	if f.GetSpaceFunc != nil {
		return f.GetSpaceFunc(ctx, id)
	}
	return &api.Space{ID: id}, nil
}

func (f *fakeClient) CreateSpace(ctx context.Context, space api.Space) error {
	if f.CreateSpaceFunc != nil {
		return f.CreateSpaceFunc(ctx, space)
	}
	return nil
}

func (f *fakeClient) ExportObjects(ctx context.Context, spaceID string, types []string) ([]byte, error) {
	if f.ExportObjectsFunc != nil {
		return f.ExportObjectsFunc(ctx, spaceID, types)
	}
	return nil, nil
}

func (f *fakeClient) ImportObjects(ctx context.Context, spaceID, filename string, r io.Reader, opts api.ImportOptions) (*api.ImportResult, error) {
	if f.ImportObjectsFunc != nil {
		return f.ImportObjectsFunc(ctx, spaceID, filename, r, opts)
	}
	return &api.ImportResult{Success: true}, nil
}

var _ api.KibanaAPI = (*fakeClient)(nil)
