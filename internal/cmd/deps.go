package cmd

import (
	"os"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/api"
	"github.com/salmonumbrella/kibana-spaces-cli/internal/secrets"
)

var (
	openSecretsStore = secrets.OpenDefault
	envGet           = os.Getenv
	newClientFunc    = func(baseURL, username, password string, opts ...api.ClientOption) api.KibanaAPI {
		return api.NewClient(baseURL, username, password, opts...)
	}
)
