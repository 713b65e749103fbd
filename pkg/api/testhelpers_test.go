package api

import (
	"testing"
	"time"

	"github.com/blogdeck/blogdeck/cli/pkg/api/apitest"
	"github.com/blogdeck/blogdeck/cli/pkg/client"
)

func newTestClient(t *testing.T) (*Client, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t)
	return New(client.New(client.Options{BaseURL: srv.BaseURL(), Timeout: 5 * time.Second})), srv
}
