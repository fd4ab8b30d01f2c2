package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/11bthornton/clustering/api/handlers"
	"github.com/11bthornton/clustering/internal/config"
	"github.com/11bthornton/clustering/internal/ingest"
	"github.com/11bthornton/clustering/pkg/clustering"
)

type emptySource struct{}

func (emptySource) Next() (ingest.Read, ingest.Read, error) {
	return ingest.Read{}, ingest.Read{}, io.EOF
}

func TestRouter(t *testing.T) {
	res, err := ingest.Run(context.Background(), emptySource{}, ingest.Options{})
	require.NoError(t, err)
	cfg := config.Default()
	reporter, err := clustering.NewReporter(&cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(router(handlers.NewClusters(res, reporter)))
	defer srv.Close()

	tests := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/summary", "", http.StatusOK},
		{http.MethodGet, "/api/clusters/umi", "", http.StatusOK},
		{http.MethodGet, "/api/clusters/cdr", "", http.StatusOK},
		{http.MethodGet, "/api/histogram", "", http.StatusOK},
		{http.MethodPost, "/api/translate", `{"sequence": "ATG"}`, http.StatusOK},
		{http.MethodGet, "/api/translate", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/missing", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
