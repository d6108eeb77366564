package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gentleman.v2"
)

func TestBindKeepsRequestWorking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	req := gentleman.New().Request()
	req.Method(http.MethodGet)
	req.URL(srv.URL)
	Bind(context.Background(), req)

	resp, err := req.Send()
	require.NoError(t, err)
	defer resp.Close()
	assert.True(t, resp.Ok)
	assert.Equal(t, `{"ok":true}`, resp.String())
}

func TestBindCancels(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := gentleman.New().Request()
	req.Method(http.MethodGet)
	req.URL(srv.URL)
	Bind(ctx, req)

	_, err := req.Send()
	assert.Error(t, err)
}
