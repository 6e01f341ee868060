package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

func TestRouter_HealthCheck_ReportsOK(t *testing.T) {
	e := echo.New()
	rt := NewRouter(&config.Config{Server: config.ServerConfig{Environment: "test"}}, nil, nil, nil, nil, nil)
	rt.Setup(e)

	srv := httptest.NewServer(e)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_UnwiredHandlers_Return501(t *testing.T) {
	e := echo.New()
	rt := NewRouter(&config.Config{}, nil, nil, nil, nil, nil)
	rt.Setup(e)

	srv := httptest.NewServer(e)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/submissions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestRouter_WiredSubmissionHandler_IsReachable(t *testing.T) {
	e := echo.New()
	submissions := &fakeSubmissionRepo{byHash: map[string]*entities.Submission{}}
	handler := NewSubmissionHandler(submissions, 0, nil)
	rt := NewRouter(&config.Config{}, nil, handler, nil, nil, nil)
	rt.Setup(e)

	srv := httptest.NewServer(e)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/submissions")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
