package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/boirefacile/backend-go/internal/lambdaproxy"
)

type mockRouter struct {
	mock.Mock
}

func (m *mockRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	args := m.Called(r.Method, r.URL.Path)
	w.WriteHeader(args.Int(0))
	_, _ = w.Write([]byte(args.String(1)))
}

func resetService(t *testing.T, init func(ctx context.Context) (*lambdaproxy.Handler, error)) {
	t.Helper()
	original := initHandler
	t.Cleanup(func() {
		initHandler = original
		handler = nil
		setupOnce = sync.Once{}
	})
	initHandler = init
	handler = nil
	setupOnce = sync.Once{}
}

func TestHandleRequest_NotInitialized(t *testing.T) {
	resetService(t, defaultInitHandler)

	resp, err := handleRequest(context.Background(), events.APIGatewayProxyRequest{Path: "/all_bars"})

	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestInitializeService(t *testing.T) {
	router := &mockRouter{}
	router.On("GET", "/all_bars").Return(http.StatusOK, `{"bars":[]}`).Once()

	calls := 0
	resetService(t, func(ctx context.Context) (*lambdaproxy.Handler, error) {
		calls++
		return lambdaproxy.NewHandler(router), nil
	})

	require.NoError(t, InitializeService())
	require.NoError(t, InitializeService())
	assert.Equal(t, 1, calls)

	resp, err := handleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: "GET",
		Path:       "/all_bars",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"bars":[]}`, resp.Body)
	router.AssertExpectations(t)
}

func TestInitializeService_Error(t *testing.T) {
	resetService(t, func(ctx context.Context) (*lambdaproxy.Handler, error) {
		return nil, errors.New("directions cache size must be positive")
	})

	err := InitializeService()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize handler")
	assert.Nil(t, handler)
}
