package lambdaproxy

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method    string
	path      string
	query     map[string][]string
	body      string
	header    http.Header
}

func echoHandler(captured *capturedRequest) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*captured = capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			body:   string(body),
			header: r.Header,
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Accept")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
}

func TestHandler_HandleRequest(t *testing.T) {
	tests := []struct {
		name      string
		event     events.APIGatewayProxyRequest
		wantReq   capturedRequest
	}{
		{
			name: "post with json body",
			event: events.APIGatewayProxyRequest{
				HTTPMethod: "POST",
				Path:       "/closest_bars",
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       `{"lat": 48.85, "lon": 2.35}`,
			},
			wantReq: capturedRequest{
				method: "POST",
				path:   "/closest_bars",
				query:  map[string][]string{},
				body:   `{"lat": 48.85, "lon": 2.35}`,
			},
		},
		{
			name: "query string parameters",
			event: events.APIGatewayProxyRequest{
				HTTPMethod:            "GET",
				Path:                  "/get_participants",
				QueryStringParameters: map[string]string{"id": "session 1"},
			},
			wantReq: capturedRequest{
				method: "GET",
				path:   "/get_participants",
				query:  map[string][]string{"id": {"session 1"}},
			},
		},
		{
			name: "multi value query wins",
			event: events.APIGatewayProxyRequest{
				Path:                            "/get_participants",
				QueryStringParameters:           map[string]string{"id": "b"},
				MultiValueQueryStringParameters: map[string][]string{"id": {"a", "b"}},
			},
			wantReq: capturedRequest{
				method: "GET",
				path:   "/get_participants",
				query:  map[string][]string{"id": {"a", "b"}},
			},
		},
		{
			name: "base64 body",
			event: events.APIGatewayProxyRequest{
				HTTPMethod:      "POST",
				Path:            "/save_participants",
				Body:            base64.StdEncoding.EncodeToString([]byte(`{"sessionId":"s1"}`)),
				IsBase64Encoded: true,
			},
			wantReq: capturedRequest{
				method: "POST",
				path:   "/save_participants",
				query:  map[string][]string{},
				body:   `{"sessionId":"s1"}`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got capturedRequest
			h := NewHandler(echoHandler(&got))

			resp, err := h.HandleRequest(context.Background(), tt.event)
			require.NoError(t, err)

			assert.Equal(t, http.StatusCreated, resp.StatusCode)
			assert.Equal(t, `{"ok":true}`, resp.Body)
			assert.Equal(t, "application/json", resp.Headers["Content-Type"])
			assert.Equal(t, []string{"Origin", "Accept"}, resp.MultiValueHeaders["Vary"])

			assert.Equal(t, tt.wantReq.method, got.method)
			assert.Equal(t, tt.wantReq.path, got.path)
			assert.Equal(t, tt.wantReq.query, got.query)
			assert.Equal(t, tt.wantReq.body, got.body)
		})
	}
}

func TestHandler_RequestIDFromGateway(t *testing.T) {
	var got capturedRequest
	h := NewHandler(echoHandler(&got))

	_, err := h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		Path: "/all_bars",
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: "gw-123",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "gw-123", got.header.Get("X-Request-Id"))
}

func TestHandler_InvalidBase64(t *testing.T) {
	h := NewHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	}))

	resp, err := h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      "POST",
		Path:            "/closest_bars",
		Body:            "%%%not-base64",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_DefaultStatus(t *testing.T) {
	h := NewHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Backend Boire Facile OK"))
	}))

	resp, err := h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Backend Boire Facile OK", resp.Body)
}
