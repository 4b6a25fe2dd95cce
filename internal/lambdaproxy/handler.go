// Package lambdaproxy serves an http.Handler behind API Gateway proxy
// integration.
package lambdaproxy

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	next http.Handler
}

func NewHandler(next http.Handler) *Handler {
	return &Handler{next: next}
}

func (h *Handler) HandleRequest(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := newRequest(ctx, event)
	if err != nil {
		log.Error().Err(err).Str("path", event.Path).Msg("Failed to create request")
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error": "Bad Request"}`,
		}, nil
	}

	w := &responseWriter{
		headers: make(http.Header),
		body:    &bytes.Buffer{},
		code:    http.StatusOK,
	}
	h.next.ServeHTTP(w, req)

	resp := events.APIGatewayProxyResponse{
		StatusCode:        w.code,
		Headers:           make(map[string]string, len(w.headers)),
		MultiValueHeaders: make(map[string][]string, len(w.headers)),
		Body:              w.body.String(),
	}
	for key, values := range w.headers {
		if len(values) > 0 {
			resp.Headers[key] = values[0]
		}
		resp.MultiValueHeaders[key] = values
	}
	return resp, nil
}

func newRequest(ctx context.Context, event events.APIGatewayProxyRequest) (*http.Request, error) {
	method := event.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	path := event.Path
	if path == "" {
		path = "/"
	}

	query := url.Values{}
	for key, values := range event.MultiValueQueryStringParameters {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	for key, value := range event.QueryStringParameters {
		if _, ok := query[key]; !ok {
			query.Set(key, value)
		}
	}

	target := (&url.URL{Path: path, RawQuery: query.Encode()}).String()

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 body: %w", err)
		}
		body = decoded
	}

	req, err := http.NewRequestWithContext(ctx, method, "http://lambda"+target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for key, values := range event.MultiValueHeaders {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for key, value := range event.Headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	if event.RequestContext.RequestID != "" && req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", event.RequestContext.RequestID)
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}
	req.RemoteAddr = strings.TrimSpace(event.RequestContext.Identity.SourceIP)
	return req, nil
}

// responseWriter implements http.ResponseWriter
type responseWriter struct {
	headers http.Header
	body    *bytes.Buffer
	code    int
}

func (w *responseWriter) Header() http.Header {
	return w.headers
}

func (w *responseWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.code = statusCode
}
