// Package directions fetches public-transit itineraries from the Google
// Directions API.
package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/boirefacile/backend-go/pkg/http/client"
)

const directionsPath = "/maps/api/directions/json"

// Route is a transit itinerary as shown to the user.
type Route struct {
	Steps    []string `json:"steps"`
	Duration string   `json:"duration"`
}

// Provider looks up a route between two free-form locations.
type Provider interface {
	Route(ctx context.Context, origin, destination string) (*Route, error)
}

type GoogleClient struct {
	httpClient client.Interface
	apiKey     string
}

var _ Provider = (*GoogleClient)(nil)

func NewGoogleClient(httpClient client.Interface, apiKey string) *GoogleClient {
	return &GoogleClient{
		httpClient: httpClient,
		apiKey:     apiKey,
	}
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		Legs []struct {
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
			Steps []googleStep `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

type googleStep struct {
	HTMLInstructions string `json:"html_instructions"`
	TransitDetails   *struct {
		Line struct {
			Name      string `json:"name"`
			ShortName string `json:"short_name"`
			Vehicle   struct {
				Name string `json:"name"`
			} `json:"vehicle"`
		} `json:"line"`
		DepartureStop struct {
			Name string `json:"name"`
		} `json:"departure_stop"`
		ArrivalStop struct {
			Name string `json:"name"`
		} `json:"arrival_stop"`
	} `json:"transit_details"`
}

func (c *GoogleClient) Route(ctx context.Context, origin, destination string) (*Route, error) {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return nil, ErrMissingEndpoints
	}

	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("mode", "transit")
	params.Set("language", "fr")
	params.Set("region", "fr")
	params.Set("key", c.apiKey)

	resp, err := c.httpClient.Get(ctx, directionsPath+"?"+params.Encode())
	if err != nil {
		return nil, NewAPIError("request failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewAPIError(fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	var body googleResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, NewAPIError("decoding response", err)
	}
	if body.Status != "OK" {
		log.Warn().Str("status", body.Status).Str("message", body.ErrorMessage).Msg("Directions API returned an error status")
		return nil, NewAPIError(body.Status, nil)
	}
	if len(body.Routes) == 0 || len(body.Routes[0].Legs) == 0 {
		return nil, NewAPIError("no route", nil)
	}

	leg := body.Routes[0].Legs[0]
	route := &Route{
		Steps:    make([]string, 0, len(leg.Steps)),
		Duration: leg.Duration.Text,
	}
	for _, step := range leg.Steps {
		route.Steps = append(route.Steps, step.describe())
	}
	return route, nil
}

// describe renders the step instruction followed by the transit line, when
// the step rides one.
func (s googleStep) describe() string {
	if s.TransitDetails == nil {
		return s.HTMLInstructions
	}
	td := s.TransitDetails
	line := td.Line.ShortName
	if line == "" {
		line = td.Line.Name
	}
	return fmt.Sprintf("%s (🚌 %s %s de %s à %s)",
		s.HTMLInstructions, td.Line.Vehicle.Name, line, td.DepartureStop.Name, td.ArrivalStop.Name)
}
