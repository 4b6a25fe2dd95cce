// Package bars turns raw query coordinates into ranked bar lists.
package bars

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/boirefacile/backend-go/internal/catalog"
	"github.com/boirefacile/backend-go/internal/models"
)

type Service struct {
	finder models.BarFinder
	limit  int
}

func NewService(finder models.BarFinder) *Service {
	return &Service{
		finder: finder,
		limit:  catalog.DefaultLimit,
	}
}

// Closest validates lat and lon and returns the nearest bars, nearest first,
// with distances rounded to whole meters. lat and lon are values as decoded
// from a JSON body: numbers, numeric strings or nil when absent.
func (s *Service) Closest(lat, lon any) ([]models.RankedBar, error) {
	point, err := ParsePoint(lat, lon)
	if err != nil {
		return nil, err
	}
	return s.finder.NearestBars(point, s.limit), nil
}

// All returns the whole catalog in load order.
func (s *Service) All() []models.Bar {
	return s.finder.AllBars()
}

// ParsePoint builds a valid GeoPoint or returns an *InvalidCoordinatesError.
func ParsePoint(lat, lon any) (models.GeoPoint, error) {
	latitude, err := parseCoordinate("lat", lat, 90)
	if err != nil {
		return models.GeoPoint{}, err
	}
	longitude, err := parseCoordinate("lon", lon, 180)
	if err != nil {
		return models.GeoPoint{}, err
	}
	return models.GeoPoint{Latitude: latitude, Longitude: longitude}, nil
}

func parseCoordinate(field string, raw any, limit float64) (float64, error) {
	var v float64
	switch x := raw.(type) {
	case nil:
		return 0, NewInvalidCoordinatesError(field, "is missing")
	case float64:
		v = x
	case json.Number:
		f, err := strconv.ParseFloat(x.String(), 64)
		if err != nil {
			return 0, NewInvalidCoordinatesError(field, "is not a number")
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, NewInvalidCoordinatesError(field, "is not a number")
		}
		v = f
	default:
		return 0, NewInvalidCoordinatesError(field, "is not a number")
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, NewInvalidCoordinatesError(field, "is not finite")
	}
	if v < -limit || v > limit {
		return 0, NewInvalidCoordinatesError(field, "is out of range")
	}
	return v, nil
}
