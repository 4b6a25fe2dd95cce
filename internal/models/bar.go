package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// HappyHourNotSpecified is shown when the dataset has no happy hour for a bar.
const HappyHourNotSpecified = "Non renseigné"

// Coordinate is a latitude or longitude in degrees. A bar whose dataset row
// had no usable coordinate carries NaN, which is encoded as JSON null.
type Coordinate float64

func (c Coordinate) Valid() bool {
	f := float64(c)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(c))
}

// Price is the price tier as written in the dataset. Numeric tiers are
// encoded as JSON numbers, anything else as a string.
type Price string

func (p Price) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(p))
	if s == "" {
		return []byte("null"), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return json.Marshal(s)
}

type Bar struct {
	Name      string     `json:"nom"`
	Address   string     `json:"adresse"`
	Price     Price      `json:"prix"`
	HappyHour string     `json:"happy_hour"`
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

// HasLocation reports whether both coordinates are finite and in range.
func (b Bar) HasLocation() bool {
	return GeoPoint{Latitude: float64(b.Latitude), Longitude: float64(b.Longitude)}.Valid()
}

// RankedBar is a bar together with its distance from a query point.
// Distance keeps full precision for ordering; DistanceMeters is the
// rounded value shown to clients.
type RankedBar struct {
	Bar
	Distance       float64 `json:"-"`
	DistanceMeters int64   `json:"distance_m"`
}

type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func (p GeoPoint) Valid() bool {
	for _, v := range []float64{p.Latitude, p.Longitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}
