package models

// BarFinder answers catalog queries. Implementations are read-only after
// construction and safe for concurrent use.
type BarFinder interface {
	AllBars() []Bar
	NearestBars(point GeoPoint, limit int) []RankedBar
}
