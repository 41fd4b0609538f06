package model

// OSMElement is a node or way returned by the geodata source. Ways carry the
// centroid of their nodes.
type OSMElement struct {
	ID     int64             `json:"id"`
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Tags   map[string]string `json:"tags"`
	Bounds Bounds            `json:"bounds"`
}

type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// AmenityCategory names a group of OSM tag filters.
type AmenityCategory string

const (
	CategorySchools         AmenityCategory = "schools"
	CategoryHospitals       AmenityCategory = "hospitals"
	CategoryPublicTransport AmenityCategory = "public_transport"
)

// AmenityCategories is the fixed query order.
var AmenityCategories = []AmenityCategory{CategorySchools, CategoryHospitals, CategoryPublicTransport}

// AmenityResult is the answer of a nearest-and-count query. NearestKm is nil
// when nothing matched.
type AmenityResult struct {
	NearestKm *float64
	Count     int
}
