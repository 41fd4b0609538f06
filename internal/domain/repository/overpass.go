package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/serjvanilla/go-overpass"

	"valuation_service/internal/domain/model"
)

// categoryFilters lists the tag filters queried for each amenity category.
// Public transport is the union of several tagging schemes.
var categoryFilters = map[model.AmenityCategory][]string{
	model.CategorySchools:   {`["amenity"="school"]`},
	model.CategoryHospitals: {`["amenity"="hospital"]`},
	model.CategoryPublicTransport: {
		`["public_transport"~"^(station|stop_position|platform)$"]`,
		`["railway"="station"]`,
		`["highway"="bus_stop"]`,
		`["amenity"="bus_station"]`,
	},
}

type OverpassRepository struct {
	client  *overpass.Client
	timeout time.Duration
}

func NewOverpassRepository(endpoint string, timeout time.Duration) *OverpassRepository {
	httpClient := &http.Client{
		Timeout: timeout,
	}
	client := overpass.NewWithSettings(endpoint, 2, httpClient)
	return &OverpassRepository{
		client:  &client,
		timeout: timeout,
	}
}

// FindAmenities returns the elements of a category within radiusM metres of
// (lat, lon). Way elements are reduced to the centroid of their nodes.
func (r *OverpassRepository) FindAmenities(
	ctx context.Context,
	lat, lon float64,
	category model.AmenityCategory,
	radiusM int,
) ([]model.OSMElement, error) {
	query, err := buildAroundQuery(lat, lon, category, radiusM, r.timeout)
	if err != nil {
		return nil, err
	}

	result, err := r.executeQuery(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "overpass: query %s", category)
	}

	return convertToOSMElements(result), nil
}

func buildAroundQuery(lat, lon float64, category model.AmenityCategory, radiusM int, timeout time.Duration) (string, error) {
	filters, ok := categoryFilters[category]
	if !ok {
		return "", eris.Errorf("overpass: unknown amenity category %q", category)
	}

	around := fmt.Sprintf("(around:%d,%.6f,%.6f)", radiusM, lat, lon)
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", int(timeout.Seconds()))
	for _, f := range filters {
		fmt.Fprintf(&b, "\tnode%s%s;\n", f, around)
		fmt.Fprintf(&b, "\tway%s%s;\n", f, around)
	}
	b.WriteString(");\nout body;\n>;\nout skel qt;\n")
	return b.String(), nil
}

// executeQuery runs the blocking client call under the context deadline.
func (r *OverpassRepository) executeQuery(ctx context.Context, query string) (*overpass.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type outcome struct {
		result overpass.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := r.client.Query(query)
		done <- outcome{result: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "overpass query aborted")
	case out := <-done:
		if out.err != nil {
			return nil, eris.Wrap(out.err, "overpass query failed")
		}
		return &out.result, nil
	}
}

func convertToOSMElements(result *overpass.Result) []model.OSMElement {
	var elements []model.OSMElement

	for _, node := range result.Nodes {
		elements = append(elements, model.OSMElement{
			ID:   node.ID,
			Type: string(overpass.ElementTypeNode),
			Lat:  node.Lat,
			Lon:  node.Lon,
			Tags: node.Tags,
		})
	}

	for _, way := range result.Ways {
		var lat, lon float64
		count := len(way.Nodes)
		if count > 0 {
			for _, node := range way.Nodes {
				lat += node.Lat
				lon += node.Lon
			}
			lat /= float64(count)
			lon /= float64(count)
		}

		var bounds model.Bounds
		if way.Bounds != nil {
			bounds = model.Bounds{
				MinLat: way.Bounds.Min.Lat,
				MinLon: way.Bounds.Min.Lon,
				MaxLat: way.Bounds.Max.Lat,
				MaxLon: way.Bounds.Max.Lon,
			}
			if count == 0 {
				lat = (bounds.MinLat + bounds.MaxLat) / 2
				lon = (bounds.MinLon + bounds.MaxLon) / 2
			}
		}

		elements = append(elements, model.OSMElement{
			ID:     way.ID,
			Type:   string(overpass.ElementTypeWay),
			Lat:    lat,
			Lon:    lon,
			Tags:   way.Tags,
			Bounds: bounds,
		})
	}

	return elements
}
