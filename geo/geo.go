// Package geo turns a delivery address into a road-agnostic distance from the restaurant.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"burger-ordering-api/breaker"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNoAddress = errors.New("address is empty")
	ErrNotFound  = errors.New("address not found")
	ErrDisabled  = errors.New("geocoder is not configured")
)

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate
type Point struct {
	Lat float64
	Lon float64
}

// Client geocodes addresses against a Nominatim-compatible search endpoint
type Client struct {
	http    *resty.Client
	circuit *breaker.CircuitBreaker
	baseURL string
	origin  Point
}

func NewClient(baseURL string, origin Point) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(breaker.DefaultTimeout).
			SetRetryCount(0).
			SetHeader("User-Agent", "burger-ordering-api"),
		circuit: breaker.New("Geocoder"),
		baseURL: strings.TrimRight(baseURL, "/"),
		origin:  origin,
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the first match for address
func (c *Client) Geocode(ctx context.Context, address string) (Point, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Point{}, ErrNoAddress
	}
	if c == nil || c.baseURL == "" {
		return Point{}, ErrDisabled
	}

	res, err := c.circuit.Execute(func() (interface{}, error) {
		var results []searchResult
		resp, httpErr := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{"format": "json", "limit": "1", "q": address}).
			SetResult(&results).
			Get(c.baseURL + "/search")
		if httpErr != nil {
			return nil, fmt.Errorf("HTTP error: %w", httpErr)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode())
		}
		return results, nil
	})
	if err != nil {
		return Point{}, err
	}

	results := res.([]searchResult)
	if len(results) == 0 {
		return Point{}, ErrNotFound
	}
	lat, err1 := strconv.ParseFloat(results[0].Lat, 64)
	lon, err2 := strconv.ParseFloat(results[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return Point{}, fmt.Errorf("geocoder returned bad coordinates %q,%q", results[0].Lat, results[0].Lon)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// DistanceKm geocodes address and returns its distance from the restaurant, rounded to 0.1 km
func (c *Client) DistanceKm(ctx context.Context, address string) (float64, error) {
	p, err := c.Geocode(ctx, address)
	if err != nil {
		return 0, err
	}
	return math.Round(Haversine(c.origin, p)*10) / 10, nil
}

// Haversine returns the great-circle distance between a and b in kilometres
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
