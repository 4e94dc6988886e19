package jobo

import (
	"context"
	"net/url"
)

// LocationsClient accesses the geocoding endpoint
type LocationsClient struct {
	http *transport
}

// Geocode resolves a free-form location such as "San Francisco, CA" into
// structured locations. An unresolvable input is reported through
// Succeeded=false rather than an error.
func (c *LocationsClient) Geocode(ctx context.Context, location string) (*GeocodeResultItem, error) {
	params := url.Values{}
	params.Set("location", location)

	var resp GeocodeResultItem
	if err := c.http.get(ctx, "/api/locations/geocode", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
