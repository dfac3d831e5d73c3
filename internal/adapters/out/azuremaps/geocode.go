package azuremaps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

type searchResponse struct {
	Results []struct {
		Position struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"position"`
	} `json:"results"`
}

// Geocode returns the position of the best match for address.
func (c *Client) Geocode(ctx context.Context, address string) (kernel.Coordinate, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return kernel.Coordinate{}, errs.NewValueIsRequiredError("address")
	}

	resp, err := c.get(ctx, "/search/address/json", map[string]string{
		"query": address,
		"limit": "1",
	})
	if err != nil {
		return kernel.Coordinate{}, errs.NewLookupErrorWithCause("address", address, err)
	}
	defer resp.Body.Close()

	var decoded searchResponse
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return kernel.Coordinate{}, errs.NewLookupErrorWithCause("address", address,
			fmt.Errorf("decode search response: %w", err))
	}
	if len(decoded.Results) == 0 {
		return kernel.Coordinate{}, errs.NewLookupError("address", address)
	}

	pos := decoded.Results[0].Position
	coord, err := kernel.NewCoordinate(pos.Lat, pos.Lon)
	if err != nil {
		return kernel.Coordinate{}, errs.NewLookupErrorWithCause("address", address, err)
	}
	return coord, nil
}
