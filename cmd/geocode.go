package cmd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Prakkie91/jobo-go/jobo"
)

func newGeocodeCmd(a *app) *cobra.Command {
	var concurrency int
	var perSecond float64

	cmd := &cobra.Command{
		Use:   "geocode LOCATION...",
		Short: "Resolve free-form locations into structured locations",
		Long: `Geocode one or more free-form location strings. Locations are resolved
concurrently and printed in the order given.`,
		Example: `  jobo geocode "San Francisco, CA" Berlin "London, UK"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("concurrency") {
				concurrency = a.cfg.Geocode.Concurrency
			}
			if !cmd.Flags().Changed("rate") {
				perSecond = a.cfg.Geocode.RatePerSecond
			}

			results, err := geocodeAll(cmd.Context(), client.Locations, args, concurrency, perSecond, a.logger)
			if err != nil {
				return err
			}
			return a.printer.WriteGeocode(results)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "concurrent requests (default from geocode.concurrency)")
	cmd.Flags().Float64Var(&perSecond, "rate", 5, "maximum requests per second, 0 for unlimited (default from geocode.rate_per_second)")

	return cmd
}

// geocodeAll geocodes inputs with bounded concurrency and a shared rate limit.
// Results keep the order of inputs. A failure for one input is recorded in
// its result; authentication, rate-limit and cancellation errors abort the batch.
func geocodeAll(ctx context.Context, api jobo.LocationsAPI, inputs []string, concurrency int, perSecond float64, logger zerolog.Logger) ([]jobo.GeocodeResultItem, error) {
	results := make([]jobo.GeocodeResultItem, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}

	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = max(1, int(math.Ceil(perSecond)))
	}
	limiter := rate.NewLimiter(limit, burst)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, concurrency))

	for i, raw := range inputs {
		input := strings.TrimSpace(raw)
		if input == "" {
			results[i] = jobo.GeocodeResultItem{Input: raw, Error: "empty location"}
			continue
		}

		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}

			item, err := api.Geocode(ctx, input)
			switch {
			case err == nil:
				results[i] = *item
				logger.Debug().
					Str("input", input).
					Int("locations", len(item.Locations)).
					Str("method", item.Method).
					Msg("Geocoded location")
				return nil
			case errors.Is(err, jobo.ErrUnauthorized), errors.Is(err, jobo.ErrRateLimited), ctx.Err() != nil:
				return fmt.Errorf("geocode %q: %w", input, err)
			default:
				logger.Warn().Err(err).Str("input", input).Msg("Failed to geocode location")
				results[i] = jobo.GeocodeResultItem{Input: input, Error: err.Error()}
				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
