package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"where2eat/models"
	"where2eat/services"
)

type directionsOptions struct {
	from    string
	lat     float64
	lng     float64
	mode    string
	verbose bool
}

func newDirectionsCommand(a *app) *cobra.Command {
	opts := &directionsOptions{}

	cmd := &cobra.Command{
		Use:   "directions <business-id>",
		Short: "Print directions to a restaurant",
		Long: `Look up a restaurant on Yelp and print Google directions to it.

The origin is --from, or --lat/--lng, or the configured default location.
--verbose adds walking sub-steps and transit details; it is ignored when
driving.`,
		Example: `  where2eat directions joes-pizza-new-york --from "Union Square, New York" --mode walking`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("lat") != f.Changed("lng") {
				return fmt.Errorf("--lat and --lng must be given together")
			}
			origin := models.Origin{Address: opts.from}
			if f.Changed("lat") {
				origin = models.Origin{Coordinates: &models.Coordinates{Latitude: opts.lat, Longitude: opts.lng}}
			} else if origin.Address == "" {
				origin.Address = a.cfg.Yelp.DefaultLocation
			}
			return a.runDirections(cmd, args[0], origin, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "", "Starting address (default from config)")
	f.Float64Var(&opts.lat, "lat", 0, "Starting latitude")
	f.Float64Var(&opts.lng, "lng", 0, "Starting longitude")
	f.StringVarP(&opts.mode, "mode", "m", string(models.Transit), "Travel mode: driving, walking or transit")
	f.BoolVarP(&opts.verbose, "verbose", "v", true, "Show detailed steps")

	return cmd
}

func (a *app) runDirections(cmd *cobra.Command, id string, origin models.Origin, o *directionsOptions) error {
	mode, err := models.ParseTravelMode(o.mode)
	if err != nil {
		return err
	}
	if mode == models.Driving && cmd.Flags().Changed("verbose") && o.verbose {
		a.logger.Warn("--verbose is ignored when driving")
	}

	ctx := cmd.Context()
	yc, err := a.yelpClient(ctx)
	if err != nil {
		return err
	}
	gc, err := a.googleClient(ctx)
	if err != nil {
		return err
	}

	b, err := yc.Business(ctx, id)
	if err != nil {
		return err
	}
	rs := services.Normalize([]models.RawBusiness{*b})
	if len(rs) == 0 || rs[0].Destination() == "" {
		return fmt.Errorf("yelp returned no usable location for %s", id)
	}

	route, err := gc.Directions(ctx, models.DirectionsRequest{
		Origin:      origin.String(),
		Destination: rs[0].Destination(),
		Mode:        mode,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nThe direction to %s is as follows:\n\n", rs[0].Name)
	fmt.Fprintln(a.out, services.FormatDirections(route, o.verbose))
	return nil
}
