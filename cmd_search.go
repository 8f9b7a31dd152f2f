package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"where2eat/models"
	"where2eat/services"
	"where2eat/storage"
)

type searchOptions struct {
	term      string
	location  string
	lat       float64
	lng       float64
	hasCoords bool
	radius    int
	price     string
	limit     int
	by        string
	top       int
	minRating float64
	hasMin    bool
	csvPath   string
	showIDs   bool
}

func newSearchCommand(a *app) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search and rank restaurants without prompts",
		Long: `Search Yelp, rank the results and print the shortlist.

Criteria: rating, rating_distance, review_count, distance, price, composite.
Use --lat and --lng together instead of --location to search around a point.`,
		Example: `  where2eat search --term ramen --location "Brooklyn, NY" --by composite --top 5
  where2eat search --lat 40.7359 --lng -73.9911 --radius 1600 --price 1,2 --csv out/ramen.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			opts.hasCoords = f.Changed("lat") || f.Changed("lng")
			if opts.hasCoords && !(f.Changed("lat") && f.Changed("lng")) {
				return fmt.Errorf("--lat and --lng must be given together")
			}
			opts.hasMin = f.Changed("min-rating")
			return a.runSearch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.term, "term", "t", "", "Search keywords (default from config)")
	f.StringVarP(&opts.location, "location", "l", "", "Address or place to search around (default from config)")
	f.Float64Var(&opts.lat, "lat", 0, "Latitude of the search origin")
	f.Float64Var(&opts.lng, "lng", 0, "Longitude of the search origin")
	f.IntVarP(&opts.radius, "radius", "r", 0, "Search radius in meters, at most 20000 (default from config)")
	f.StringVarP(&opts.price, "price", "p", "", "Comma separated price levels 1-4, e.g. 1,2")
	f.IntVar(&opts.limit, "limit", 0, "How many businesses to fetch, at most 500 (default from config)")
	f.StringVarP(&opts.by, "by", "b", string(models.ByRating), "Ranking criterion")
	f.IntVarP(&opts.top, "top", "n", 10, "How many ranked restaurants to show")
	f.Float64Var(&opts.minRating, "min-rating", 0, "Drop restaurants rated below this")
	f.StringVar(&opts.csvPath, "csv", "", "Also write the shortlist to this CSV file")
	f.BoolVar(&opts.showIDs, "show-ids", false, "Print business ids for use with reviews and directions")

	return cmd
}

// build turns flags into the search query, ranking criterion and
// constraints, applying config defaults for anything left unset.
func (o *searchOptions) build(a *app) (models.SearchQuery, models.Criterion, models.Constraints, error) {
	var (
		q    models.SearchQuery
		cons models.Constraints
	)

	c, err := services.ParseCriterion(o.by)
	if err != nil {
		return q, "", cons, err
	}
	if o.top < 1 || o.top > services.MaxShortlist {
		return q, "", cons, fmt.Errorf("--top must be between 1 and %d", services.MaxShortlist)
	}
	tiers, err := models.ParsePriceTiers(o.price)
	if err != nil {
		return q, "", cons, err
	}

	q = models.SearchQuery{
		Term:       o.term,
		Location:   o.location,
		Radius:     o.radius,
		PriceTiers: tiers,
		Limit:      o.limit,
	}
	if q.Radius == 0 {
		q.Radius = a.cfg.Yelp.Radius
	}
	if o.hasCoords {
		q.Coordinates = &models.Coordinates{Latitude: o.lat, Longitude: o.lng}
		q.Location = ""
	}

	cons.PriceTiers = tiers
	if q.Radius > 0 {
		d := float64(q.Radius)
		cons.MaxDistance = &d
	}
	if o.hasMin {
		m := o.minRating
		cons.MinRating = &m
	}
	return q, c, cons, nil
}

func (a *app) runSearch(cmd *cobra.Command, o *searchOptions) error {
	q, criterion, cons, err := o.build(a)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	yc, err := a.yelpClient(ctx)
	if err != nil {
		return err
	}

	raw, err := yc.Search(ctx, q)
	if err != nil {
		return err
	}
	records := services.Normalize(raw)
	a.logger.Info("search returned %d businesses, kept %d, dropped %d", len(raw), len(records), len(raw)-len(records))

	ranked, err := services.Rank(records, criterion, cons)
	if err != nil {
		return err
	}
	shortlist := services.Top(ranked, o.top)

	title := fmt.Sprintf("Top %d of %d restaurants by %s", len(shortlist), len(ranked), criterion)
	services.PrintShortlist(a.out, title, shortlist, o.showIDs)

	path := o.csvPath
	if path == "" {
		path = a.cfg.CSVOutputPath
	}
	if path == "" {
		return nil
	}
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := export(w, shortlist); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Shortlist saved to %s\n", path)
	return nil
}

func export(w storage.ShortlistWriter, shortlist []models.Restaurant) error {
	if err := w.Write(shortlist); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("export: close: %w", err)
	}
	return nil
}
