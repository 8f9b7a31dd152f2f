package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"where2eat/models"
	"where2eat/services"
)

const lookupLimit = 5

func newLookupCommand(a *app) *cobra.Command {
	var (
		location string
		page     int
	)

	cmd := &cobra.Command{
		Use:   "lookup <name>",
		Short: "Find the business id of a restaurant by name",
		Long: `Search Yelp for a restaurant by (partial) name and print the best
matches with their ids, in Yelp's relevance order, five at a time. Use
--page to see further matches. The id is what the reviews and directions
commands take.`,
		Example: `  where2eat lookup "joe's pizza" --location "Greenwich Village, NY"
  where2eat lookup "joe's pizza" --page 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}
			ctx := cmd.Context()
			yc, err := a.yelpClient(ctx)
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			raw, err := yc.Search(ctx, models.SearchQuery{
				Term:     name,
				Location: location,
				Limit:    lookupLimit,
				Offset:   (page - 1) * lookupLimit,
			})
			if err != nil {
				return err
			}
			matches := services.Normalize(raw)
			title := fmt.Sprintf("Matches for %q", name)
			if page > 1 {
				title = fmt.Sprintf("Matches for %q (page %d)", name, page)
			}
			services.PrintShortlist(a.out, title, matches, true)
			return nil
		},
	}

	cmd.Flags().StringVarP(&location, "location", "l", "", "Address or place to search around (default from config)")
	cmd.Flags().IntVar(&page, "page", 1, "Page of matches to show, five per page")
	return cmd
}
