package main

import (
	"github.com/spf13/cobra"

	"where2eat/models"
	"where2eat/services"
)

func newReviewsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "reviews <business-id>",
		Short:   "Print the most recent reviews of a restaurant",
		Example: `  where2eat reviews joes-pizza-new-york`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			yc, err := a.yelpClient(ctx)
			if err != nil {
				return err
			}

			id := args[0]
			raw, err := yc.Reviews(ctx, id)
			if err != nil {
				return err
			}

			name := id
			if b, err := yc.Business(ctx, id); err != nil {
				a.logger.Warn("could not look up business %s: %v", id, err)
			} else if rs := services.Normalize([]models.RawBusiness{*b}); len(rs) == 1 {
				name = rs[0].Name
			}

			services.PrintReviews(a.out, name, services.NormalizeReviews(raw))
			return nil
		},
	}
}
