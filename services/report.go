package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"where2eat/models"
)

const (
	nameWidth  = 36
	labelWidth = 30
	subWidth   = 35
)

var banner = strings.Repeat("*", 100)

// PrintShortlist writes the ranked shortlist as a numbered table. Indices
// start at 0, which is what the interactive prompts refer to.
func PrintShortlist(w io.Writer, title string, rs []models.Restaurant, showIDs bool) {
	sep := strings.Repeat("═", 78)
	thin := strings.Repeat("─", 78)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  %s\033[0m\n", title)
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n", sep)

	if len(rs) == 0 {
		fmt.Fprintf(w, "  No restaurants found\n\n")
		return
	}

	fmt.Fprintf(w, "\033[1;33m  %-3s %s %6s %8s %10s %5s\033[0m\n",
		"#", pad("Name", nameWidth), "Rating", "Reviews", "Dist (mi)", "Price")
	fmt.Fprintf(w, "  %s\n", thin)
	for i, r := range rs {
		fmt.Fprintf(w, "  %-3d %s %6s %8d %10s %5s\n",
			i, pad(truncate(r.Name, nameWidth), nameWidth),
			formatRating(r.Rating), r.ReviewCount, formatMiles(r), r.PriceTier)
		if showIDs {
			fmt.Fprintf(w, "      id: %s\n", r.ID)
		}
		if r.Address != "" {
			fmt.Fprintf(w, "      %s\n", truncate(r.Address, 70))
		}
	}
	fmt.Fprintln(w)
}

// PrintReviews writes review snippets in a reader-friendly form.
func PrintReviews(w io.Writer, restaurant string, reviews []models.Review) {
	if len(reviews) == 0 {
		fmt.Fprintf(w, "%s\n\nNo reviews available for %s.\n\n", banner, restaurant)
		return
	}
	for _, rev := range reviews {
		fmt.Fprintf(w, "%s\n\n", banner)
		author := rev.Author
		if author == "" {
			author = "A Yelp user"
		}
		date := "an unknown date"
		if !rev.Created.IsZero() {
			date = rev.Created.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "On %s %s gave a rating of %s and said:\n\n", date, author, formatRating(rev.Rating))
		fmt.Fprintf(w, "%s\n\n", rev.Text)
		if rev.URL != "" {
			fmt.Fprintf(w, "See more: %s\n\n", rev.URL)
		}
	}
}

// FormatDirections renders a route as numbered steps. verbose adds walking
// sub-steps and transit vehicle details; it has no effect when driving.
func FormatDirections(route *models.Route, verbose bool) string {
	var b strings.Builder
	if route.Mode == models.Driving {
		verbose = false
	}

	b.WriteString(banner + "\n")
	b.WriteString(ljust("Starting location:", labelWidth) + route.StartAddress + "\n")
	b.WriteString(ljust("Destination location:", labelWidth) + route.EndAddress + "\n")
	b.WriteString(ljust("Total distance:", labelWidth) + route.Distance + "\n")
	b.WriteString(banner + "\n")
	b.WriteString(ljust("Transportation mode:", labelWidth) + string(route.Mode) + "\n")
	b.WriteString(ljust("Total duration:", labelWidth) + route.Duration + "\n")
	b.WriteString(banner + "\n")
	b.WriteString("Detailed direction to the restaurant: \n\n")

	for i, step := range route.Steps {
		fmt.Fprintf(&b, "Step %d: %s (%s, %s)\n", i+1, step.Instruction, step.Distance, step.Duration)
		if !verbose {
			continue
		}
		if step.TravelMode == "WALKING" {
			for _, sub := range step.SubSteps {
				if sub.Instruction == "" {
					continue
				}
				fmt.Fprintf(&b, "      - %s (%s, %s)\n", sub.Instruction, sub.Distance, sub.Duration)
			}
		}
		if step.TravelMode == "TRANSIT" && step.Transit != nil {
			t := step.Transit
			b.WriteString(ljust("      - Vehicle:", subWidth) + strings.TrimSpace(t.Vehicle+" "+t.Line) + "\n")
			b.WriteString(ljust("      - Departure stop:", subWidth) + t.DepartureStop + "\n")
			b.WriteString(ljust("      - Arrival stop:", subWidth) + t.ArrivalStop + "\n")
			b.WriteString(ljust("      - Number of stops:", subWidth) + strconv.Itoa(t.NumStops) + "\n\n")
		}
	}
	return b.String()
}

func formatRating(r float64) string {
	if r < 0 {
		return "n/a"
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

func formatMiles(r models.Restaurant) string {
	if !r.HasDistance() {
		return "?"
	}
	return strconv.FormatFloat(r.DistanceMiles(), 'f', 1, 64)
}

func ljust(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// pad and truncate measure display width so that wide glyphs (CJK names,
// emoji) keep the columns aligned.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func truncate(s string, max int) string {
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "...")
}
