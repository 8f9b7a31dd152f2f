// Package prompt implements the interactive questions of a session with
// huh forms.
package prompt

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"where2eat/api/geoip"
	"where2eat/models"
	"where2eat/services"
)

const (
	originCoordinates = "coordinates"
	originAddress     = "address"
)

// Terminal asks questions on in/out. When in is not a terminal (piped
// input, tests) the forms run in accessible mode, which reads plain lines.
type Terminal struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out, accessible: !IsTerminal(in)}
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (t *Terminal) run(ctx context.Context, fields ...huh.Field) error {
	form := huh.NewForm(huh.NewGroup(fields...)).
		WithInput(t.in).
		WithOutput(t.out).
		WithAccessible(t.accessible)
	return form.RunWithContext(ctx)
}

// Preferences collects the origin, search and ranking options.
func (t *Terminal) Preferences(ctx context.Context, detected *geoip.Location, defaults models.Preferences) (*models.Preferences, error) {
	origin, err := t.origin(ctx, detected, defaults.Origin)
	if err != nil {
		return nil, err
	}

	var (
		keyword   = defaults.Term
		miles     = defaultMiles(defaults.Radius)
		price     = models.PriceParam(defaults.PriceTiers)
		criterion = defaults.Criterion
		count     = "5"
	)
	if criterion == "" {
		criterion = models.ByRating
	}
	if defaults.ResultCount > 0 {
		count = strconv.Itoa(defaults.ResultCount)
	}

	criteria := make([]huh.Option[models.Criterion], 0, len(models.Criteria))
	for i, c := range models.Criteria {
		criteria = append(criteria, huh.NewOption(fmt.Sprintf("%d. %s", i+1, c.Describe()), c))
	}

	err = t.run(ctx,
		huh.NewInput().
			Title("Keyword(s) for restaurant searching").
			Placeholder("restaurant").
			Value(&keyword),
		huh.NewInput().
			Title("Maximum distance in miles").
			Description(fmt.Sprintf("A positive integer no larger than %d", MaxMiles)).
			Value(&miles).
			Validate(func(s string) error { _, err := ParseMiles(s); return err }),
		huh.NewInput().
			Title("Price levels").
			Description("1 is the lowest level and 4 the highest; '1,2,3' includes levels 1, 2 and 3. Leave empty for all.").
			Value(&price).
			Validate(func(s string) error { _, err := models.ParsePriceTiers(s); return err }),
		huh.NewSelect[models.Criterion]().
			Title("Sort the results by").
			Options(criteria...).
			Value(&criterion),
		huh.NewInput().
			Title("How many of the top-ranked restaurants do you want to see?").
			Description(fmt.Sprintf("An integer from 1 to %d", services.MaxShortlist)).
			Value(&count).
			Validate(func(s string) error { _, err := ParseCount(s); return err }),
	)
	if err != nil {
		return nil, fmt.Errorf("prompt: preferences: %w", err)
	}

	radius, _ := ParseMiles(miles)
	tiers, _ := models.ParsePriceTiers(price)
	n, _ := ParseCount(count)

	return &models.Preferences{
		Origin:      origin,
		Term:        strings.TrimSpace(keyword),
		Radius:      radius,
		PriceTiers:  tiers,
		Criterion:   criterion,
		ResultCount: n,
	}, nil
}

func (t *Terminal) origin(ctx context.Context, detected *geoip.Location, fallback models.Origin) (models.Origin, error) {
	if detected != nil {
		q := fmt.Sprintf("Your current location is %s (%s). Search restaurants near it?",
			detected, models.FormatLatLng(detected.Coordinates))
		useIt, err := t.Confirm(ctx, q)
		if err != nil {
			return models.Origin{}, err
		}
		if useIt {
			c := detected.Coordinates
			return models.Origin{Coordinates: &c}, nil
		}
	}

	kind := originAddress
	if err := t.run(ctx, huh.NewSelect[string]().
		Title("Where should the search start?").
		Options(
			huh.NewOption("A geographic coordinate", originCoordinates),
			huh.NewOption("An address", originAddress),
		).
		Value(&kind)); err != nil {
		return models.Origin{}, fmt.Errorf("prompt: origin: %w", err)
	}

	if kind == originCoordinates {
		var lat, lng string
		err := t.run(ctx,
			huh.NewInput().Title("Latitude").Value(&lat).
				Validate(func(s string) error { _, err := ParseCoordinate(s, 90); return err }),
			huh.NewInput().Title("Longitude").Value(&lng).
				Validate(func(s string) error { _, err := ParseCoordinate(s, 180); return err }),
		)
		if err != nil {
			return models.Origin{}, fmt.Errorf("prompt: coordinates: %w", err)
		}
		la, _ := ParseCoordinate(lat, 90)
		lo, _ := ParseCoordinate(lng, 180)
		return models.Origin{Coordinates: &models.Coordinates{Latitude: la, Longitude: lo}}, nil
	}

	address := fallback.Address
	err := t.run(ctx, huh.NewInput().
		Title("Address of the starting point").
		Value(&address).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("address is required")
			}
			return nil
		}))
	if err != nil {
		return models.Origin{}, fmt.Errorf("prompt: address: %w", err)
	}
	return models.Origin{Address: strings.TrimSpace(address)}, nil
}

func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	var yes bool
	err := t.run(ctx, huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&yes))
	if err != nil {
		return false, fmt.Errorf("prompt: %w", err)
	}
	return yes, nil
}

// Choose lists the shortlist with the same indices as the printed table.
func (t *Terminal) Choose(ctx context.Context, title string, shortlist []models.Restaurant) (int, error) {
	if len(shortlist) == 0 {
		return 0, fmt.Errorf("prompt: nothing to choose from")
	}
	opts := make([]huh.Option[int], len(shortlist))
	for i, r := range shortlist {
		opts[i] = huh.NewOption(fmt.Sprintf("%d. %s", i, r.Name), i)
	}

	var idx int
	if err := t.run(ctx, huh.NewSelect[int]().Title(title).Options(opts...).Value(&idx)); err != nil {
		return 0, fmt.Errorf("prompt: choose: %w", err)
	}
	return idx, nil
}

// TravelMode asks how the user is getting there and, unless driving,
// whether to show detailed directions.
func (t *Terminal) TravelMode(ctx context.Context) (models.TravelMode, bool, error) {
	mode := models.Transit
	opts := make([]huh.Option[models.TravelMode], len(models.TravelModes))
	for i, m := range models.TravelModes {
		opts[i] = huh.NewOption(string(m), m)
	}
	if err := t.run(ctx, huh.NewSelect[models.TravelMode]().
		Title("Now, let's see how we can get there. Preferred method of transportation?").
		Options(opts...).
		Value(&mode)); err != nil {
		return "", false, fmt.Errorf("prompt: travel mode: %w", err)
	}
	if mode == models.Driving {
		return mode, false, nil
	}

	verbose, err := t.Confirm(ctx, "Do you want a detailed version of the directions?")
	if err != nil {
		return "", false, err
	}
	return mode, verbose, nil
}

// APIKey asks for a credential without echoing it.
func (t *Terminal) APIKey(ctx context.Context, service string) (string, error) {
	var key string
	err := t.run(ctx, huh.NewInput().
		Title(fmt.Sprintf("Please enter your %s API key", service)).
		EchoMode(huh.EchoModePassword).
		Value(&key).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("a key is required")
			}
			return nil
		}))
	if err != nil {
		return "", fmt.Errorf("prompt: api key: %w", err)
	}
	return strings.TrimSpace(key), nil
}
