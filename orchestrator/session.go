// Package orchestrator drives one interactive "where to eat" session as a
// sequence of named steps. All I/O goes through the collaborator
// interfaces below, so the same flow can run behind a terminal, a test
// harness or any other front end.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"where2eat/api/geoip"
	"where2eat/models"
	"where2eat/services"
	"where2eat/utils"
)

type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) ([]models.RawBusiness, error)
}

type ReviewFetcher interface {
	Reviews(ctx context.Context, id string) ([]models.RawReview, error)
}

type Navigator interface {
	Directions(ctx context.Context, req models.DirectionsRequest) (*models.Route, error)
}

type Locator interface {
	Locate(ctx context.Context) (*geoip.Location, error)
}

// Prompter asks the user for input. Choose returns an index into shortlist.
// TravelMode also reports whether detailed directions were requested.
type Prompter interface {
	Preferences(ctx context.Context, detected *geoip.Location, defaults models.Preferences) (*models.Preferences, error)
	Confirm(ctx context.Context, question string) (bool, error)
	Choose(ctx context.Context, title string, shortlist []models.Restaurant) (int, error)
	TravelMode(ctx context.Context) (models.TravelMode, bool, error)
}

// Step names a state of the session.
type Step int

const (
	StepCollectPreferences Step = iota
	StepSearch
	StepRank
	StepPresent
	StepReviews
	StepNavigate
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepCollectPreferences:
		return "collect-preferences"
	case StepSearch:
		return "search"
	case StepRank:
		return "rank"
	case StepPresent:
		return "present"
	case StepReviews:
		return "reviews"
	case StepNavigate:
		return "navigate"
	case StepDone:
		return "done"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Deps wires a Session. Navigator and Locator may be nil; the navigate step
// and location detection are then skipped.
type Deps struct {
	Searcher  Searcher
	Reviews   ReviewFetcher
	Navigator Navigator
	Locator   Locator
	Prompter  Prompter
	Out       io.Writer
	Logger    *utils.Logger

	// Defaults pre-fill the preference form.
	Defaults models.Preferences
	// SearchLimit is how many businesses to request per search.
	SearchLimit int
}

// Result is what a finished session produced.
type Result struct {
	Preferences *models.Preferences
	Shortlist   []models.Restaurant
	Chosen      *models.Restaurant
	Route       *models.Route
}

type Session struct {
	ID string

	deps   Deps
	logger *utils.Logger

	detected   *geoip.Location
	prefs      *models.Preferences
	candidates []models.Restaurant
	result     Result
}

// NewSession creates a session with a fresh id.
func NewSession(d Deps) *Session {
	if d.Logger == nil {
		d.Logger = utils.NewNopLogger()
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
	id := uuid.NewString()
	return &Session{
		ID:     id,
		deps:   d,
		logger: d.Logger.With("session", id),
	}
}

// Run walks the steps until StepDone or the first error.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	step := StepCollectPreferences
	for step != StepDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			next Step
			err  error
		)
		switch step {
		case StepCollectPreferences:
			next, err = s.collectPreferences(ctx)
		case StepSearch:
			next, err = s.search(ctx)
		case StepRank:
			next, err = s.rank(ctx)
		case StepPresent:
			next, err = s.present(ctx)
		case StepReviews:
			next, err = s.reviews(ctx)
		case StepNavigate:
			next, err = s.navigate(ctx)
		default:
			return nil, fmt.Errorf("unknown step %v", step)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step, err)
		}

		s.logger.Debug("step %s -> %s", step, next)
		step = next
	}

	result := s.result
	return &result, nil
}

func (s *Session) collectPreferences(ctx context.Context) (Step, error) {
	if s.deps.Locator != nil && s.detected == nil {
		loc, err := s.deps.Locator.Locate(ctx)
		if err != nil {
			s.logger.Warn("could not detect current location: %v", err)
		} else {
			s.detected = loc
		}
	}

	prefs, err := s.deps.Prompter.Preferences(ctx, s.detected, s.deps.Defaults)
	if err != nil {
		return StepDone, err
	}
	if prefs.ResultCount < 1 || prefs.ResultCount > services.MaxShortlist {
		return StepDone, fmt.Errorf("result count must be between 1 and %d, got %d", services.MaxShortlist, prefs.ResultCount)
	}
	s.prefs = prefs
	s.result.Preferences = prefs
	s.logger.Info("searching %q near %s within %dm, sorted by %s", prefs.Term, prefs.Origin, prefs.Radius, prefs.Criterion)
	return StepSearch, nil
}

func (s *Session) search(ctx context.Context) (Step, error) {
	fmt.Fprintln(s.deps.Out, "\n Searching in process...")

	raw, err := s.deps.Searcher.Search(ctx, s.prefs.Query(s.deps.SearchLimit))
	if err != nil {
		return StepDone, err
	}
	s.candidates = services.Normalize(raw)
	s.logger.Info("search returned %d businesses, kept %d, dropped %d",
		len(raw), len(s.candidates), len(raw)-len(s.candidates))
	return StepRank, nil
}

func (s *Session) rank(ctx context.Context) (Step, error) {
	ranked, err := services.Rank(s.candidates, s.prefs.Criterion, s.prefs.Constraints())
	if errors.Is(err, services.ErrEmptyInput) {
		s.logger.Info("nothing to rank: %v", err)
		fmt.Fprintln(s.deps.Out, "\nNo restaurants matched your preferences.")
		again, cerr := s.deps.Prompter.Confirm(ctx, "Would you like to search again with different preferences?")
		if cerr != nil {
			return StepDone, cerr
		}
		if again {
			return StepCollectPreferences, nil
		}
		return StepDone, nil
	}
	if err != nil {
		return StepDone, err
	}

	s.result.Shortlist = services.Top(ranked, s.prefs.ResultCount)
	return StepPresent, nil
}

func (s *Session) present(_ context.Context) (Step, error) {
	title := fmt.Sprintf("The top %d restaurants from the searching results", len(s.result.Shortlist))
	services.PrintShortlist(s.deps.Out, title, s.result.Shortlist, false)
	return StepReviews, nil
}

func (s *Session) reviews(ctx context.Context) (Step, error) {
	question := "Would you like to read some recent reviews of these restaurants?"
	for {
		want, err := s.deps.Prompter.Confirm(ctx, question)
		if err != nil {
			return StepDone, err
		}
		if !want {
			return StepNavigate, nil
		}

		r, err := s.pick(ctx, "Whose reviews are you interested in?")
		if err != nil {
			return StepDone, err
		}
		raw, err := s.deps.Reviews.Reviews(ctx, r.ID)
		if err != nil {
			// one failed lookup should not end the session
			s.logger.Error("reviews for %s: %v", r.ID, err)
			fmt.Fprintf(s.deps.Out, "\nCould not load reviews for %s.\n", r.Name)
		} else {
			withReviews := r.WithReviews(services.NormalizeReviews(raw))
			services.PrintReviews(s.deps.Out, withReviews.Name, withReviews.Reviews)
		}
		question = "Would you like to read more recent reviews of other restaurants?"
	}
}

func (s *Session) navigate(ctx context.Context) (Step, error) {
	r, err := s.pick(ctx, "Which restaurant from the list do you prefer?")
	if err != nil {
		return StepDone, err
	}
	s.result.Chosen = &r

	if s.deps.Navigator == nil {
		fmt.Fprintf(s.deps.Out, "\nEnjoy your meal at %s!\n", r.Name)
		return StepDone, nil
	}

	mode, verbose, err := s.deps.Prompter.TravelMode(ctx)
	if err != nil {
		return StepDone, err
	}

	route, err := s.deps.Navigator.Directions(ctx, models.DirectionsRequest{
		Origin:      s.prefs.Origin.String(),
		Destination: r.Destination(),
		Mode:        mode,
	})
	if err != nil {
		return StepDone, err
	}
	s.result.Route = route

	fmt.Fprintln(s.deps.Out, "\nThe direction to the restaurant is as follows:")
	fmt.Fprintln(s.deps.Out, services.FormatDirections(route, verbose))
	return StepDone, nil
}

func (s *Session) pick(ctx context.Context, title string) (models.Restaurant, error) {
	idx, err := s.deps.Prompter.Choose(ctx, title, s.result.Shortlist)
	if err != nil {
		return models.Restaurant{}, err
	}
	if idx < 0 || idx >= len(s.result.Shortlist) {
		return models.Restaurant{}, fmt.Errorf("index %d out of range", idx)
	}
	return s.result.Shortlist[idx], nil
}
