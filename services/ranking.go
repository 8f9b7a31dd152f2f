package services

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"where2eat/models"
)

var (
	// ErrEmptyInput is returned when there is nothing to rank, either because
	// no records were given or because the constraints removed all of them.
	ErrEmptyInput = errors.New("no restaurants to rank")
	// ErrInvalidCriterion is returned for an unrecognized criterion.
	ErrInvalidCriterion = errors.New("invalid ranking criterion")
)

// MaxShortlist caps how many restaurants are presented at once.
const MaxShortlist = 20

// criterionAliases maps menu numbers and the long-form names used by the
// interactive prompt onto criteria.
var criterionAliases = map[string]models.Criterion{
	"1":                       models.ByRating,
	"2":                       models.ByRatingDistance,
	"3":                       models.ByReviewCount,
	"4":                       models.ByDistance,
	"5":                       models.ByPrice,
	"6":                       models.ByComposite,
	"rating and review count": models.ByRating,
	"rating and distance":     models.ByRatingDistance,
	"review count":            models.ByReviewCount,
	"reviews":                 models.ByReviewCount,
}

// ParseCriterion resolves a criterion name, menu number or alias.
func ParseCriterion(s string) (models.Criterion, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := criterionAliases[key]; ok {
		return c, nil
	}
	c := models.Criterion(strings.ReplaceAll(key, "-", "_"))
	if !validCriterion(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCriterion, s)
	}
	return c, nil
}

func validCriterion(c models.Criterion) bool {
	for _, known := range models.Criteria {
		if c == known {
			return true
		}
	}
	return false
}

// Rank filters records by cons and orders the survivors best first. The
// input slice is never modified. Ties always fall through to review count
// (descending), then name, then id, so the order is fully deterministic.
func Rank(records []models.Restaurant, c models.Criterion, cons models.Constraints) ([]models.Restaurant, error) {
	if !validCriterion(c) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCriterion, c)
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	candidates := applyConstraints(records, cons)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: constraints filtered out all %d candidates", ErrEmptyInput, len(records))
	}

	switch c {
	case models.ByRating:
		sortBy(candidates, compareRating, tieBreak)
	case models.ByPrice:
		sortBy(candidates, comparePrice, tieBreak)
	case models.ByDistance:
		sortBy(candidates, compareDistance, tieBreak)
	case models.ByReviewCount:
		sortBy(candidates, tieBreak)
	case models.ByRatingDistance:
		sortBy(candidates, compareRating, compareDistance, tieBreak)
	case models.ByComposite:
		rankComposite(candidates)
	}
	return candidates, nil
}

// Top returns at most n records from the head of ranked.
func Top(ranked []models.Restaurant, n int) []models.Restaurant {
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}
	return append([]models.Restaurant(nil), ranked[:n]...)
}

func applyConstraints(records []models.Restaurant, cons models.Constraints) []models.Restaurant {
	out := make([]models.Restaurant, 0, len(records))
	for _, r := range records {
		if cons.MaxDistance != nil && (!r.HasDistance() || r.Distance > *cons.MaxDistance) {
			continue
		}
		if cons.MinRating != nil && (!r.IsRated() || r.Rating < *cons.MinRating) {
			continue
		}
		if !cons.AllowsTier(r.PriceTier) {
			continue
		}
		out = append(out, r)
	}
	return out
}

type comparator func(a, b *models.Restaurant) int

func sortBy(rs []models.Restaurant, chain ...comparator) {
	sort.SliceStable(rs, func(i, j int) bool {
		for _, cmpFn := range chain {
			if c := cmpFn(&rs[i], &rs[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// compareRating puts higher ratings first. Unrated is -1, below any real rating.
func compareRating(a, b *models.Restaurant) int {
	return cmp.Compare(b.Rating, a.Rating)
}

// comparePrice puts cheaper tiers first and unknown tiers last.
func comparePrice(a, b *models.Restaurant) int {
	if a.PriceTier.Known() != b.PriceTier.Known() {
		if a.PriceTier.Known() {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.PriceTier, b.PriceTier)
}

// compareDistance puts nearer restaurants first and unknown distances last.
func compareDistance(a, b *models.Restaurant) int {
	if a.HasDistance() != b.HasDistance() {
		if a.HasDistance() {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.Distance, b.Distance)
}

func tieBreak(a, b *models.Restaurant) int {
	if c := cmp.Compare(b.ReviewCount, a.ReviewCount); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// scoreEpsilon is how close two composite scores must be to count as a tie.
// Rescaling a dimension can move a score by a few ulps.
const scoreEpsilon = 1e-9

// rankComposite sorts by the equal-weight sum of min-max normalized rating,
// inverted price and inverted distance.
func rankComposite(rs []models.Restaurant) {
	scores := CompositeScores(rs)
	idx := make([]int, len(rs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := idx[i], idx[j]
		if math.Abs(scores[a]-scores[b]) > scoreEpsilon {
			return scores[a] > scores[b]
		}
		return tieBreak(&rs[a], &rs[b]) < 0
	})

	sorted := make([]models.Restaurant, len(rs))
	for i, k := range idx {
		sorted[i] = rs[k]
	}
	copy(rs, sorted)
}

// CompositeScores returns one score in [0,3] per record, aligned with rs.
// Each dimension is scaled over the records that have a value for it;
// records without a value score 0 on that dimension, and a dimension with
// no spread scores 0.5 for every record that has a value.
func CompositeScores(rs []models.Restaurant) []float64 {
	rating := dimension(rs, func(r *models.Restaurant) (float64, bool) {
		return r.Rating, r.IsRated()
	}, false)
	price := dimension(rs, func(r *models.Restaurant) (float64, bool) {
		return float64(r.PriceTier), r.PriceTier.Known()
	}, true)
	distance := dimension(rs, func(r *models.Restaurant) (float64, bool) {
		return r.Distance, r.HasDistance()
	}, true)

	scores := make([]float64, len(rs))
	for i := range rs {
		scores[i] = rating[i] + price[i] + distance[i]
	}
	return scores
}

func dimension(rs []models.Restaurant, value func(*models.Restaurant) (float64, bool), invert bool) []float64 {
	var lo, hi float64
	seen := false
	for i := range rs {
		v, ok := value(&rs[i])
		if !ok {
			continue
		}
		if !seen || v < lo {
			lo = v
		}
		if !seen || v > hi {
			hi = v
		}
		seen = true
	}

	out := make([]float64, len(rs))
	for i := range rs {
		v, ok := value(&rs[i])
		switch {
		case !ok:
			out[i] = 0
		case hi == lo:
			out[i] = 0.5
		case invert:
			out[i] = (hi - v) / (hi - lo)
		default:
			out[i] = (v - lo) / (hi - lo)
		}
	}
	return out
}
