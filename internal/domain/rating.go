package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Rating bounds for a single review.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is a legal star rating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Distribution maps star ratings 1..5 to review counts. Index 0 holds the
// count of 1-star reviews.
type Distribution [5]int

// Add increments the bucket for rating r. Out-of-range ratings are the
// caller's responsibility; Add panics on them to surface programming errors.
func (d *Distribution) Add(r int) {
	if !ValidRating(r) {
		panic(fmt.Sprintf("distribution: rating %d out of range", r))
	}
	d[r-1]++
}

// Remove decrements the bucket for rating r, floored at zero. The floor is a
// defensive clamp for already-diverged aggregates, not a correctness
// guarantee.
func (d *Distribution) Remove(r int) {
	if !ValidRating(r) {
		panic(fmt.Sprintf("distribution: rating %d out of range", r))
	}
	if d[r-1] > 0 {
		d[r-1]--
	}
}

// Count returns the bucket value for rating r.
func (d Distribution) Count(r int) int {
	if !ValidRating(r) {
		return 0
	}
	return d[r-1]
}

// Total returns the number of reviews across all buckets.
func (d Distribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// Points returns the rating-weighted sum Σ r·count(r).
func (d Distribution) Points() int {
	points := 0
	for i, n := range d {
		points += (i + 1) * n
	}
	return points
}

// Average returns the mean rating, 0 when the distribution is empty,
// clamped to [0,5] and rounded to two decimals.
func (d Distribution) Average() float64 {
	total := d.Total()
	if total == 0 {
		return 0
	}
	return ClampAverage(float64(d.Points()) / float64(total))
}

// MarshalJSON renders the distribution as {"1": n, ..., "5": n}, the shape
// the mobile clients have always consumed.
func (d Distribution) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, 5)
	for i, n := range d {
		m[strconv.Itoa(i+1)] = n
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts the {"1": n, ..., "5": n} shape. Unknown keys are
// ignored.
func (d *Distribution) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Distribution
	for k, n := range m {
		r, err := strconv.Atoi(k)
		if err != nil || !ValidRating(r) {
			continue
		}
		out[r-1] = n
	}
	*d = out
	return nil
}

// ClampAverage bounds an average rating to [0,5] and rounds it to two
// decimals.
func ClampAverage(avg float64) float64 {
	if avg < 0 {
		avg = 0
	}
	if avg > float64(MaxRating) {
		avg = float64(MaxRating)
	}
	return math.Round(avg*100) / 100
}

// RatingSnapshot is the denormalized rating aggregate shared by items and
// businesses.
type RatingSnapshot struct {
	Average      float64      `json:"average"`
	Count        int          `json:"count"`
	Distribution Distribution `json:"distribution"`
}
