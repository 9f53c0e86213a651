// Package grading derives grades, module lock state and certificate
// eligibility from stored attempt and progress rows. It performs no I/O.
package grading

import (
	"math"
	"sort"
	"time"
)

// Attempt is the grading view of a stored test attempt.
type Attempt struct {
	ID          uint
	TestID      uint
	Score       int
	Total       int
	CompletedAt time.Time
}

// Percentage returns 100 * Score / Total. Callers must reject Total <= 0.
func (a Attempt) Percentage() float64 {
	return float64(100*a.Score) / float64(a.Total)
}

// Result is the output of Aggregate.
type Result struct {
	// Grade is nil when no test has a usable attempt.
	Grade                *float64
	CompletedModuleCount int
	// Latest holds the authoritative attempt per test, ordered by TestID.
	Latest []Attempt
	// Skipped lists attempts ignored because their total was not positive.
	Skipped []uint
}

// LatestPerTest keeps the most recent attempt of every test. Attempts are
// ordered by CompletedAt descending with the higher ID winning a tie, so the
// choice does not depend on input order.
func LatestPerTest(attempts []Attempt) []Attempt {
	sorted := make([]Attempt, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CompletedAt.Equal(sorted[j].CompletedAt) {
			return sorted[i].CompletedAt.After(sorted[j].CompletedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	seen := make(map[uint]bool, len(sorted))
	latest := make([]Attempt, 0, len(sorted))
	for _, a := range sorted {
		if seen[a.TestID] {
			continue
		}
		seen[a.TestID] = true
		latest = append(latest, a)
	}

	sort.Slice(latest, func(i, j int) bool { return latest[i].TestID < latest[j].TestID })
	return latest
}

// Aggregate computes the overall grade as the mean percentage of the latest
// attempt per test, rounded to one decimal place.
func Aggregate(attempts []Attempt) Result {
	var res Result

	valid := make([]Attempt, 0, len(attempts))
	for _, a := range attempts {
		if a.Total <= 0 {
			res.Skipped = append(res.Skipped, a.ID)
			continue
		}
		valid = append(valid, a)
	}

	res.Latest = LatestPerTest(valid)
	res.CompletedModuleCount = len(res.Latest)
	if res.CompletedModuleCount == 0 {
		return res
	}

	var sum float64
	for _, a := range res.Latest {
		sum += a.Percentage()
	}
	grade := Round1(sum / float64(res.CompletedModuleCount))
	res.Grade = &grade
	return res
}

// Round1 rounds v to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
