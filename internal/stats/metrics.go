package stats

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// LoggedSet is the stats-facing view of a performed set: the fields the
// metric computations need, joined with the owning log's performed time.
type LoggedSet struct {
	ExerciseName string
	Reps         int
	WeightKg     *float64
	PerformedAt  time.Time
}

// Epley estimates a one-rep max from a performed set, rounded to one decimal:
// weight × (1 + reps/30).
func Epley(weightKg float64, reps int) float64 {
	return math.Round(weightKg*(1+float64(reps)/30)*10) / 10
}

// E1RMPoint is the best estimated one-rep max achieved on a calendar day.
type E1RMPoint struct {
	Day  string  `json:"day"`
	E1RM float64 `json:"e1rm"`
}

// E1RMSeries computes the Epley e1RM for every set with a weight and reps,
// keeps the maximum per calendar day (UTC), and returns the points ascending
// by day.
func E1RMSeries(sets []LoggedSet) []E1RMPoint {
	best := make(map[string]float64)
	for _, s := range sets {
		if s.WeightKg == nil || s.Reps <= 0 {
			continue
		}
		day := s.PerformedAt.UTC().Format("2006-01-02")
		e1rm := Epley(*s.WeightKg, s.Reps)
		if e1rm > best[day] {
			best[day] = e1rm
		}
	}
	points := make([]E1RMPoint, 0, len(best))
	for day, e1rm := range best {
		points = append(points, E1RMPoint{Day: day, E1RM: e1rm})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day < points[j].Day })
	return points
}

// VolumeRow is the tonnage accumulated under one grouping key (an exercise
// name or a time bucket label).
type VolumeRow struct {
	Key       string  `json:"key"`
	TonnageKg float64 `json:"tonnageKg"`
}

// VolumeByExercise sums weight × reps per exercise. Rows are ordered by
// descending tonnage, then name, so the heaviest movers come first.
func VolumeByExercise(sets []LoggedSet) []VolumeRow {
	totals := make(map[string]float64)
	for _, s := range sets {
		if s.WeightKg == nil {
			continue
		}
		totals[s.ExerciseName] += *s.WeightKg * float64(s.Reps)
	}
	rows := make([]VolumeRow, 0, len(totals))
	for name, tonnage := range totals {
		rows = append(rows, VolumeRow{Key: name, TonnageKg: round1(tonnage)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TonnageKg != rows[j].TonnageKg {
			return rows[i].TonnageKg > rows[j].TonnageKg
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// Bucket selects the truncation applied to a log's performed timestamp when
// grouping volume over time.
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
)

// ParseBucket validates a bucket query value, defaulting to day.
func ParseBucket(raw string) (Bucket, error) {
	switch Bucket(raw) {
	case BucketDay, BucketWeek, BucketMonth:
		return Bucket(raw), nil
	case "":
		return BucketDay, nil
	}
	return "", fmt.Errorf("unknown bucket %q", raw)
}

// VolumeByBucket sums weight × reps per time bucket (UTC truncation of the
// performed timestamp). Rows are ordered chronologically.
func VolumeByBucket(sets []LoggedSet, bucket Bucket) []VolumeRow {
	totals := make(map[string]float64)
	for _, s := range sets {
		if s.WeightKg == nil {
			continue
		}
		totals[bucketKey(s.PerformedAt, bucket)] += *s.WeightKg * float64(s.Reps)
	}
	rows := make([]VolumeRow, 0, len(totals))
	for key, tonnage := range totals {
		rows = append(rows, VolumeRow{Key: key, TonnageKg: round1(tonnage)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

func bucketKey(t time.Time, bucket Bucket) string {
	t = t.UTC()
	switch bucket {
	case BucketWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case BucketMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// Compliance is done/planned rounded to three decimals, clamped to [0, 1],
// and defined as 0 when nothing was planned.
func Compliance(planned, done int) float64 {
	if planned <= 0 {
		return 0
	}
	ratio := float64(done) / float64(planned)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return math.Round(ratio*1000) / 1000
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
