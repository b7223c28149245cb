package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpley(t *testing.T) {
	assert.Equal(t, 116.7, Epley(100, 5))
	// A single rep still gets the formula applied, not a shortcut.
	assert.Equal(t, 103.3, Epley(100, 1))
	assert.Equal(t, 140.0, Epley(120, 5))

	// More reps at the same weight never estimates lower.
	prev := 0.0
	for reps := 1; reps <= 12; reps++ {
		e := Epley(100, reps)
		assert.GreaterOrEqual(t, e, prev)
		prev = e
	}
}

func TestE1RMSeries(t *testing.T) {
	w := func(v float64) *float64 { return &v }
	day1 := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 12, 18, 0, 0, 0, time.UTC)

	sets := []LoggedSet{
		{ExerciseName: "squat", Reps: 5, WeightKg: w(100), PerformedAt: day2},
		{ExerciseName: "squat", Reps: 3, WeightKg: w(110), PerformedAt: day1},
		{ExerciseName: "squat", Reps: 1, WeightKg: w(125), PerformedAt: day1.Add(2 * time.Hour)},
		{ExerciseName: "squat", Reps: 0, WeightKg: w(200), PerformedAt: day1}, // no reps, skipped
		{ExerciseName: "squat", Reps: 5, WeightKg: nil, PerformedAt: day1},    // bodyweight, skipped
	}

	points := E1RMSeries(sets)
	require.Len(t, points, 2)

	// Ascending by day, best estimate per day.
	assert.Equal(t, "2026-02-10", points[0].Day)
	assert.Equal(t, 129.2, points[0].E1RM) // 125 x 1 beats 110 x 3 (121.0)
	assert.Equal(t, "2026-02-12", points[1].Day)
	assert.Equal(t, 116.7, points[1].E1RM)
}

func TestVolumeByExercise(t *testing.T) {
	w := func(v float64) *float64 { return &v }
	now := time.Now()
	sets := []LoggedSet{
		{ExerciseName: "squat", Reps: 5, WeightKg: w(100), PerformedAt: now},
		{ExerciseName: "squat", Reps: 5, WeightKg: w(100), PerformedAt: now},
		{ExerciseName: "bench", Reps: 8, WeightKg: w(80), PerformedAt: now},
		{ExerciseName: "pullup", Reps: 10, WeightKg: nil, PerformedAt: now},
	}

	rows := VolumeByExercise(sets)
	require.Len(t, rows, 2)

	// Heaviest mover first.
	assert.Equal(t, VolumeRow{Key: "squat", TonnageKg: 1000}, rows[0])
	assert.Equal(t, VolumeRow{Key: "bench", TonnageKg: 640}, rows[1])
}

func TestVolumeByBucket(t *testing.T) {
	w := func(v float64) *float64 { return &v }
	monday := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	sets := []LoggedSet{
		{ExerciseName: "squat", Reps: 5, WeightKg: w(100), PerformedAt: monday},
		{ExerciseName: "squat", Reps: 5, WeightKg: w(100), PerformedAt: monday.AddDate(0, 0, 2)},
		{ExerciseName: "squat", Reps: 5, WeightKg: w(100), PerformedAt: monday.AddDate(0, 0, 7)},
	}

	t.Run("week buckets use ISO week labels", func(t *testing.T) {
		rows := VolumeByBucket(sets, BucketWeek)
		require.Len(t, rows, 2)
		assert.Equal(t, VolumeRow{Key: "2026-W02", TonnageKg: 1000}, rows[0])
		assert.Equal(t, VolumeRow{Key: "2026-W03", TonnageKg: 500}, rows[1])
	})

	t.Run("month buckets collapse everything in January", func(t *testing.T) {
		rows := VolumeByBucket(sets, BucketMonth)
		require.Len(t, rows, 1)
		assert.Equal(t, VolumeRow{Key: "2026-01", TonnageKg: 1500}, rows[0])
	})

	t.Run("day buckets stay chronological", func(t *testing.T) {
		rows := VolumeByBucket(sets, BucketDay)
		require.Len(t, rows, 3)
		assert.Equal(t, "2026-01-05", rows[0].Key)
		assert.Equal(t, "2026-01-12", rows[2].Key)
	})
}

func TestParseBucket(t *testing.T) {
	b, err := ParseBucket("")
	require.NoError(t, err)
	assert.Equal(t, BucketDay, b)

	b, err = ParseBucket("week")
	require.NoError(t, err)
	assert.Equal(t, BucketWeek, b)

	_, err = ParseBucket("fortnight")
	assert.Error(t, err)
}

func TestCompliance(t *testing.T) {
	assert.Equal(t, 0.0, Compliance(0, 5))
	assert.Equal(t, 1.0, Compliance(4, 4))
	assert.Equal(t, 0.667, Compliance(3, 2))
	// Logging more than planned clamps at full compliance.
	assert.Equal(t, 1.0, Compliance(3, 7))
	assert.Equal(t, 0.0, Compliance(3, 0))
}
