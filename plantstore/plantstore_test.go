package plantstore

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return store
}

func TestPlantRoundTrip(t *testing.T) {

	store := newTestStore(t)

	err := store.SavePlant("solarfarm", "abc-123", []string{"INV1", "INV2"}, "WETH1", 150)
	require.NoError(t, err)

	plant, err := store.LoadPlant("solarfarm")
	require.NoError(t, err)
	require.NotNil(t, plant)
	assert.Equal(t, "abc-123", plant.PlantUID)
	assert.Equal(t, "WETH1", plant.WeatherID)

	ids, err := plant.Inverters()
	require.NoError(t, err)
	assert.Equal(t, []string{"INV1", "INV2"}, ids)

	missing, err := store.LoadPlant("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAddReadingsIsIdempotent(t *testing.T) {

	store := newTestStore(t)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reading := telemetry.NewReading(t0, "INV1")
	reading.Power = 50
	reading.POA = math.NaN() // stored as zero

	require.NoError(t, store.AddReadings("abc-123", []telemetry.Reading{reading}))
	require.NoError(t, store.AddReadings("abc-123", []telemetry.Reading{reading}))

	readings, err := store.GetReadings("abc-123", "INV1", t0.Add(-time.Hour), t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, readings, 1, "re-importing the same reading must not duplicate it")
	assert.InDelta(t, 50, readings[0].Power, 1e-12)
	assert.InDelta(t, 0, readings[0].POA, 1e-12)
}

func TestSummaryLifecycle(t *testing.T) {

	store := newTestStore(t)

	summary := StoredSummary{
		ID:       uuid.New(),
		Time:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		PlantUID: "abc-123",
		Kind:     "fouling",
		Payload:  `{"fouling_index":0.12}`,
	}
	require.NoError(t, store.AddSummary(summary))

	fresh, err := store.GetSummaries(10, true)
	require.NoError(t, err)
	require.Len(t, fresh, 1)

	// a failed upload moves the summary from the fresh to the old bucket
	require.NoError(t, store.IncrementUploadAttemptCount(fresh))

	fresh, err = store.GetSummaries(10, true)
	require.NoError(t, err)
	assert.Empty(t, fresh)

	old, err := store.GetSummaries(10, false)
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, uint(1), old[0].UploadAttemptCount)

	require.NoError(t, store.DeleteSummaries(old))
	old, err = store.GetSummaries(10, false)
	require.NoError(t, err)
	assert.Empty(t, old)
}
