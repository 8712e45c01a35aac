package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esgdash/esgdash/internal/analytics"
	"github.com/esgdash/esgdash/internal/dataset"
	"github.com/esgdash/esgdash/internal/filter"
)

func sessionTable(t *testing.T) *dataset.Table {
	t.Helper()
	return dataset.NewTable([]dataset.Record{
		{Company: "Acme", Region: "NA", Year: 2020, Revenue: 100,
			Margin: dataset.Float(10), Emissions: dataset.Float(340), ESGOverall: 50},
		{Company: "Beta", Region: "EU", Year: 2020, Revenue: 200,
			Margin: dataset.Float(5), Emissions: dataset.Float(120), ESGOverall: 80},
		{Company: "Acme", Region: "NA", Year: 2021, Revenue: 150,
			Margin: dataset.Float(12), Emissions: dataset.Float(280), ESGOverall: 60},
	})
}

func TestSession_SnapshotCoversBaseline(t *testing.T) {
	m := NewManager(sessionTable(t), 0)
	s := m.Create()
	require.NotEmpty(t, s.ID)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, s.Baseline(), snap.State)
	assert.Equal(t, 3.0, snap.Metrics.Companies.Value.Float64)
	assert.Equal(t, analytics.DeltaOmitted, snap.Metrics.Companies.Delta.State)
	assert.Len(t, snap.Trend, 3)
	assert.NotEmpty(t, snap.Charts)
}

func TestSession_UpdateFiltersRecomputes(t *testing.T) {
	m := NewManager(sessionTable(t), 0)
	s := m.Create()

	regions := []string{"NA"}
	snap, err := s.UpdateFilters(filter.Patch{Regions: &regions})
	require.NoError(t, err)
	assert.Equal(t, []string{"NA"}, snap.State.Regions)
	assert.Equal(t, 2.0, snap.Metrics.Companies.Value.Float64)
	assert.Equal(t, analytics.DeltaChanged, snap.Metrics.Companies.Delta.State)
	// Only NA groups remain in the trend.
	for _, row := range snap.Trend {
		assert.Equal(t, "NA", row.Region)
	}
}

func TestSession_RejectedPatchKeepsState(t *testing.T) {
	m := NewManager(sessionTable(t), 0)
	s := m.Create()

	regions := []string{"NA"}
	_, err := s.UpdateFilters(filter.Patch{Regions: &regions})
	require.NoError(t, err)

	bad := []string{"Atlantis"}
	_, err = s.UpdateFilters(filter.Patch{Regions: &bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, filter.ErrUnknownRegion))
	assert.Equal(t, []string{"NA"}, s.State().Regions)
}

func TestSession_ResetRestoresBaseline(t *testing.T) {
	m := NewManager(sessionTable(t), 0)
	s := m.Create()

	yearMin, yearMax := 2021, 2021
	_, err := s.UpdateFilters(filter.Patch{YearMin: &yearMin, YearMax: &yearMax})
	require.NoError(t, err)

	snap, err := s.Reset()
	require.NoError(t, err)
	assert.Equal(t, s.Baseline(), snap.State)
	assert.Equal(t, 3.0, snap.Metrics.Companies.Value.Float64)
}

func TestSession_EmptyTable(t *testing.T) {
	m := NewManager(dataset.NewTable(nil), 0)
	s := m.Create()

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Trend)
	require.NotNil(t, snap.Charts)
	assert.Empty(t, snap.Charts)
	assert.False(t, snap.Metrics.MeanESG.Value.Valid)
}

func TestSession_ConcurrentUpdates(t *testing.T) {
	m := NewManager(sessionTable(t), 0)
	s := m.Create()

	// Rapid alternating updates from one client must serialize: every
	// observed state is a fully committed one, never a torn mix.
	var wg sync.WaitGroup
	for _, region := range []string{"NA", "EU"} {
		regions := []string{region}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				snap, err := s.UpdateFilters(filter.Patch{Regions: &regions})
				assert.NoError(t, err)
				assert.Equal(t, regions, snap.State.Regions)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := s.Snapshot()
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	got := s.State().Regions
	require.Len(t, got, 1)
	assert.Contains(t, []string{"NA", "EU"}, got[0])
}

func TestManager_GetAndLen(t *testing.T) {
	m := NewManager(sessionTable(t), 0)
	a := m.Create()
	b := m.Create()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, m.Len())

	got, ok := m.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = m.Get("not-a-session")
	assert.False(t, ok)
}

func TestManager_SweepEvictsIdleSessions(t *testing.T) {
	m := NewManager(sessionTable(t), time.Minute)
	stale := m.Create()
	fresh := m.Create()
	stale.lastSeen = time.Now().Add(-2 * time.Minute)

	evicted := m.Sweep(time.Now())
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, m.Len())

	_, ok := m.Get(stale.ID)
	assert.False(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)
}

func TestManager_SweepDisabledWithoutTTL(t *testing.T) {
	m := NewManager(sessionTable(t), 0)
	s := m.Create()
	s.lastSeen = time.Now().Add(-time.Hour)

	assert.Equal(t, 0, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Len())
}
