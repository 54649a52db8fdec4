package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curesight/client-go/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, store.InitSchema())
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, models.InputText, "fever", "en-US", &models.AnalysisResult{
		Category:       "Respiratory",
		Severity:       "Moderate",
		Recommendation: "See a doctor",
		Reason:         "persistent fever",
	}))

	subs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	assert.Equal(t, models.InputText, subs[0].Modality)
	assert.Equal(t, "fever", subs[0].SymptomText)
	assert.Equal(t, "Respiratory", subs[0].Category)
	assert.Equal(t, "persistent fever", subs[0].Reason)
	assert.WithinDuration(t, time.Now(), subs[0].CreatedAt, time.Minute)
}

func TestRecentOrdersNewestFirstAndLimits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	verdict := &models.AnalysisResult{Category: "General", Severity: "Low", Recommendation: "Rest"}
	require.NoError(t, store.Record(ctx, models.InputText, "first", "en-US", verdict))
	require.NoError(t, store.Record(ctx, models.InputImage, "second", "en-US", verdict))
	require.NoError(t, store.Record(ctx, models.InputAudio, "third", "en-US", verdict))

	subs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestRecentOnEmptyStore(t *testing.T) {
	store := newTestStore(t)

	subs, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
