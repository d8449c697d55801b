package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/cache"
	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
	"github.com/suvidhaen/railsathi-be/pkg/db"
)

type staticStore struct {
	staff []db.StaffAccess
}

func (s *staticStore) GetTrainSchedules(ctx context.Context, trainNos []string) ([]db.TrainSchedule, error) {
	return nil, nil
}

func (s *staticStore) GetStaffWithTrainAccess(ctx context.Context) ([]db.StaffAccess, error) {
	return s.staff, nil
}

func buildIndex(t *testing.T) *routing.AssignmentIndex {
	t.Helper()
	store := &staticStore{staff: []db.StaffAccess{
		{StaffID: 1, Phone: "9000000001", TrainAccess: []byte(`{"12333": [{"origin_date": "2025-06-10", "ut": "EHK", "coach_numbers": ["A1"]}]}`)},
	}}
	queryDate := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	index, err := routing.NewBuilder(store, nil, zap.NewNop()).Build(context.Background(), queryDate, queryDate, []string{"12333"})
	require.NoError(t, err)
	return index
}

func TestIndexCache_RoundTrip(t *testing.T) {
	kv := newFakeKVStore()
	c := cache.NewIndexCache(kv, time.Minute, zap.NewNop())
	index := buildIndex(t)

	require.NoError(t, c.SetIndex(context.Background(), "k", index))

	cached, found, err := c.GetIndex(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, found)

	contact, ok := cached.ExactContact("12333", "A1")
	assert.True(t, ok)
	assert.Equal(t, "9000000001", contact)
	contact, ok = cached.EHKContact("12333")
	assert.True(t, ok)
	assert.Equal(t, "9000000001", contact)
}

func TestIndexCache_MissAndExpiry(t *testing.T) {
	kv := newFakeKVStore()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }
	c := cache.NewIndexCache(kv, time.Minute, zap.NewNop())

	_, found, err := c.GetIndex(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetIndex(context.Background(), "k", routing.NewAssignmentIndex()))
	_, found, err = c.GetIndex(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(2 * time.Minute)
	_, found, err = c.GetIndex(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIndexCache_CorruptEntryIsMiss(t *testing.T) {
	kv := newFakeKVStore()
	require.NoError(t, kv.Set(context.Background(), "k", "{not json", 0))
	c := cache.NewIndexCache(kv, 0, zap.NewNop())

	_, found, err := c.GetIndex(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIndexCache_StoreErrors(t *testing.T) {
	kv := newFakeKVStore()
	kv.err = errors.New("connection reset")
	c := cache.NewIndexCache(kv, time.Minute, zap.NewNop())

	_, _, err := c.GetIndex(context.Background(), "k")
	assert.ErrorContains(t, err, "failed to get cached index")

	err = c.SetIndex(context.Background(), "k", routing.NewAssignmentIndex())
	assert.ErrorContains(t, err, "failed to set cached index")
}
