package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
	"github.com/suvidhaen/railsathi-be/pkg/db"
)

func TestExtractCoachPairs(t *testing.T) {
	complaints := []db.Complaint{
		{ComplainID: 1, TrainNumber: "012333", Coach: " a1 "},
		{ComplainID: 2, TrainNumber: "12333", Coach: "A1"},
		{ComplainID: 3, TrainNumber: "12333", Coach: ""},
		{ComplainID: 4, TrainNumber: "", Coach: "S4"},
		{ComplainID: 5, TrainNumber: "22222", Coach: "S4"},
	}

	pairs, trains := ExtractCoachPairs(complaints)

	assert.Equal(t, []routing.Pair{
		{Train: "012333", Coach: "A1"},
		{Train: "12333", Coach: "A1"},
		{Train: "22222", Coach: "S4"},
	}, pairs)
	assert.Equal(t, []string{"012333", "12333", "22222"}, trains)
}

func TestExtractCoachPairs_Empty(t *testing.T) {
	pairs, trains := ExtractCoachPairs(nil)

	assert.Empty(t, pairs)
	assert.Empty(t, trains)
}

func TestComplaintIDs(t *testing.T) {
	ids := complaintIDs([]db.Complaint{{ComplainID: 3}, {ComplainID: 1}, {ComplainID: 3}})

	require.Len(t, ids, 2)
	assert.Equal(t, []int64{3, 1}, ids)
}

func TestExpandTrainSpellings(t *testing.T) {
	expanded := expandTrainSpellings([]string{"12333", "012333", "2841"})

	assert.ElementsMatch(t, []string{"12333", "012333", "2841", "02841"}, expanded)
}

func TestValidationInstant(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC) // 01:30 on the 11th in IST

	today := ValidationInstant(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), now, ist)
	assert.True(t, today.Equal(now))
	assert.Equal(t, ist, today.Location())

	past := ValidationInstant(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), now, ist)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, ist), past)
}
