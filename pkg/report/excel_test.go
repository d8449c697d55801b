package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/suvidhaen/railsathi-be/pkg/core/services"
	"github.com/suvidhaen/railsathi-be/pkg/db"
)

func TestComplaintsWorkbook(t *testing.T) {
	doj := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	complaints := []services.EnrichedComplaint{
		{
			Complaint: db.Complaint{
				ComplainID:          42,
				TrainNumber:         "12333",
				TrainName:           "Vibhuti Express",
				TrainDepot:          "BCT",
				Coach:               "A1",
				BerthNo:             "23",
				Name:                "Asha",
				ComplainDescription: "  Fan not working ",
				DateOfJourney:       &doj,
				CreatedAt:           time.Date(2025, 6, 10, 9, 5, 0, 0, time.UTC),
			},
			SupportContact: "9000000001",
			Media:          []db.ComplaintMedia{{ID: 1}, {ID: 2}},
		},
		{
			Complaint: db.Complaint{ComplainID: 43, TrainNumber: "22222", Coach: "S4"},
			Media:     []db.ComplaintMedia{},
		},
	}

	data, err := ComplaintsWorkbook(complaints)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ComplaintSheet}, f.GetSheetList())

	rows, err := f.GetRows(ComplaintSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, ComplaintHeader, rows[0])
	assert.Equal(t, "42", rows[1][0])
	assert.Equal(t, "2025-06-10 09:05:00", rows[1][1])
	assert.Equal(t, "BCT", rows[1][4])
	assert.Equal(t, "2025-06-08", rows[1][12])
	assert.Equal(t, "Fan not working", rows[1][13])
	assert.Equal(t, "9000000001", rows[1][14])
	assert.Equal(t, "2", rows[1][15])

	assert.Equal(t, "43", rows[2][0])
	assert.Equal(t, "", rows[2][1])
}

func TestComplaintsWorkbook_Empty(t *testing.T) {
	data, err := ComplaintsWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ComplaintSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
