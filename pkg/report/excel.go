package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/suvidhaen/railsathi-be/pkg/core/journey"
	"github.com/suvidhaen/railsathi-be/pkg/core/services"
)

// ComplaintSheet is the name of the worksheet holding the complaints
const ComplaintSheet = "Complaints"

// ComplaintHeader lists the exported columns in order
var ComplaintHeader = []string{
	"Complaint ID",
	"Created At",
	"Train Number",
	"Train Name",
	"Depot",
	"Coach",
	"Berth",
	"PNR",
	"Passenger",
	"Mobile",
	"Type",
	"Status",
	"Date of Journey",
	"Description",
	"Support Contact",
	"Media Files",
}

var columnWidths = []float64{12, 20, 12, 24, 10, 8, 8, 14, 20, 14, 14, 12, 14, 50, 16, 12}

// ComplaintsWorkbook renders enriched complaints as an xlsx workbook
func ComplaintsWorkbook(complaints []services.EnrichedComplaint) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ComplaintSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(ComplaintSheet, "A1", &ComplaintHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(ComplaintHeader))
	if err != nil {
		return nil, fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetCellStyle(ComplaintSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(ComplaintSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, c := range complaints {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := complaintRow(c)
		if err := f.SetSheetRow(ComplaintSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write complaint %d: %w", c.ComplainID, err)
		}
	}

	if err := f.SetPanes(ComplaintSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header row: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func complaintRow(c services.EnrichedComplaint) []any {
	return []any{
		c.ComplainID,
		formatTime(c.CreatedAt),
		c.TrainNumber,
		c.TrainName,
		c.TrainDepot,
		c.Coach,
		c.BerthNo,
		c.PNRNumber,
		c.Name,
		c.MobileNumber,
		c.ComplainType,
		c.ComplainStatus,
		formatDate(c.DateOfJourney),
		strings.TrimSpace(c.ComplainDescription),
		c.SupportContact,
		len(c.Media),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(journey.DateLayout)
}
