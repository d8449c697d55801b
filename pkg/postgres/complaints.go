package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/suvidhaen/railsathi-be/pkg/db"
)

const complaintColumns = `
	c.complain_id, COALESCE(c.pnr_number, ''), COALESCE(c.is_pnr_validated, ''),
	COALESCE(c.name, ''), COALESCE(c.mobile_number, ''), COALESCE(c.complain_type, ''),
	COALESCE(c.complain_description, ''), c.complain_date, c.date_of_journey,
	COALESCE(c.complain_status, ''), COALESCE(c.train_number, ''),
	COALESCE(NULLIF(c.train_name, ''), t.train_name, ''), COALESCE(c.coach, ''),
	COALESCE(c.berth_no, ''), COALESCE(t."Depot", ''), c.created_at, COALESCE(c.created_by, ''),
	c.updated_at, COALESCE(c.updated_by, '')`

// The lateral join picks one schedule row per complaint even when a train has several
const complaintFrom = `
	FROM rail_sathi_railsathicomplain c
	LEFT JOIN LATERAL (
		SELECT td.train_name, td."Depot"
		FROM trains_traindetails td
		WHERE td.train_no::text = c.train_number
		ORDER BY td.id
		LIMIT 1
	) t ON TRUE`

// GetComplaintsByDate retrieves complaints created on the given date, newest first.
// A non-nil trainNumbers restricts the result to those train numbers.
func (d *DB) GetComplaintsByDate(ctx context.Context, createdOn time.Time, trainNumbers []string) ([]db.Complaint, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	day := createdOn.Format("2006-01-02")

	var rows *sql.Rows
	var err error
	if trainNumbers == nil {
		rows, err = d.conn.QueryContext(ctx, `SELECT`+complaintColumns+complaintFrom+`
			WHERE DATE(c.created_at) = $1::date
			ORDER BY c.created_at DESC
		`, day)
	} else {
		rows, err = d.conn.QueryContext(ctx, `SELECT`+complaintColumns+complaintFrom+`
			WHERE DATE(c.created_at) = $1::date
			  AND c.train_number = ANY($2)
			ORDER BY c.created_at DESC
		`, day, trainNumbers)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	var complaints []db.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating complaints: %w", err)
	}

	return complaints, nil
}

// GetComplaintByID retrieves a single complaint, or nil if it does not exist
func (d *DB) GetComplaintByID(ctx context.Context, complainID int64) (*db.Complaint, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	row := d.conn.QueryRowContext(ctx, `SELECT`+complaintColumns+complaintFrom+`
		WHERE c.complain_id = $1
	`, complainID)

	c, err := scanComplaint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetMediaForComplaints retrieves the media of all given complaints in one query,
// grouped by complaint id
func (d *DB) GetMediaForComplaints(ctx context.Context, complainIDs []int64) (map[int64][]db.ComplaintMedia, error) {
	media := make(map[int64][]db.ComplaintMedia)
	if len(complainIDs) == 0 {
		return media, nil
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, complain_id, COALESCE(media_type, ''), COALESCE(media_url, ''),
		       created_at, updated_at, COALESCE(created_by, ''), COALESCE(updated_by, '')
		FROM rail_sathi_railsathicomplainmedia
		WHERE complain_id = ANY($1)
		ORDER BY complain_id, id
	`, complainIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaint media: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m db.ComplaintMedia
		if err := rows.Scan(&m.ID, &m.ComplainID, &m.MediaType, &m.MediaURL, &m.CreatedAt, &m.UpdatedAt, &m.CreatedBy, &m.UpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan complaint media: %w", err)
		}
		media[m.ComplainID] = append(media[m.ComplainID], m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating complaint media: %w", err)
	}

	return media, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (db.Complaint, error) {
	var c db.Complaint
	var complainDate, journeyDate sql.NullTime
	err := row.Scan(
		&c.ComplainID, &c.PNRNumber, &c.IsPNRValidated,
		&c.Name, &c.MobileNumber, &c.ComplainType,
		&c.ComplainDescription, &complainDate, &journeyDate,
		&c.ComplainStatus, &c.TrainNumber,
		&c.TrainName, &c.Coach,
		&c.BerthNo, &c.TrainDepot, &c.CreatedAt, &c.CreatedBy,
		&c.UpdatedAt, &c.UpdatedBy,
	)
	if err == sql.ErrNoRows {
		return c, err
	}
	if err != nil {
		return c, fmt.Errorf("failed to scan complaint: %w", err)
	}
	if complainDate.Valid {
		c.ComplainDate = &complainDate.Time
	}
	if journeyDate.Valid {
		c.DateOfJourney = &journeyDate.Time
	}
	return c, nil
}
