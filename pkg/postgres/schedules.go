package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/suvidhaen/railsathi-be/pkg/db"
)

// GetTrainSchedules retrieves schedule rows for the given train numbers.
// train_no is an integer column, so numbers are matched on their text form.
func (d *DB) GetTrainSchedules(ctx context.Context, trainNos []string) ([]db.TrainSchedule, error) {
	if len(trainNos) == 0 {
		return nil, nil
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	rows, err := d.conn.QueryContext(ctx, `
		SELECT train_no::text, COALESCE(train_name, ''), COALESCE("Depot", ''),
		       journey_duration_days, to_char(end_time, 'HH24:MI:SS')
		FROM trains_traindetails
		WHERE train_no::text = ANY($1)
		ORDER BY id
	`, trainNos)
	if err != nil {
		return nil, fmt.Errorf("failed to query train schedules: %w", err)
	}
	defer rows.Close()

	var schedules []db.TrainSchedule
	for rows.Next() {
		var s db.TrainSchedule
		var duration sql.NullInt64
		var endTime sql.NullString
		if err := rows.Scan(&s.TrainNo, &s.TrainName, &s.Depot, &duration, &endTime); err != nil {
			return nil, fmt.Errorf("failed to scan train schedule: %w", err)
		}
		if duration.Valid {
			days := int(duration.Int64)
			s.JourneyDurationDays = &days
		}
		if endTime.Valid {
			s.EndTime = &endTime.String
		}
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating train schedules: %w", err)
	}

	return schedules, nil
}

// GetTrainDepot returns the depot code of the first schedule row matching any of
// the given spellings of a train number, or "" if there is none
func (d *DB) GetTrainDepot(ctx context.Context, trainNos []string) (string, error) {
	if len(trainNos) == 0 {
		return "", nil
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var depot sql.NullString
	err := d.conn.QueryRowContext(ctx, `
		SELECT "Depot"
		FROM trains_traindetails
		WHERE train_no::text = ANY($1)
		ORDER BY id
		LIMIT 1
	`, trainNos).Scan(&depot)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query train depot: %w", err)
	}
	return depot.String, nil
}

// GetDepotTrainNumbers returns the train numbers run by the given depots
func (d *DB) GetDepotTrainNumbers(ctx context.Context, depots []string) ([]string, error) {
	if len(depots) == 0 {
		return nil, nil
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	rows, err := d.conn.QueryContext(ctx, `
		SELECT DISTINCT train_no::text
		FROM trains_traindetails
		WHERE "Depot" = ANY($1)
		ORDER BY 1
	`, depots)
	if err != nil {
		return nil, fmt.Errorf("failed to query depot trains: %w", err)
	}
	defer rows.Close()

	var trains []string
	for rows.Next() {
		var train string
		if err := rows.Scan(&train); err != nil {
			return nil, fmt.Errorf("failed to scan depot train: %w", err)
		}
		trains = append(trains, train)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating depot trains: %w", err)
	}

	return trains, nil
}
