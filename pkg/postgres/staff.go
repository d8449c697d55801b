package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/suvidhaen/railsathi-be/pkg/db"
)

// GetStaffWithTrainAccess retrieves enabled staff with a non-empty train access
// blob, ordered by staff id. Phone may be empty for staff reached only by push.
func (d *DB) GetStaffWithTrainAccess(ctx context.Context) ([]db.StaffAccess, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	rows, err := d.conn.QueryContext(ctx, `
		SELECT u.id, COALESCE(u.phone, ''), COALESCE(u.email, ''), COALESCE(u.fcm_token, ''),
		       COALESCE(u.fcm_token_coachsathi, ''), ta.train_details
		FROM user_onboarding_user u
		JOIN trains_trainaccess ta ON ta.user_id = u.id
		WHERE ta.train_details IS NOT NULL
		  AND ta.train_details != '{}'
		  AND ta.train_details != 'null'
		  AND u.user_status = 'enabled'
		ORDER BY u.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff train access: %w", err)
	}
	defer rows.Close()

	var staff []db.StaffAccess
	for rows.Next() {
		var s db.StaffAccess
		var access sql.NullString
		if err := rows.Scan(&s.StaffID, &s.Phone, &s.Email, &s.FCMToken, &s.FCMTokenCoachSathi, &access); err != nil {
			return nil, fmt.Errorf("failed to scan staff train access: %w", err)
		}
		s.TrainAccess = []byte(access.String)
		staff = append(staff, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff train access: %w", err)
	}

	return staff, nil
}

// GetDepotStaff retrieves enabled users of a depot holding any of the given roles
func (d *DB) GetDepotStaff(ctx context.Context, depot string, roles []string) ([]db.StaffMember, error) {
	if depot == "" || len(roles) == 0 {
		return nil, nil
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	rows, err := d.conn.QueryContext(ctx, `
		SELECT DISTINCT u.id, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
		       COALESCE(u.email, ''), COALESCE(u.phone, ''), COALESCE(u.fcm_token, ''),
		       COALESCE(u.fcm_token_coachsathi, ''), ut.name
		FROM user_onboarding_user u
		JOIN user_onboarding_roles ut ON u.user_type_id = ut.id
		JOIN user_onboarding_user_depots ud ON ud.user_id = u.id
		JOIN station_depot d ON d.depot_id = ud.depot_id
		WHERE ut.name = ANY($2)
		  AND d.depot_code = $1
		  AND u.user_status = 'enabled'
		ORDER BY u.id
	`, depot, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to query depot staff: %w", err)
	}
	defer rows.Close()

	var staff []db.StaffMember
	for rows.Next() {
		var m db.StaffMember
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.FCMToken, &m.FCMTokenCoachSathi, &m.Role); err != nil {
			return nil, fmt.Errorf("failed to scan depot staff: %w", err)
		}
		staff = append(staff, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating depot staff: %w", err)
	}

	return staff, nil
}

// GetWarRoomPhone returns the phone of the first war room user whose depot list
// contains depot, or "" if there is none
func (d *DB) GetWarRoomPhone(ctx context.Context, depot string) (string, error) {
	if depot == "" {
		return "", nil
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var phone string
	err := d.conn.QueryRowContext(ctx, `
		SELECT u.phone
		FROM user_onboarding_user u
		JOIN user_onboarding_roles ut ON u.user_type_id = ut.id
		WHERE ut.name = $2
		  AND $1 = ANY(string_to_array(replace(u.depo, ' ', ''), ','))
		  AND u.user_status = 'enabled'
		  AND u.phone IS NOT NULL
		  AND u.phone != ''
		ORDER BY u.id
		LIMIT 1
	`, depot, db.RoleWarRoomUserRailSathi).Scan(&phone)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query war room user: %w", err)
	}
	return phone, nil
}

// GetUserDepots returns the depot codes of the user with the given mobile number
func (d *DB) GetUserDepots(ctx context.Context, mobile string) ([]string, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	rows, err := d.conn.QueryContext(ctx, `
		SELECT d.depot_code
		FROM user_onboarding_user u
		JOIN user_onboarding_user_depots ud ON u.id = ud.user_id
		JOIN station_depot d ON ud.depot_id = d.depot_id
		WHERE u.phone = $1
		ORDER BY d.depot_code
	`, mobile)
	if err != nil {
		return nil, fmt.Errorf("failed to query user depots: %w", err)
	}
	defer rows.Close()

	var depots []string
	for rows.Next() {
		var depot string
		if err := rows.Scan(&depot); err != nil {
			return nil, fmt.Errorf("failed to scan user depot: %w", err)
		}
		depots = append(depots, depot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user depots: %w", err)
	}

	return depots, nil
}
