package db

import "time"

// TrainSchedule represents a trains_traindetails record
type TrainSchedule struct {
	TrainNo             string
	TrainName           string
	Depot               string
	JourneyDurationDays *int    // nullable
	EndTime             *string // nullable, "HH:MM:SS"
}

// StaffAccess represents a staff member joined with their raw train access blob
type StaffAccess struct {
	StaffID            int64
	Phone              string
	Email              string
	FCMToken           string
	FCMTokenCoachSathi string
	TrainAccess        []byte // JSON text column, may be malformed
}

// StaffMember represents a user_onboarding_user record with its role name
type StaffMember struct {
	ID                 int64
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	FCMToken           string
	FCMTokenCoachSathi string
	Role               string
}

// Complaint represents a rail_sathi_railsathicomplain record
type Complaint struct {
	ComplainID          int64      `json:"complain_id"`
	PNRNumber           string     `json:"pnr_number"`
	IsPNRValidated      string     `json:"is_pnr_validated"`
	Name                string     `json:"name"`
	MobileNumber        string     `json:"mobile_number"`
	ComplainType        string     `json:"complain_type"`
	ComplainDescription string     `json:"complain_description"`
	ComplainDate        *time.Time `json:"complain_date"`
	DateOfJourney       *time.Time `json:"date_of_journey"`
	ComplainStatus      string     `json:"complain_status"`
	TrainNumber         string     `json:"train_number"`
	TrainName           string     `json:"train_name"`
	Coach               string     `json:"coach"`
	BerthNo             string     `json:"berth_no"`
	TrainDepot          string     `json:"train_depot"`
	CreatedAt           time.Time  `json:"created_at"`
	CreatedBy           string     `json:"created_by"`
	UpdatedAt           time.Time  `json:"updated_at"`
	UpdatedBy           string     `json:"updated_by"`
}

// ComplaintMedia represents a rail_sathi_railsathicomplainmedia record
type ComplaintMedia struct {
	ID         int64     `json:"id"`
	ComplainID int64     `json:"-"`
	MediaType  string    `json:"media_type"`
	MediaURL   string    `json:"media_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CreatedBy  string    `json:"created_by"`
	UpdatedBy  string    `json:"updated_by"`
}

// Role names as stored in user_onboarding_roles
const (
	RoleWarRoomUser          = "war room user"
	RoleWarRoomUserRailSathi = "war room user railsathi"
	RoleS2Admin              = "s2 admin"
	RoleRailwayAdmin         = "railway admin"
	RoleRailwayOfficer       = "railway officer"
)

// DedupeStaff removes repeated staff members by ID, keeping first-seen order.
// When a member appears more than once, the record carrying push tokens is preferred.
func DedupeStaff(members []StaffMember) []StaffMember {
	index := make(map[int64]int, len(members))
	result := make([]StaffMember, 0, len(members))

	for _, m := range members {
		i, exists := index[m.ID]
		if !exists {
			index[m.ID] = len(result)
			result = append(result, m)
			continue
		}
		if !result[i].hasTokens() && m.hasTokens() {
			result[i] = m
		}
	}

	return result
}

func (m StaffMember) hasTokens() bool {
	return m.FCMToken != "" || m.FCMTokenCoachSathi != ""
}
