package db

import (
	"context"
	"time"
)

// ScheduleStore defines the interface for train schedule lookups
type ScheduleStore interface {
	GetTrainSchedules(ctx context.Context, trainNos []string) ([]TrainSchedule, error)
	GetTrainDepot(ctx context.Context, trainNos []string) (string, error)
	GetDepotTrainNumbers(ctx context.Context, depots []string) ([]string, error)
}

// StaffStore defines the interface for staff and access grant lookups
type StaffStore interface {
	GetStaffWithTrainAccess(ctx context.Context) ([]StaffAccess, error)
	GetDepotStaff(ctx context.Context, depot string, roles []string) ([]StaffMember, error)
	GetWarRoomPhone(ctx context.Context, depot string) (string, error)
	GetUserDepots(ctx context.Context, mobile string) ([]string, error)
}

// ComplaintStore defines the interface for complaint and media reads
type ComplaintStore interface {
	GetComplaintsByDate(ctx context.Context, createdOn time.Time, trainNumbers []string) ([]Complaint, error)
	GetComplaintByID(ctx context.Context, complainID int64) (*Complaint, error)
	GetMediaForComplaints(ctx context.Context, complainIDs []int64) (map[int64][]ComplaintMedia, error)
}

// Migrator applies schema migrations
type Migrator interface {
	RunMigrations(ctx context.Context) error
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	Migrator
	ScheduleStore
	StaffStore
	ComplaintStore
}
