package services

import (
	"context"
	"sync"
	"time"

	"github.com/suvidhaen/railsathi-be/pkg/clients/notifyclient"
	"github.com/suvidhaen/railsathi-be/pkg/db"
)

// mockStore implements every store interface used by the services
type mockStore struct {
	mu sync.Mutex

	schedules   []db.TrainSchedule
	staff       []db.StaffAccess
	complaints  []db.Complaint
	media       map[int64][]db.ComplaintMedia
	depot       string
	depotStaff  []db.StaffMember
	warRoom     string
	userDepots  []string
	depotTrains []string

	scheduleErr  error
	staffErr     error
	complaintErr error
	mediaErr     error
	depotErr     error
	warRoomErr   error

	scheduleCalls  int
	staffCalls     int
	mediaCalls     int
	requestedRoles []string
	trainFilter    []string
}

func (m *mockStore) GetTrainSchedules(ctx context.Context, trainNos []string) ([]db.TrainSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleCalls++
	if m.scheduleErr != nil {
		return nil, m.scheduleErr
	}
	return m.schedules, nil
}

func (m *mockStore) GetStaffWithTrainAccess(ctx context.Context) ([]db.StaffAccess, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staffCalls++
	if m.staffErr != nil {
		return nil, m.staffErr
	}
	return m.staff, nil
}

func (m *mockStore) GetComplaintsByDate(ctx context.Context, createdOn time.Time, trainNumbers []string) ([]db.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainFilter = trainNumbers
	if m.complaintErr != nil {
		return nil, m.complaintErr
	}
	return m.complaints, nil
}

func (m *mockStore) GetMediaForComplaints(ctx context.Context, complainIDs []int64) (map[int64][]db.ComplaintMedia, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mediaCalls++
	if m.mediaErr != nil {
		return nil, m.mediaErr
	}
	if m.media == nil {
		return map[int64][]db.ComplaintMedia{}, nil
	}
	return m.media, nil
}

func (m *mockStore) GetUserDepots(ctx context.Context, mobile string) ([]string, error) {
	return m.userDepots, nil
}

func (m *mockStore) GetDepotTrainNumbers(ctx context.Context, depots []string) ([]string, error) {
	return m.depotTrains, nil
}

func (m *mockStore) GetTrainDepot(ctx context.Context, trainNos []string) (string, error) {
	if m.depotErr != nil {
		return "", m.depotErr
	}
	return m.depot, nil
}

func (m *mockStore) GetWarRoomPhone(ctx context.Context, depot string) (string, error) {
	if m.warRoomErr != nil {
		return "", m.warRoomErr
	}
	return m.warRoom, nil
}

func (m *mockStore) GetDepotStaff(ctx context.Context, depot string, roles []string) ([]db.StaffMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestedRoles = roles
	return m.depotStaff, nil
}

// mockMailer records sent emails
type mockMailer struct {
	mu       sync.Mutex
	to       []string
	subjects []string
	bodies   []string
	err      error
}

func (m *mockMailer) SendEmail(to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.to = to
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, body)
	return nil
}

// mockNotifier records sent notifications
type mockNotifier struct {
	mu     sync.Mutex
	pushes []notifyclient.PushPayload
	inApps []notifyclient.InAppPayload
	err    error
}

func (m *mockNotifier) SendPush(ctx context.Context, payload notifyclient.PushPayload) (notifyclient.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.pushes = append(m.pushes, payload)
	return notifyclient.Response{"status": "ok"}, nil
}

func (m *mockNotifier) SendInApp(ctx context.Context, payload notifyclient.InAppPayload) (notifyclient.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.inApps = append(m.inApps, payload)
	return notifyclient.Response{"status": "ok"}, nil
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
