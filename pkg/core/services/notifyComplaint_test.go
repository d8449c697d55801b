package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/db"
)

func sampleNotice() ComplaintNotice {
	return ComplaintNotice{
		ComplainID:       42,
		PassengerName:    "Asha",
		PassengerPhone:   "9876543210",
		TrainNumber:      "12333",
		TrainName:        "Vibhuti Express",
		CommencementDate: "2025-06-08",
		Coach:            "A1",
		BerthNo:          "23",
		Description:      "Fan not working",
		Depot:            "BCT",
		SubmittedAt:      time.Date(2025, 6, 10, 9, 5, 0, 0, time.UTC),
	}
}

func TestBuildComplaintPush(t *testing.T) {
	push := BuildComplaintPush(sampleNotice(), []string{"tok-1"})

	assert.Equal(t, []string{"tok-1"}, push.Tokens)
	assert.Equal(t, "Railsathi Complaint - 12333 (A1 - 23)", push.Title)
	assert.Equal(t, "Name: Asha | 9876543210\nTrain: 12333 | A1/23\nComplaint: Fan not working", push.Body)
	assert.Equal(t, "default", push.NotificationType)

	assert.Equal(t, "passenger_complaint", push.Data["notification_type"])
	assert.Equal(t, "42", push.Data["complaint_id"])
	assert.Equal(t, "10 Jun 2025, 09:05", push.Data["submitted_date"])
	assert.Equal(t, "PNR not provided by passenger", push.Data["pnr"])
	assert.Equal(t, "normal", push.Data["priority"])
	assert.Equal(t, "false", push.Data["action_required"])
	assert.Equal(t, "railops://complaints/42", push.Data["deep_link"])
	assert.Equal(t, "complaint_details", push.Data["screen"])
}

func TestBuildComplaintPush_UrgentPriority(t *testing.T) {
	notice := sampleNotice()
	notice.Priority = "Urgent"
	notice.PNRNumber = "4512345678"

	push := BuildComplaintPush(notice, nil)

	assert.Contains(t, push.Body, "IMMEDIATE ACTION REQUIRED")
	assert.Equal(t, "true", push.Data["action_required"])
	assert.Equal(t, "Urgent", push.Data["priority"])
	assert.Equal(t, "4512345678", push.Data["pnr"])
}

func TestBuildComplaintInApp(t *testing.T) {
	inApp := BuildComplaintInApp(sampleNotice(), []string{"tok-1"})

	assert.Equal(t, "passenger_complaint", inApp.NotifType)
	assert.Equal(t, "passenger_complaint", inApp.NotificationType)
	assert.Equal(t, "42", inApp.ExtraData["complaint_id"])
	assert.Equal(t, "Railsathi Complaint - 12333 (A1 - 23)", inApp.Title)
}

func TestNoticeFromComplaint(t *testing.T) {
	doj := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	complained := time.Date(2025, 6, 10, 9, 5, 0, 0, time.UTC)
	notice := NoticeFromComplaint(db.Complaint{
		ComplainID:    42,
		Name:          "Asha",
		TrainNumber:   "12333",
		DateOfJourney: &doj,
		ComplainDate:  &complained,
	}, "high")

	assert.Equal(t, "2025-06-08", notice.CommencementDate)
	assert.Equal(t, complained, notice.SubmittedAt)
	assert.Equal(t, "high", notice.Priority)
}

// recipientStore has depot staff, two CAs assigned to coach A1 and one to B1
func recipientStore() *mockStore {
	store := assignedStore()
	store.depotStaff = []db.StaffMember{
		{ID: 10, Role: db.RoleWarRoomUser, FCMToken: "rs-10"},
		{ID: 11, Role: db.RoleS2Admin, FCMToken: "rs-shared", FCMTokenCoachSathi: "cs-11"},
		{ID: 10, Role: db.RoleRailwayAdmin},
	}
	store.staff = append(store.staff,
		db.StaffAccess{StaffID: 3, Phone: "9000000003", FCMToken: "rs-shared", FCMTokenCoachSathi: "cs-3",
			TrainAccess: []byte(`{"12333": [{"origin_date": "2025-06-08", "ut": "CA", "coach_numbers": ["a1"]}]}`)},
		db.StaffAccess{StaffID: 4, Phone: "9000000004", FCMTokenCoachSathi: "cs-4",
			TrainAccess: []byte(`{"12333": [{"origin_date": "2025-06-08", "ut": "CA", "coach_numbers": ["B1"]}]}`)},
	)
	return store
}

func TestCollectRecipients(t *testing.T) {
	store := recipientStore()

	recipients, err := CollectRecipients(context.Background(), store, nil, zap.NewNop(), sampleNotice(), middayOn())
	require.NoError(t, err)

	var ids []int64
	for _, m := range recipients.Staff {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []int64{10, 11, 1, 3}, ids, "depot staff then assigned staff, deduplicated")
	assert.Equal(t, []string{"rs-10", "rs-shared"}, recipients.RailSathiTokens)
	assert.Equal(t, []string{"cs-11", "cs-3"}, recipients.CoachSathiTokens)
	assert.ElementsMatch(t, notifiedRoles, store.requestedRoles)
}

func TestCollectRecipients_RunOverExcludesAssignedStaff(t *testing.T) {
	store := recipientStore()
	notice := sampleNotice()
	notice.SubmittedAt = time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)

	recipients, err := CollectRecipients(context.Background(), store, nil, zap.NewNop(), notice, time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Len(t, recipients.Staff, 2)
	assert.Equal(t, []string{"cs-11"}, recipients.CoachSathiTokens)
}

func TestCollectRecipients_LooksUpDepot(t *testing.T) {
	store := recipientStore()
	store.depot = "BCT"
	notice := sampleNotice()
	notice.Depot = ""

	recipients, err := CollectRecipients(context.Background(), store, nil, zap.NewNop(), notice, middayOn())
	require.NoError(t, err)
	assert.Len(t, recipients.Staff, 4)
}

func TestCollectRecipients_EHKGrantListingCoach(t *testing.T) {
	store := &mockStore{
		schedules: []db.TrainSchedule{{TrainNo: "12333", JourneyDurationDays: intPtr(1)}},
		staff: []db.StaffAccess{
			{StaffID: 7, FCMTokenCoachSathi: "cs-ehk",
				TrainAccess: []byte(`{"12333": [{"origin_date": "2025-06-10", "ut": "EHK", "coach_numbers": ["A1"]}]}`)},
		},
	}
	notice := sampleNotice()
	notice.Depot = ""

	recipients, err := CollectRecipients(context.Background(), store, nil, zap.NewNop(), notice, middayOn())
	require.NoError(t, err)

	require.Len(t, recipients.Staff, 1)
	assert.Equal(t, int64(7), recipients.Staff[0].ID)
	assert.Equal(t, []string{"cs-ehk"}, recipients.CoachSathiTokens)
}

func TestCollectRecipients_AssignedStaffWithoutPhone(t *testing.T) {
	store := &mockStore{
		schedules: []db.TrainSchedule{{TrainNo: "12333", JourneyDurationDays: intPtr(5)}},
		staff: []db.StaffAccess{
			{StaffID: 8, FCMToken: "rs-8",
				TrainAccess: []byte(`{"12333": [{"origin_date": "2025-06-08", "ut": "CA", "coach_numbers": ["A1"]}]}`)},
		},
	}
	notice := sampleNotice()
	notice.Depot = ""
	notifier := &mockNotifier{}

	dispatch := DispatchComplaintNotification(context.Background(), store, notifier, nil, "PROD", nil, zap.NewNop(), notice, middayOn)
	waitFor(t, dispatch.Done)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.pushes, 1)
	assert.Equal(t, []string{"rs-8"}, notifier.pushes[0].Tokens)
}

func TestCollectRecipients_StoreError(t *testing.T) {
	store := recipientStore()
	store.staffErr = errors.New("timeout")

	_, err := CollectRecipients(context.Background(), store, nil, zap.NewNop(), sampleNotice(), middayOn())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch staff train access")
}

func TestDispatchComplaintNotification(t *testing.T) {
	store := recipientStore()
	notifier := &mockNotifier{}

	dispatch := DispatchComplaintNotification(context.Background(), store, notifier, nil, "PROD", nil, zap.NewNop(), sampleNotice(), middayOn)
	waitFor(t, dispatch.Done)

	assert.NotEmpty(t, dispatch.ID)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.pushes, 2)
	require.Len(t, notifier.inApps, 2)
	assert.Equal(t, []string{"rs-10", "rs-shared"}, notifier.pushes[0].Tokens)
	assert.Equal(t, []string{"cs-11", "cs-3"}, notifier.pushes[1].Tokens)
	assert.Equal(t, notifier.pushes[1].Tokens, notifier.inApps[1].Tokens)
}

func TestDispatchComplaintNotification_FailuresAreSwallowed(t *testing.T) {
	store := recipientStore()
	notifier := &mockNotifier{err: errors.New("service unavailable")}

	dispatch := DispatchComplaintNotification(context.Background(), store, notifier, nil, "PROD", nil, zap.NewNop(), sampleNotice(), middayOn)
	waitFor(t, dispatch.Done)

	assert.Empty(t, notifier.pushes)
}

func TestDispatchComplaintNotification_NoTokens(t *testing.T) {
	store := &mockStore{}
	notifier := &mockNotifier{}

	dispatch := DispatchComplaintNotification(context.Background(), store, notifier, nil, "PROD", nil, zap.NewNop(), sampleNotice(), middayOn)
	waitFor(t, dispatch.Done)

	assert.Empty(t, notifier.pushes)
	assert.Empty(t, notifier.inApps)
}

func TestComplaintEmail(t *testing.T) {
	notice := sampleNotice()

	subject, body := ComplaintEmail("PROD", notice)
	assert.Equal(t, "New Passenger Complaint Submitted - for Train: 12333(Commencement Date: 2025-06-08)", subject)
	assert.Contains(t, body, "Complaint ID   : 42")
	assert.Contains(t, body, "Submitted At   : 10 Jun 2025, 09:05")
	assert.Contains(t, body, "PNR            : PNR not provided by passenger")
	assert.Contains(t, body, "Train Depot    : BCT")

	subject, _ = ComplaintEmail("uat", notice)
	assert.Equal(t, "UAT | New Passenger Complaint Submitted - for Train: 12333(Commencement Date: 2025-06-08)", subject)

	subject, _ = ComplaintEmail("", notice)
	assert.Equal(t, "LOCAL | New Passenger Complaint Submitted - for Train: 12333(Commencement Date: 2025-06-08)", subject)
}

func TestDispatchComplaintNotification_SendsEmail(t *testing.T) {
	store := recipientStore()
	store.depotStaff = []db.StaffMember{
		{ID: 10, Role: db.RoleWarRoomUser, Email: "wr@example.com", FCMToken: "rs-10"},
		{ID: 11, Role: db.RoleS2Admin, Email: "noemail11@example.com"},
		{ID: 12, Role: db.RoleRailwayAdmin, Email: "not-an-address"},
	}
	store.staff[0].Email = "ca@example.com"
	store.staff = append(store.staff, db.StaffAccess{StaffID: 13, Email: "wr@example.com", FCMToken: "rs-13",
		TrainAccess: []byte(`{"12333": [{"origin_date": "2025-06-08", "ut": "CA", "coach_numbers": ["A1"]}]}`)})
	notifier := &mockNotifier{}
	mailer := &mockMailer{}

	dispatch := DispatchComplaintNotification(context.Background(), store, notifier, mailer, "UAT", nil, zap.NewNop(), sampleNotice(), middayOn)
	waitFor(t, dispatch.Done)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	require.Len(t, mailer.subjects, 1)
	assert.Equal(t, []string{"wr@example.com", "ca@example.com"}, mailer.to)
	assert.Equal(t, "UAT | New Passenger Complaint Submitted - for Train: 12333(Commencement Date: 2025-06-08)", mailer.subjects[0])
	assert.Contains(t, mailer.bodies[0], "Name           : Asha")
}

func TestDispatchComplaintNotification_EmailSentWhenPushFails(t *testing.T) {
	store := recipientStore()
	store.depotStaff = []db.StaffMember{{ID: 10, Role: db.RoleWarRoomUser, Email: "wr@example.com", FCMToken: "rs-10"}}
	notifier := &mockNotifier{err: errors.New("service unavailable")}
	mailer := &mockMailer{}

	dispatch := DispatchComplaintNotification(context.Background(), store, notifier, mailer, "PROD", nil, zap.NewNop(), sampleNotice(), middayOn)
	waitFor(t, dispatch.Done)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Equal(t, []string{"wr@example.com"}, mailer.to)
}

func TestDispatchComplaintNotification_NoAddressesNoEmail(t *testing.T) {
	store := recipientStore()
	notifier := &mockNotifier{}
	mailer := &mockMailer{}

	dispatch := DispatchComplaintNotification(context.Background(), store, notifier, mailer, "PROD", nil, zap.NewNop(), sampleNotice(), middayOn)
	waitFor(t, dispatch.Done)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Empty(t, mailer.subjects)
}
