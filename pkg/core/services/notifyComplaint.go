package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/clients/notifyclient"
	"github.com/suvidhaen/railsathi-be/pkg/core/journey"
	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
	"github.com/suvidhaen/railsathi-be/pkg/db"
)

const (
	// NotificationTypeComplaint tags passenger complaint notifications
	NotificationTypeComplaint = "passenger_complaint"

	noticeDateLayout = "02 Jan 2006, 15:04"
	defaultPNRText   = "PNR not provided by passenger"
	defaultPriority  = "normal"
)

// notifiedRoles are the depot roles told about every complaint on the depot's trains
var notifiedRoles = []string{
	db.RoleWarRoomUser,
	db.RoleWarRoomUserRailSathi,
	db.RoleS2Admin,
	db.RoleRailwayAdmin,
	db.RoleRailwayOfficer,
}

// Notifier sends push and in-app notifications. *notifyclient.Client implements it.
type Notifier interface {
	SendPush(ctx context.Context, payload notifyclient.PushPayload) (notifyclient.Response, error)
	SendInApp(ctx context.Context, payload notifyclient.InAppPayload) (notifyclient.Response, error)
}

// RecipientStore is the subset of the database needed to find who to notify
type RecipientStore interface {
	GetTrainDepot(ctx context.Context, trainNos []string) (string, error)
	GetDepotStaff(ctx context.Context, depot string, roles []string) ([]db.StaffMember, error)
	GetStaffWithTrainAccess(ctx context.Context) ([]db.StaffAccess, error)
	GetTrainSchedules(ctx context.Context, trainNos []string) ([]db.TrainSchedule, error)
}

// ComplaintNotice is the complaint as presented in notifications
type ComplaintNotice struct {
	ComplainID       int64
	PassengerName    string
	PassengerPhone   string
	TrainNumber      string
	TrainName        string
	CommencementDate string
	Coach            string
	BerthNo          string
	PNRNumber        string
	Description      string
	Depot            string
	Priority         string
	SubmittedAt      time.Time
}

// NoticeFromComplaint builds a notice from a stored complaint
func NoticeFromComplaint(c db.Complaint, priority string) ComplaintNotice {
	notice := ComplaintNotice{
		ComplainID:     c.ComplainID,
		PassengerName:  c.Name,
		PassengerPhone: c.MobileNumber,
		TrainNumber:    c.TrainNumber,
		TrainName:      c.TrainName,
		Coach:          c.Coach,
		BerthNo:        c.BerthNo,
		PNRNumber:      c.PNRNumber,
		Description:    c.ComplainDescription,
		Depot:          c.TrainDepot,
		Priority:       priority,
		SubmittedAt:    c.CreatedAt,
	}
	if c.DateOfJourney != nil {
		notice.CommencementDate = c.DateOfJourney.Format(journey.DateLayout)
	}
	if c.ComplainDate != nil {
		notice.SubmittedAt = *c.ComplainDate
	}
	return notice
}

func (n ComplaintNotice) actionRequired() bool {
	switch strings.ToLower(strings.TrimSpace(n.Priority)) {
	case "high", "urgent":
		return true
	}
	return false
}

// complaintData is the string-only data block shared by push and in-app payloads
func complaintData(n ComplaintNotice) map[string]string {
	pnr := n.PNRNumber
	if strings.TrimSpace(pnr) == "" {
		pnr = defaultPNRText
	}
	priority := n.Priority
	if strings.TrimSpace(priority) == "" {
		priority = defaultPriority
	}
	id := strconv.FormatInt(n.ComplainID, 10)

	return map[string]string{
		"notification_type": NotificationTypeComplaint,
		"complaint_id":      id,
		"submitted_date":    n.SubmittedAt.Format(noticeDateLayout),
		"passenger_name":    n.PassengerName,
		"passenger_phone":   n.PassengerPhone,
		"train_number":      n.TrainNumber,
		"train_name":        n.TrainName,
		"commencement_date": n.CommencementDate,
		"coach":             n.Coach,
		"berth":             n.BerthNo,
		"pnr":               pnr,
		"complaint_text":    n.Description,
		"depot":             n.Depot,
		"priority":          priority,
		"action_required":   strconv.FormatBool(n.actionRequired()),
		"deep_link":         "railops://complaints/" + id,
		"screen":            "complaint_details",
	}
}

func complaintTitle(n ComplaintNotice) string {
	return fmt.Sprintf("Railsathi Complaint - %s (%s - %s)", n.TrainNumber, n.Coach, n.BerthNo)
}

func complaintBody(n ComplaintNotice) string {
	lines := []string{
		fmt.Sprintf("Name: %s | %s", n.PassengerName, n.PassengerPhone),
		fmt.Sprintf("Train: %s | %s/%s", n.TrainNumber, n.Coach, n.BerthNo),
		fmt.Sprintf("Complaint: %s", n.Description),
	}
	if n.actionRequired() {
		lines = append(lines, "IMMEDIATE ACTION REQUIRED")
	}
	return strings.Join(lines, "\n")
}

// BuildComplaintPush renders the push notification for a complaint
func BuildComplaintPush(n ComplaintNotice, tokens []string) notifyclient.PushPayload {
	return notifyclient.PushPayload{
		Tokens:           tokens,
		Title:            complaintTitle(n),
		Body:             complaintBody(n),
		Data:             complaintData(n),
		NotificationType: "default",
	}
}

// BuildComplaintInApp renders the in-app notification for a complaint
func BuildComplaintInApp(n ComplaintNotice, tokens []string) notifyclient.InAppPayload {
	data := complaintData(n)
	return notifyclient.InAppPayload{
		Tokens:           tokens,
		Title:            complaintTitle(n),
		Body:             complaintBody(n),
		NotifType:        data["notification_type"],
		NotificationType: data["notification_type"],
		ExtraData:        data,
	}
}

// Recipients are the staff to notify and their distinct push tokens per app
type Recipients struct {
	Staff            []db.StaffMember
	RailSathiTokens  []string
	CoachSathiTokens []string
}

// CollectRecipients finds the depot staff of the complaint's train and the staff
// assigned to its coach on the complaint date at the instant now.
func CollectRecipients(
	ctx context.Context,
	store RecipientStore,
	overrides []routing.ScheduleOverride,
	logger *zap.Logger,
	n ComplaintNotice,
	now time.Time,
) (Recipients, error) {
	spellings := routing.TrainSpellings(n.TrainNumber)
	var staff []db.StaffMember

	depot := strings.TrimSpace(n.Depot)
	if depot == "" && len(spellings) > 0 {
		found, err := store.GetTrainDepot(ctx, spellings)
		if err != nil {
			return Recipients{}, fmt.Errorf("failed to fetch train depot: %w", err)
		}
		depot = found
	}

	if depot != "" {
		depotStaff, err := store.GetDepotStaff(ctx, depot, notifiedRoles)
		if err != nil {
			return Recipients{}, fmt.Errorf("failed to fetch depot staff: %w", err)
		}
		staff = append(staff, depotStaff...)
	}

	assigned, err := assignedStaff(ctx, store, overrides, logger, n, now)
	if err != nil {
		return Recipients{}, err
	}
	staff = append(staff, assigned...)

	staff = db.DedupeStaff(staff)
	recipients := Recipients{Staff: staff}

	seenRS := make(map[string]bool)
	seenCS := make(map[string]bool)
	for _, m := range staff {
		if t := strings.TrimSpace(m.FCMToken); t != "" && !seenRS[t] {
			seenRS[t] = true
			recipients.RailSathiTokens = append(recipients.RailSathiTokens, t)
		}
		if t := strings.TrimSpace(m.FCMTokenCoachSathi); t != "" && !seenCS[t] {
			seenCS[t] = true
			recipients.CoachSathiTokens = append(recipients.CoachSathiTokens, t)
		}
	}

	logger.Debug("Collected complaint recipients",
		zap.Int64("complain_id", n.ComplainID),
		zap.String("depot", depot),
		zap.Int("staff_count", len(staff)),
		zap.Int("railsathi_tokens", len(recipients.RailSathiTokens)),
		zap.Int("coachsathi_tokens", len(recipients.CoachSathiTokens)))

	return recipients, nil
}

// assignedStaff returns staff holding a grant for the complaint's train whose
// assigned coaches include the complaint coach and whose run covers the complaint
// date at now. Any role qualifies, EHK included, as long as the grant lists the coach.
func assignedStaff(
	ctx context.Context,
	store RecipientStore,
	overrides []routing.ScheduleOverride,
	logger *zap.Logger,
	n ComplaintNotice,
	now time.Time,
) ([]db.StaffMember, error) {
	train := routing.StripLeadingZeros(strings.TrimSpace(n.TrainNumber))
	coach := routing.NormalizeCoach(n.Coach)
	if train == "" || coach == "" {
		return nil, nil
	}

	rows, err := store.GetTrainSchedules(ctx, routing.TrainSpellings(train))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch train schedules: %w", err)
	}
	book := routing.NewScheduleBook(rows, overrides, logger)

	grants, err := store.GetStaffWithTrainAccess(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff train access: %w", err)
	}
	sort.SliceStable(grants, func(i, j int) bool { return grants[i].StaffID < grants[j].StaffID })

	target := now.Format(journey.DateLayout)
	if !n.SubmittedAt.IsZero() {
		target = n.SubmittedAt.In(now.Location()).Format(journey.DateLayout)
	}

	var members []db.StaffMember
	for _, g := range grants {
		if coversCoach(routing.ParseTrainAccess(g.TrainAccess, logger), book, train, coach, target, now) {
			members = append(members, db.StaffMember{
				ID:                 g.StaffID,
				Email:              g.Email,
				Phone:              g.Phone,
				FCMToken:           g.FCMToken,
				FCMTokenCoachSathi: g.FCMTokenCoachSathi,
			})
		}
	}
	return members, nil
}

func coversCoach(access routing.TrainAccess, book *routing.ScheduleBook, train, coach, target string, now time.Time) bool {
	for grantTrain, entries := range access {
		if routing.StripLeadingZeros(strings.TrimSpace(grantTrain)) != train {
			continue
		}
		for _, entry := range entries {
			if !hasCoach(entry.AssignedCoaches, coach) {
				continue
			}
			origin, err := journey.ParseDate(entry.OriginDate)
			if err != nil {
				continue
			}
			run := book.Lookup(train, origin)
			if journey.IsAssignedOnDateStrings(entry.OriginDate, run.DurationDays, run.EndTime, target, now) {
				return true
			}
		}
	}
	return false
}

func hasCoach(coaches []string, coach string) bool {
	for _, c := range coaches {
		if routing.NormalizeCoach(c) == coach {
			return true
		}
	}
	return false
}

// Dispatch describes a background notification run
type Dispatch struct {
	ID   string
	Done <-chan struct{}
}

// DispatchComplaintNotification notifies the staff responsible for a complaint.
// It returns at once; recipients are resolved and notifications sent in the
// background, and failures are only logged. Each app's tokens get their own
// push and in-app notification, then one email goes to every distinct staff
// address. A nil mailer skips the email.
func DispatchComplaintNotification(
	ctx context.Context,
	store RecipientStore,
	notifier Notifier,
	mailer EmailSender,
	env string,
	overrides []routing.ScheduleOverride,
	logger *zap.Logger,
	n ComplaintNotice,
	now func() time.Time,
) Dispatch {
	id := uuid.New().String()
	dispatchLogger := logger.With(zap.String("dispatch_id", id), zap.Int64("complain_id", n.ComplainID))

	done := runDetached(ctx, dispatchLogger, "complaint notification", func(ctx context.Context) error {
		recipients, err := CollectRecipients(ctx, store, overrides, dispatchLogger, n, now())
		if err != nil {
			return err
		}

		var errs []error
		for _, target := range []struct {
			app    string
			tokens []string
		}{
			{"railsathi", recipients.RailSathiTokens},
			{"coachsathi", recipients.CoachSathiTokens},
		} {
			if len(target.tokens) == 0 {
				dispatchLogger.Info("No tokens to notify", zap.String("app", target.app))
				continue
			}
			if err := sendComplaintNotice(ctx, notifier, dispatchLogger, n, target.app, target.tokens); err != nil {
				errs = append(errs, err)
			}
		}

		if err := sendComplaintEmail(mailer, env, dispatchLogger, n, recipients.Staff); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	return Dispatch{ID: id, Done: done}
}

func sendComplaintNotice(ctx context.Context, notifier Notifier, logger *zap.Logger, n ComplaintNotice, app string, tokens []string) error {
	var errs []error

	if _, err := notifier.SendPush(ctx, BuildComplaintPush(n, tokens)); err != nil {
		errs = append(errs, fmt.Errorf("failed to send %s push notification: %w", app, err))
	} else {
		logger.Info("Push notification sent", zap.String("app", app), zap.Int("token_count", len(tokens)))
	}

	if _, err := notifier.SendInApp(ctx, BuildComplaintInApp(n, tokens)); err != nil {
		errs = append(errs, fmt.Errorf("failed to send %s in-app notification: %w", app, err))
	} else {
		logger.Info("In-app notification sent", zap.String("app", app), zap.Int("token_count", len(tokens)))
	}

	return errors.Join(errs...)
}

// ComplaintEmail renders the complaint email sent to staff
func ComplaintEmail(env string, n ComplaintNotice) (string, string) {
	subject := envSubject(env, fmt.Sprintf("New Passenger Complaint Submitted - for Train: %s(Commencement Date: %s)",
		n.TrainNumber, n.CommencementDate))

	pnr := n.PNRNumber
	if strings.TrimSpace(pnr) == "" {
		pnr = defaultPNRText
	}

	body := fmt.Sprintf(
		"Passenger Complaint Submitted\n\n"+
			"A new passenger complaint has been received.\n\n"+
			"Complaint ID   : %d\n"+
			"Submitted At   : %s\n\n"+
			"Passenger Info:\n"+
			"Name           : %s\n"+
			"Phone Number   : %s\n\n"+
			"Travel Details:\n"+
			"Train Number   : %s\n"+
			"Train Name     : %s\n"+
			"Coach          : %s\n"+
			"Berth Number   : %s\n"+
			"PNR            : %s\n\n"+
			"Complaint Details:\n"+
			"Description    : %s\n\n"+
			"Train Depot    : %s\n\n"+
			"Please take necessary action at the earliest.\n\n"+
			"This is an automated notification. Please do not reply to this email.\n\n"+
			"Regards,\nTeam RailSathi\n",
		n.ComplainID, n.SubmittedAt.Format(noticeDateLayout),
		n.PassengerName, n.PassengerPhone,
		n.TrainNumber, n.TrainName, n.Coach, n.BerthNo, pnr,
		n.Description, n.Depot)

	return subject, body
}

// complaintEmailAddresses returns the distinct deliverable addresses of staff in order
func complaintEmailAddresses(staff []db.StaffMember) []string {
	seen := make(map[string]bool)
	var addresses []string
	for _, m := range staff {
		email := strings.TrimSpace(m.Email)
		if email == "" || !strings.Contains(email, "@") || strings.HasPrefix(email, "noemail") || seen[email] {
			continue
		}
		seen[email] = true
		addresses = append(addresses, email)
	}
	return addresses
}

func sendComplaintEmail(mailer EmailSender, env string, logger *zap.Logger, n ComplaintNotice, staff []db.StaffMember) error {
	if mailer == nil {
		return nil
	}

	to := complaintEmailAddresses(staff)
	if len(to) == 0 {
		logger.Info("No email addresses to notify")
		return nil
	}

	subject, body := ComplaintEmail(env, n)
	if err := mailer.SendEmail(to, subject, body); err != nil {
		return fmt.Errorf("failed to send complaint email: %w", err)
	}
	logger.Info("Complaint email sent", zap.Int("recipient_count", len(to)))
	return nil
}
