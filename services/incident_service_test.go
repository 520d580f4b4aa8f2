package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
	"github.com/techagentng/scamwatch/services"
)

type incidentFixture struct {
	repo     *fakeIncidentRepo
	authRepo *fakeAuthRepo
	notifier *fakeNotifier
	board    *noopBoard
	svc      services.IncidentService

	reporter  *models.User
	authority *models.User
	admin     *models.User
}

func newIncidentFixture(t *testing.T) *incidentFixture {
	t.Helper()
	f := &incidentFixture{
		repo:      newFakeIncidentRepo(),
		notifier:  &fakeNotifier{},
		board:     &noopBoard{},
		reporter:  newUserWithRole(1, "ravi", models.RoleUser),
		authority: newUserWithRole(2, "officer", models.RoleAuthority),
		admin:     newUserWithRole(3, "root", models.RoleAdmin),
	}
	f.authRepo = newFakeAuthRepo(f.reporter, f.authority, f.admin)
	f.svc = services.NewIncidentService(f.repo, f.authRepo, f.notifier, f.board, testConfig())
	return f
}

func (f *incidentFixture) seedIncident(status models.IncidentStatus) *models.Incident {
	incident := &models.Incident{
		ID:          uuid.New(),
		Title:       "Fake lottery call",
		Description: "Caller claimed I won a prize and asked for an OTP.",
		Location:    "Pune",
		Pincode:     "411001",
		Severity:    models.SeverityHigh,
		Status:      status,
		ReportedBy:  f.reporter.ID,
	}
	f.repo.incidents[incident.ID] = incident
	return incident
}

func TestCreateIncident(t *testing.T) {
	f := newIncidentFixture(t)

	req := &models.CreateIncidentRequest{
		Title:       "  UPI fraud  ",
		Description: "Money was pulled after I scanned a QR code.",
		Location:    "Mumbai",
		Pincode:     "400001",
		Severity:    models.SeverityCritical,
	}
	incident, apiErr := f.svc.CreateIncident(f.reporter, req)
	require.Nil(t, apiErr)
	assert.Equal(t, models.StatusReported, incident.Status)
	assert.Equal(t, f.reporter.ID, incident.ReportedBy)
	assert.Equal(t, "UPI fraud", incident.Title)
	assert.NotEqual(t, uuid.Nil, incident.ID)
}

func TestCreateIncidentUnknownSeverity(t *testing.T) {
	f := newIncidentFixture(t)

	_, apiErr := f.svc.CreateIncident(f.reporter, &models.CreateIncidentRequest{
		Title:       "Something",
		Description: "Something happened.",
		Severity:    "catastrophic",
	})
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindValidation, apiErr.Kind)
}

func TestTransitionStatus(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusReported)

	apiErr := f.svc.TransitionStatus(f.authority, incident.ID, models.StatusUnderReview)
	require.Nil(t, apiErr)
	assert.Equal(t, models.StatusUnderReview, f.repo.incidents[incident.ID].Status)
	assert.Equal(t, []uuid.UUID{incident.ID}, f.notifier.notified)
}

func TestTransitionStatusUserForbidden(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusReported)

	apiErr := f.svc.TransitionStatus(f.reporter, incident.ID, models.StatusUnderReview)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindForbidden, apiErr.Kind)
	assert.Equal(t, models.StatusReported, f.repo.incidents[incident.ID].Status)
}

func TestTransitionStatusRejectsFakeTarget(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	// fake always goes through MarkFake, which demands a reason and deduction.
	apiErr := f.svc.TransitionStatus(f.admin, incident.ID, models.StatusFake)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindValidation, apiErr.Kind)
	assert.Equal(t, models.StatusUnderReview, f.repo.incidents[incident.ID].Status)
}

func TestTransitionStatusUnknownStatus(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusReported)

	apiErr := f.svc.TransitionStatus(f.authority, incident.ID, "pending")
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindValidation, apiErr.Kind)
}

func TestTransitionStatusBackToReported(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	apiErr := f.svc.TransitionStatus(f.authority, incident.ID, models.StatusReported)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindInvalidTransition, apiErr.Kind)
}

func TestTransitionStatusTerminal(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusDismissed)

	apiErr := f.svc.TransitionStatus(f.authority, incident.ID, models.StatusResolved)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindAlreadyProcessed, apiErr.Kind)
	assert.Equal(t, models.StatusDismissed, f.repo.incidents[incident.ID].Status)
}

func TestTransitionStatusNotFound(t *testing.T) {
	f := newIncidentFixture(t)

	apiErr := f.svc.TransitionStatus(f.authority, uuid.New(), models.StatusUnderReview)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindNotFound, apiErr.Kind)
}

func TestResolve(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	require.Nil(t, f.svc.Resolve(f.authority, incident.ID))
	assert.Equal(t, models.StatusResolved, f.repo.incidents[incident.ID].Status)
	// A plain resolve moves no points.
	assert.Empty(t, f.repo.transactions)
}

func TestMarkFake(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	apiErr := f.svc.MarkFake(f.admin, incident.ID, "duplicate of a known hoax", 100)
	require.Nil(t, apiErr)

	assert.Equal(t, models.StatusFake, f.repo.incidents[incident.ID].Status)
	assert.Equal(t, -100, f.repo.balances[f.reporter.ID])
	require.Contains(t, f.repo.transactions, incident.ID)
	txn := f.repo.transactions[incident.ID]
	assert.Equal(t, models.TransactionDeduct, txn.Type)
	assert.Equal(t, 100, txn.Amount)
	assert.Equal(t, "duplicate of a known hoax", txn.Reason)
	assert.Equal(t, 1, f.board.invalidations)
	assert.Equal(t, []uuid.UUID{incident.ID}, f.notifier.notified)
}

func TestMarkFakeTwice(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	require.Nil(t, f.svc.MarkFake(f.admin, incident.ID, "hoax", 100))

	apiErr := f.svc.MarkFake(f.admin, incident.ID, "hoax", 100)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindAlreadyProcessed, apiErr.Kind)
	// The first deduction stands, no second one is applied.
	assert.Equal(t, -100, f.repo.balances[f.reporter.ID])
}

func TestMarkFakeRequiresAdmin(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	apiErr := f.svc.MarkFake(f.authority, incident.ID, "hoax", 100)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindForbidden, apiErr.Kind)
	assert.Equal(t, models.StatusUnderReview, f.repo.incidents[incident.ID].Status)
}

func TestMarkFakeEmptyReason(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	apiErr := f.svc.MarkFake(f.admin, incident.ID, "", 100)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindValidation, apiErr.Kind)

	// Neither effect was applied.
	assert.Equal(t, models.StatusUnderReview, f.repo.incidents[incident.ID].Status)
	assert.Empty(t, f.repo.transactions)
	assert.Zero(t, f.repo.balances[f.reporter.ID])
}

func TestMarkFakeNonPositiveDeduction(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	for _, points := range []int{0, -50} {
		apiErr := f.svc.MarkFake(f.admin, incident.ID, "hoax", points)
		require.NotNil(t, apiErr)
		assert.Equal(t, errs.KindValidation, apiErr.Kind)
	}
}

func TestApproveGenuine(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	apiErr := f.svc.ApproveGenuine(f.authority, incident.ID, "verified with the bank", 200)
	require.Nil(t, apiErr)

	assert.Equal(t, models.StatusResolved, f.repo.incidents[incident.ID].Status)
	assert.Equal(t, 200, f.repo.balances[f.reporter.ID])
	require.Contains(t, f.repo.transactions, incident.ID)
	assert.Equal(t, models.TransactionAward, f.repo.transactions[incident.ID].Type)
	assert.Equal(t, 1, f.board.invalidations)
}

func TestApproveGenuineUserForbidden(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusReported)

	apiErr := f.svc.ApproveGenuine(f.reporter, incident.ID, "notes", 200)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindForbidden, apiErr.Kind)
}

func TestApproveGenuineAfterMarkFake(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	require.Nil(t, f.svc.MarkFake(f.admin, incident.ID, "hoax", 100))

	apiErr := f.svc.ApproveGenuine(f.admin, incident.ID, "second look", 200)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindAlreadyProcessed, apiErr.Kind)
	assert.Equal(t, models.StatusFake, f.repo.incidents[incident.ID].Status)
	assert.Equal(t, -100, f.repo.balances[f.reporter.ID])
}

func TestApproveGenuineDuplicateLedgerEntry(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	// A ledger row for this incident already exists; the transition must
	// refuse rather than double-apply.
	f.repo.transactions[incident.ID] = &models.PointTransaction{
		UserID:     f.reporter.ID,
		IncidentID: incident.ID,
		Type:       models.TransactionAward,
		Amount:     50,
	}

	apiErr := f.svc.ApproveGenuine(f.authority, incident.ID, "notes", 200)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindAlreadyProcessed, apiErr.Kind)
	assert.Equal(t, models.StatusUnderReview, f.repo.incidents[incident.ID].Status)
	assert.Zero(t, f.repo.balances[f.reporter.ID])
}

// staleReadRepo serves one stale snapshot before delegating, standing in
// for a concurrent writer that finished between the read and the update.
type staleReadRepo struct {
	*fakeIncidentRepo
	stale  models.Incident
	served bool
}

func (r *staleReadRepo) GetIncidentByID(id uuid.UUID) (*models.Incident, error) {
	if !r.served && id == r.stale.ID {
		r.served = true
		copied := r.stale
		return &copied, nil
	}
	return r.fakeIncidentRepo.GetIncidentByID(id)
}

func TestTransitionStatusLostRace(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusResolved)

	stale := *incident
	stale.Status = models.StatusUnderReview
	racing := &staleReadRepo{fakeIncidentRepo: f.repo, stale: stale}
	svc := services.NewIncidentService(racing, f.authRepo, f.notifier, f.board, testConfig())

	apiErr := svc.TransitionStatus(f.authority, incident.ID, models.StatusDismissed)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindAlreadyProcessed, apiErr.Kind)
	assert.Equal(t, models.StatusResolved, f.repo.incidents[incident.ID].Status)
}

func TestAppendMessage(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusUnderReview)

	msg, apiErr := f.svc.AppendMessage(f.authority, incident.ID, "requested bank statement from reporter")
	require.Nil(t, apiErr)
	assert.Equal(t, f.authority.ID, msg.AuthorID)
	assert.Len(t, f.repo.messages[incident.ID], 1)
	// Messages never move the lifecycle.
	assert.Equal(t, models.StatusUnderReview, f.repo.incidents[incident.ID].Status)
}

func TestAppendMessageTerminalState(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusResolved)

	_, apiErr := f.svc.AppendMessage(f.admin, incident.ID, "closing note")
	require.Nil(t, apiErr)
	assert.Len(t, f.repo.messages[incident.ID], 1)
}

func TestAppendMessageUserForbidden(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusReported)

	_, apiErr := f.svc.AppendMessage(f.reporter, incident.ID, "hello")
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindForbidden, apiErr.Kind)
}

func TestAppendMessageEmpty(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusReported)

	_, apiErr := f.svc.AppendMessage(f.authority, incident.ID, "")
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindValidation, apiErr.Kind)
}

func TestAssignIncident(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusReported)

	require.Nil(t, f.svc.AssignIncident(f.admin, incident.ID, f.authority.ID))
	require.NotNil(t, f.repo.incidents[incident.ID].AssignedTo)
	assert.Equal(t, f.authority.ID, *f.repo.incidents[incident.ID].AssignedTo)

	// Reassignment is allowed any number of times.
	require.Nil(t, f.svc.AssignIncident(f.authority, incident.ID, f.admin.ID))
	assert.Equal(t, f.admin.ID, *f.repo.incidents[incident.ID].AssignedTo)
}

func TestAssignIncidentToPlainUser(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusReported)

	apiErr := f.svc.AssignIncident(f.admin, incident.ID, f.reporter.ID)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindValidation, apiErr.Kind)
	assert.Nil(t, f.repo.incidents[incident.ID].AssignedTo)
}

func TestAssignIncidentUnknownAssignee(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusReported)

	apiErr := f.svc.AssignIncident(f.admin, incident.ID, 999)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindValidation, apiErr.Kind)
}

func TestAssignIncidentUserForbidden(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusReported)

	apiErr := f.svc.AssignIncident(f.reporter, incident.ID, f.authority.ID)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindForbidden, apiErr.Kind)
}

func TestAttachFeedback(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusResolved)

	req := &models.FeedbackRequest{Rating: 4, Comment: "resolved quickly"}
	require.Nil(t, f.svc.AttachFeedback(f.reporter, incident.ID, req))
	require.Contains(t, f.repo.feedback, incident.ID)
	assert.Equal(t, 4, f.repo.feedback[incident.ID].Rating)

	// Only one rating per incident.
	apiErr := f.svc.AttachFeedback(f.reporter, incident.ID, req)
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindAlreadyProcessed, apiErr.Kind)
}

func TestAttachFeedbackWrongUser(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusResolved)

	apiErr := f.svc.AttachFeedback(f.authority, incident.ID, &models.FeedbackRequest{Rating: 5})
	require.NotNil(t, apiErr)
	assert.Equal(t, errs.KindForbidden, apiErr.Kind)
}

func TestAttachFeedbackNotResolved(t *testing.T) {
	f := newIncidentFixture(t)

	for _, status := range []models.IncidentStatus{models.StatusReported, models.StatusUnderReview, models.StatusDismissed, models.StatusFake} {
		incident := f.seedIncident(status)
		apiErr := f.svc.AttachFeedback(f.reporter, incident.ID, &models.FeedbackRequest{Rating: 3})
		require.NotNil(t, apiErr, "status=%s", status)
		assert.Equal(t, errs.KindInvalidTransition, apiErr.Kind, "status=%s", status)
	}
}

func TestAttachFeedbackRatingBounds(t *testing.T) {
	f := newIncidentFixture(t)
	incident := f.seedIncident(models.StatusResolved)

	for _, rating := range []int{0, 6, -1} {
		apiErr := f.svc.AttachFeedback(f.reporter, incident.ID, &models.FeedbackRequest{Rating: rating})
		require.NotNil(t, apiErr, "rating=%d", rating)
		assert.Equal(t, errs.KindValidation, apiErr.Kind)
	}
}

func TestHeatmap(t *testing.T) {
	f := newIncidentFixture(t)
	f.seedIncident(models.StatusReported)
	f.seedIncident(models.StatusResolved)
	other := f.seedIncident(models.StatusReported)
	other.Pincode = "400001"

	counts, apiErr := f.svc.Heatmap()
	require.Nil(t, apiErr)
	require.Len(t, counts, 2)
	assert.Equal(t, "411001", counts[0].Pincode)
	assert.Equal(t, 2, counts[0].Count)
}
