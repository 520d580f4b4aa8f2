package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/techagentng/scamwatch/config"
	"github.com/techagentng/scamwatch/db"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
	"gorm.io/gorm"
)

// IncidentService owns the incident lifecycle: creation, status
// transitions, triage messages, assignment and feedback. Transitions that
// move points go through the repository in one transaction so that status
// and ledger can never disagree.
type IncidentService interface {
	CreateIncident(actor *models.User, req *models.CreateIncidentRequest) (*models.Incident, *errs.Error)
	GetIncident(id uuid.UUID) (*models.Incident, *errs.Error)
	ListIncidents(filter db.IncidentFilter, page, pageSize int) ([]models.Incident, *models.Pagination, *errs.Error)
	TransitionStatus(actor *models.User, id uuid.UUID, target models.IncidentStatus) *errs.Error
	Resolve(actor *models.User, id uuid.UUID) *errs.Error
	MarkFake(actor *models.User, id uuid.UUID, reason string, pointsToDeduct int) *errs.Error
	ApproveGenuine(actor *models.User, id uuid.UUID, notes string, pointsToAward int) *errs.Error
	AppendMessage(actor *models.User, id uuid.UUID, text string) (*models.IncidentMessage, *errs.Error)
	AssignIncident(actor *models.User, id uuid.UUID, assigneeID uint) *errs.Error
	AttachFeedback(actor *models.User, id uuid.UUID, req *models.FeedbackRequest) *errs.Error
	Heatmap() ([]models.PincodeCount, *errs.Error)
}

// boardInvalidator drops cached leaderboard state after a ledger mutation.
type boardInvalidator interface {
	Invalidate()
}

type incidentService struct {
	Config          *config.Config
	incidentRepo    db.IncidentRepository
	authRepo        db.AuthRepository
	notificationSvc NotificationService
	board           boardInvalidator
}

// NewIncidentService instantiates an IncidentService.
func NewIncidentService(incidentRepo db.IncidentRepository, authRepo db.AuthRepository, notificationSvc NotificationService, board boardInvalidator, conf *config.Config) IncidentService {
	return &incidentService{
		Config:          conf,
		incidentRepo:    incidentRepo,
		authRepo:        authRepo,
		notificationSvc: notificationSvc,
		board:           board,
	}
}

func (s *incidentService) CreateIncident(actor *models.User, req *models.CreateIncidentRequest) (*models.Incident, *errs.Error) {
	if err := models.ValidateWhiteSpaces(req); err != nil {
		return nil, errs.ValidationError(err.Error())
	}
	if !models.IsValidSeverity(req.Severity) {
		return nil, errs.ValidationError(fmt.Sprintf("unknown severity %q", req.Severity))
	}

	incident := &models.Incident{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Pincode:     req.Pincode,
		Severity:    req.Severity,
		Status:      models.StatusReported,
		ReportedBy:  actor.ID,
	}
	saved, err := s.incidentRepo.SaveIncident(incident)
	if err != nil {
		log.Printf("CreateIncident error: %v", err)
		return nil, errs.ErrInternalServerError
	}
	return saved, nil
}

func (s *incidentService) GetIncident(id uuid.UUID) (*models.Incident, *errs.Error) {
	incident, err := s.incidentRepo.GetIncidentByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.NotFound("incident not found")
		}
		log.Printf("GetIncident error: %v", err)
		return nil, errs.ErrInternalServerError
	}
	return incident, nil
}

func (s *incidentService) ListIncidents(filter db.IncidentFilter, page, pageSize int) ([]models.Incident, *models.Pagination, *errs.Error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	incidents, total, err := s.incidentRepo.GetIncidents(filter, page, pageSize)
	if err != nil {
		log.Printf("ListIncidents error: %v", err)
		return nil, nil, errs.ErrInternalServerError
	}
	return incidents, paginate(page, pageSize, total), nil
}

// TransitionStatus serves the generic status-update action. Moves into
// fake are rejected here because they require a justification and a point
// deduction; that path is MarkFake.
func (s *incidentService) TransitionStatus(actor *models.User, id uuid.UUID, target models.IncidentStatus) *errs.Error {
	if !models.IsValidStatus(target) {
		return errs.ValidationError(fmt.Sprintf("unknown status %q", target))
	}
	if target == models.StatusFake {
		return errs.ValidationError("marking fake requires the review action with a reason and point deduction")
	}
	if target == models.StatusReported {
		return errs.InvalidTransition("", string(models.StatusReported))
	}

	incident, err := s.incidentRepo.GetIncidentByID(id)
	if err != nil {
		if isNotFound(err) {
			return errs.NotFound("incident not found")
		}
		log.Printf("TransitionStatus error: %v", err)
		return errs.ErrInternalServerError
	}

	from := incident.Status
	if apiErr := s.checkTransition(actor, from, target); apiErr != nil {
		return apiErr
	}

	if err := s.incidentRepo.UpdateStatus(id, from, target); err != nil {
		return s.mapStaleError(id, err)
	}

	s.notifyStatusChange(incident, target)
	return nil
}

// Resolve is the "mark as solved" action without a point award.
func (s *incidentService) Resolve(actor *models.User, id uuid.UUID) *errs.Error {
	return s.TransitionStatus(actor, id, models.StatusResolved)
}

// MarkFake moves the incident into the terminal fake status and deducts
// points from the reporter, atomically. Every check runs before any
// mutation; if either effect cannot be applied, neither is.
func (s *incidentService) MarkFake(actor *models.User, id uuid.UUID, reason string, pointsToDeduct int) *errs.Error {
	if !actor.IsAdmin() {
		return errs.Forbidden("only an admin may mark an incident fake")
	}
	if reason == "" {
		return errs.ValidationError("a reason is required to mark an incident fake")
	}
	if pointsToDeduct <= 0 {
		return errs.ValidationError("pointsToDeduct must be greater than zero")
	}

	incident, err := s.incidentRepo.GetIncidentByID(id)
	if err != nil {
		if isNotFound(err) {
			return errs.NotFound("incident not found")
		}
		log.Printf("MarkFake error: %v", err)
		return errs.ErrInternalServerError
	}

	from := incident.Status
	if from.IsTerminal() {
		return errs.AlreadyProcessed(fmt.Sprintf("incident already %s", from))
	}

	txn := &models.PointTransaction{
		UserID:     incident.ReportedBy,
		IncidentID: incident.ID,
		Type:       models.TransactionDeduct,
		Amount:     pointsToDeduct,
		Reason:     reason,
	}
	if err := s.incidentRepo.ApplyTransition(id, from, models.StatusFake, txn); err != nil {
		return s.mapLedgerError(id, err)
	}

	s.board.Invalidate()
	s.notifyStatusChange(incident, models.StatusFake)
	return nil
}

// ApproveGenuine resolves the incident and awards points to the reporter,
// atomically, mirroring MarkFake.
func (s *incidentService) ApproveGenuine(actor *models.User, id uuid.UUID, notes string, pointsToAward int) *errs.Error {
	if !actor.IsAuthority() {
		return errs.Forbidden("only an authority or admin may approve an incident")
	}
	if notes == "" {
		return errs.ValidationError("cyber cell notes are required to approve an incident")
	}
	if pointsToAward <= 0 {
		return errs.ValidationError("pointsToAward must be greater than zero")
	}

	incident, err := s.incidentRepo.GetIncidentByID(id)
	if err != nil {
		if isNotFound(err) {
			return errs.NotFound("incident not found")
		}
		log.Printf("ApproveGenuine error: %v", err)
		return errs.ErrInternalServerError
	}

	from := incident.Status
	if from.IsTerminal() {
		return errs.AlreadyProcessed(fmt.Sprintf("incident already %s", from))
	}

	txn := &models.PointTransaction{
		UserID:     incident.ReportedBy,
		IncidentID: incident.ID,
		Type:       models.TransactionAward,
		Amount:     pointsToAward,
		Reason:     notes,
	}
	if err := s.incidentRepo.ApplyTransition(id, from, models.StatusResolved, txn); err != nil {
		return s.mapLedgerError(id, err)
	}

	s.board.Invalidate()
	s.notifyStatusChange(incident, models.StatusResolved)
	return nil
}

// AppendMessage adds to the append-only triage log. It never changes
// status and is permitted in any state.
func (s *incidentService) AppendMessage(actor *models.User, id uuid.UUID, text string) (*models.IncidentMessage, *errs.Error) {
	if !actor.IsAuthority() {
		return nil, errs.Forbidden("only an authority or admin may add triage messages")
	}
	if text == "" {
		return nil, errs.ValidationError("message cannot be empty")
	}

	if _, err := s.incidentRepo.GetIncidentByID(id); err != nil {
		if isNotFound(err) {
			return nil, errs.NotFound("incident not found")
		}
		log.Printf("AppendMessage error: %v", err)
		return nil, errs.ErrInternalServerError
	}

	msg := &models.IncidentMessage{
		IncidentID: id,
		AuthorID:   actor.ID,
		AuthorName: actor.Username,
		Body:       text,
	}
	if err := s.incidentRepo.AppendMessage(msg); err != nil {
		log.Printf("AppendMessage error: %v", err)
		return nil, errs.ErrInternalServerError
	}
	return msg, nil
}

// AssignIncident sets or reassigns the handling authority. Assignment is
// independent of status and may change any number of times.
func (s *incidentService) AssignIncident(actor *models.User, id uuid.UUID, assigneeID uint) *errs.Error {
	if !actor.IsAuthority() {
		return errs.Forbidden("only an authority or admin may assign incidents")
	}

	assignee, err := s.authRepo.FindUserByID(assigneeID)
	if err != nil {
		if isNotFound(err) {
			return errs.ValidationError("assignee does not exist")
		}
		log.Printf("AssignIncident error: %v", err)
		return errs.ErrInternalServerError
	}
	if !assignee.IsAuthority() {
		return errs.ValidationError("assignee is not an authority")
	}

	if err := s.incidentRepo.UpdateAssignment(id, assigneeID); err != nil {
		if isNotFound(err) {
			return errs.NotFound("incident not found")
		}
		log.Printf("AssignIncident error: %v", err)
		return errs.ErrInternalServerError
	}
	return nil
}

// AttachFeedback records the reporter's one-time rating of a resolved
// incident.
func (s *incidentService) AttachFeedback(actor *models.User, id uuid.UUID, req *models.FeedbackRequest) *errs.Error {
	if req.Rating < 1 || req.Rating > 5 {
		return errs.ValidationError("rating must be between 1 and 5")
	}

	incident, err := s.incidentRepo.GetIncidentByID(id)
	if err != nil {
		if isNotFound(err) {
			return errs.NotFound("incident not found")
		}
		log.Printf("AttachFeedback error: %v", err)
		return errs.ErrInternalServerError
	}
	if incident.ReportedBy != actor.ID {
		return errs.Forbidden("only the reporting user may leave feedback")
	}
	if incident.Status != models.StatusResolved {
		return errs.InvalidTransition(string(incident.Status), "feedback")
	}

	exists, err := s.incidentRepo.HasFeedback(id)
	if err != nil {
		log.Printf("AttachFeedback error: %v", err)
		return errs.ErrInternalServerError
	}
	if exists {
		return errs.AlreadyProcessed("feedback already submitted for this incident")
	}

	fb := &models.IncidentFeedback{
		IncidentID: id,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.incidentRepo.AttachFeedback(fb); err != nil {
		// Unique index on incident_id catches a racing duplicate.
		return errs.AlreadyProcessed("feedback already submitted for this incident")
	}
	return nil
}

func (s *incidentService) Heatmap() ([]models.PincodeCount, *errs.Error) {
	counts, err := s.incidentRepo.GetPincodeCounts()
	if err != nil {
		log.Printf("Heatmap error: %v", err)
		return nil, errs.ErrInternalServerError
	}
	return counts, nil
}

// checkTransition applies the central policy: the edge must exist and the
// actor's role must be allowed to trigger the target status.
func (s *incidentService) checkTransition(actor *models.User, from, to models.IncidentStatus) *errs.Error {
	if from.IsTerminal() {
		return errs.AlreadyProcessed(fmt.Sprintf("incident already %s", from))
	}
	if !models.CanReach(from, to) {
		return errs.InvalidTransition(string(from), string(to))
	}
	if !models.CanTransition(actor.RoleName(), from, to) {
		return errs.Forbidden(fmt.Sprintf("role %s may not move an incident to %s", actor.RoleName(), to))
	}
	return nil
}

// mapStaleError rereads the incident after a guarded update missed, to
// report what actually happened: a concurrent writer finished first.
func (s *incidentService) mapStaleError(id uuid.UUID, err error) *errs.Error {
	if errors.Is(err, db.ErrStaleStatus) {
		current, ferr := s.incidentRepo.GetIncidentByID(id)
		if ferr == nil && current.Status.IsTerminal() {
			return errs.AlreadyProcessed(fmt.Sprintf("incident already %s", current.Status))
		}
		return errs.InvalidTransition("stale", "requested status")
	}
	log.Printf("transition error: %v", err)
	return errs.ErrInternalServerError
}

func (s *incidentService) mapLedgerError(id uuid.UUID, err error) *errs.Error {
	if errors.Is(err, db.ErrDuplicateLedgerEntry) {
		return errs.AlreadyProcessed("points already applied for this incident")
	}
	return s.mapStaleError(id, err)
}

func (s *incidentService) notifyStatusChange(incident *models.Incident, to models.IncidentStatus) {
	if s.notificationSvc == nil {
		return
	}
	s.notificationSvc.NotifyStatusChange(incident.ReportedBy, incident.ID, incident.Title, to)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func paginate(page, pageSize int, total int64) *models.Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: total,
	}
}
