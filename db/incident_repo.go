package db

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/scamwatch/models"
	"gorm.io/gorm"
)

// ErrStaleStatus is returned when a guarded status update matched no row:
// the incident moved (or was moved concurrently) since the caller read it.
var ErrStaleStatus = errors.New("incident status changed since read")

// ErrDuplicateLedgerEntry is returned when an incident already carries a
// point transaction.
var ErrDuplicateLedgerEntry = errors.New("incident already has a ledger entry")

// IncidentFilter narrows incident listings.
type IncidentFilter struct {
	Status   models.IncidentStatus
	Severity models.Severity
	Pincode  string
	UserID   uint
}

type IncidentRepository interface {
	SaveIncident(incident *models.Incident) (*models.Incident, error)
	GetIncidentByID(id uuid.UUID) (*models.Incident, error)
	GetIncidents(filter IncidentFilter, page, pageSize int) ([]models.Incident, int64, error)
	UpdateStatus(id uuid.UUID, from, to models.IncidentStatus) error
	ApplyTransition(id uuid.UUID, from, to models.IncidentStatus, txn *models.PointTransaction) error
	UpdateAssignment(id uuid.UUID, assigneeID uint) error
	AppendMessage(msg *models.IncidentMessage) error
	AttachFeedback(fb *models.IncidentFeedback) error
	HasFeedback(id uuid.UUID) (bool, error)
	GetPincodeCounts() ([]models.PincodeCount, error)
}

type incidentRepo struct {
	DB *gorm.DB
}

func NewIncidentRepo(db *GormDB) IncidentRepository {
	return &incidentRepo{db.DB}
}

func (r *incidentRepo) SaveIncident(incident *models.Incident) (*models.Incident, error) {
	if err := r.DB.Create(incident).Error; err != nil {
		return nil, errors.Wrap(err, "gorm.create incident")
	}
	return incident, nil
}

func (r *incidentRepo) GetIncidentByID(id uuid.UUID) (*models.Incident, error) {
	var incident models.Incident
	err := r.DB.Preload("Messages").Preload("Feedback").Where("id = ?", id).First(&incident).Error
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

func (r *incidentRepo) GetIncidents(filter IncidentFilter, page, pageSize int) ([]models.Incident, int64, error) {
	query := r.DB.Model(&models.Incident{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Pincode != "" {
		query = query.Where("pincode = ?", filter.Pincode)
	}
	if filter.UserID != 0 {
		query = query.Where("reported_by = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "gorm.count incidents")
	}

	var incidents []models.Incident
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&incidents).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "gorm.list incidents")
	}
	return incidents, total, nil
}

// UpdateStatus performs a guarded status move: the row is only touched when
// it still holds the status the caller decided on. A miss means a
// concurrent writer got there first.
func (r *incidentRepo) UpdateStatus(id uuid.UUID, from, to models.IncidentStatus) error {
	res := r.DB.Model(&models.Incident{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return errors.Wrap(res.Error, "gorm.update status")
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// ApplyTransition moves the incident into a terminal state and records the
// point transaction in one database transaction. The guarded UPDATE locks
// the incident row, so of two racing calls exactly one sees RowsAffected=1;
// the loser gets ErrStaleStatus and nothing is applied.
func (r *incidentRepo) ApplyTransition(id uuid.UUID, from, to models.IncidentStatus, txn *models.PointTransaction) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Incident{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if res.Error != nil {
			return errors.Wrap(res.Error, "gorm.update status")
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		if txn == nil {
			return nil
		}

		var count int64
		if err := tx.Model(&models.PointTransaction{}).
			Where("incident_id = ?", txn.IncidentID).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "gorm.count transactions")
		}
		if count > 0 {
			return ErrDuplicateLedgerEntry
		}
		if err := tx.Create(txn).Error; err != nil {
			return errors.Wrap(err, "gorm.create transaction")
		}

		delta := txn.Amount
		if txn.Type == models.TransactionDeduct {
			delta = -delta
		}

		var points models.UserPoints
		err := tx.Where("user_id = ?", txn.UserID).First(&points).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				points = models.UserPoints{UserID: txn.UserID, TotalPoints: delta}
				return tx.Create(&points).Error
			}
			return errors.Wrap(err, "gorm.find user points")
		}
		return tx.Model(&points).
			Update("total_points", gorm.Expr("total_points + ?", delta)).Error
	})
}

func (r *incidentRepo) UpdateAssignment(id uuid.UUID, assigneeID uint) error {
	res := r.DB.Model(&models.Incident{}).
		Where("id = ?", id).
		Update("assigned_to", assigneeID)
	if res.Error != nil {
		return errors.Wrap(res.Error, "gorm.update assignment")
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *incidentRepo) AppendMessage(msg *models.IncidentMessage) error {
	return r.DB.Create(msg).Error
}

func (r *incidentRepo) AttachFeedback(fb *models.IncidentFeedback) error {
	return r.DB.Create(fb).Error
}

func (r *incidentRepo) HasFeedback(id uuid.UUID) (bool, error) {
	var count int64
	err := r.DB.Model(&models.IncidentFeedback{}).Where("incident_id = ?", id).Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "gorm.count feedback")
	}
	return count > 0, nil
}

func (r *incidentRepo) GetPincodeCounts() ([]models.PincodeCount, error) {
	var counts []models.PincodeCount
	err := r.DB.Model(&models.Incident{}).
		Select("pincode, COUNT(*) as count").
		Where("pincode <> ''").
		Group("pincode").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, errors.Wrap(err, "gorm.pincode counts")
	}
	return counts, nil
}
