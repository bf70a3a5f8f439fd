package handlers

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"p9e.in/weibao/models"
)

var (
	errUnknownPersonnel = errors.New("assigned personnel not found in directory")
	errUnknownProject   = errors.New("project not found")
)

// prepareOrderCreate validates and fills the shared part of a new
// order: personnel against the directory, project denormalization and
// the initial status. Runs before the insert transaction.
func prepareOrderCreate(db *gorm.DB, o *models.OrderCommon) error {
	if o.ProjectID == "" {
		return fmt.Errorf("%w: project_id is required", errUnknownProject)
	}
	project, err := models.FindProjectByCode(db, o.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", errUnknownProject, o.ProjectID)
		}
		return err
	}
	o.ProjectName = project.Name
	o.ClientName = project.ClientName

	if err := validatePersonnel(db, o.Personnel); err != nil {
		return err
	}

	if o.Status == "" {
		o.Status = models.StatusNotStarted
	}
	if !models.ValidStatus(o.Status) {
		return fmt.Errorf("%w: unknown status %q", models.ErrInvalidTransition, o.Status)
	}
	return nil
}

func validatePersonnel(db *gorm.DB, name string) error {
	if name == "" {
		return nil
	}
	ok, err := models.PersonnelExists(db, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownPersonnel, name)
	}
	return nil
}

// applyOrderUpdate finishes a partial update where the request body
// was decoded over the stored row, so only fields the body carried
// have changed. Identity, project and lifecycle fields are restored
// from the stored row, then a changed personnel is checked against
// the directory and a changed status against the transition table.
func applyOrderUpdate(db *gorm.DB, o, prev *models.OrderCommon) error {
	o.ID = prev.ID
	o.OrderNo = prev.OrderNo
	o.ProjectID = prev.ProjectID
	o.ProjectName = prev.ProjectName
	o.ClientName = prev.ClientName
	o.ActualCompletionDate = prev.ActualCompletionDate
	o.IsDeleted = prev.IsDeleted
	o.DeletedTime = prev.DeletedTime
	o.CreatedAt = prev.CreatedAt

	if o.Personnel != prev.Personnel {
		if err := validatePersonnel(db, o.Personnel); err != nil {
			return err
		}
	}
	if o.Status != prev.Status {
		to := o.Status
		o.Status = prev.Status
		if err := applyStatusChange(o, to); err != nil {
			return err
		}
	}
	return nil
}

// applyStatusChange moves an order to a new status, stamping the
// completion date when the target status calls for it.
func applyStatusChange(o *models.OrderCommon, to string) error {
	if err := models.CheckTransition(o.Status, to); err != nil {
		return err
	}
	o.Status = to
	if models.CompletionStatus(to) {
		o.MarkCompleted(time.Now())
	}
	return nil
}

// statusChangeRequest is the body of the status endpoints.
type statusChangeRequest struct {
	Status string `json:"status"`
}
