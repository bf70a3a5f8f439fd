package syncer

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"p9e.in/weibao/models"
)

var ErrUnknownPlanType = errors.New("unknown plan type")

// Engine propagates writes between a source store (work order or
// maintenance plan) and the work-plan index, keyed by the shared
// business identifier. Each call writes exactly one side; callers run
// the source write and the engine call inside one transaction so the
// pair commits or rolls back together.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// SyncOrderToPlan pushes a source row into the work-plan index.
// On delete the mirror row is removed; a missing mirror is not an
// error. On upsert the mirror is created or overwritten atomically
// with INSERT ... ON CONFLICT (plan_id) DO UPDATE, so two first-time
// creations for the same key cannot both insert.
func (e *Engine) SyncOrderToPlan(tx *gorm.DB, src models.Mirrorable, isDelete bool) (*models.WorkPlan, error) {
	key := src.BusinessKey()
	if key == "" {
		return nil, fmt.Errorf("sync to plan: empty business key")
	}

	if isDelete {
		if err := tx.Where("plan_id = ?", key).Delete(&models.WorkPlan{}).Error; err != nil {
			return nil, err
		}
		return nil, nil
	}

	plan := &models.WorkPlan{}
	plan.ApplyMirror(src.Mirror())
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "plan_id"}},
		DoUpdates: clause.AssignmentColumns(models.MirrorColumns()),
	}).Create(plan).Error; err != nil {
		return nil, err
	}

	var out models.WorkPlan
	if err := tx.Where("plan_id = ?", key).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// SyncMaintenancePlanToPlan mirrors a maintenance plan into the index.
func (e *Engine) SyncMaintenancePlanToPlan(tx *gorm.DB, mp *models.MaintenancePlan, isDelete bool) (*models.WorkPlan, error) {
	return e.SyncOrderToPlan(tx, mp, isDelete)
}

// SyncPlanToOrder pushes a work-plan row outward into the store its
// plan_type points at. On upsert with no live source row a new one is
// materialized from the mirrored subset alone; type-specific payload
// the index never carried stays at its zero value. A soft-deleted row
// still holding the business key is revived instead, since the key's
// unique index would reject a second insert. On delete the source row
// is soft-deleted; already gone is a no-op.
func (e *Engine) SyncPlanToOrder(tx *gorm.DB, plan *models.WorkPlan, isDelete bool) (models.Mirrorable, error) {
	dest, keyCol, err := targetFor(plan.PlanType)
	if err != nil {
		return nil, err
	}

	findErr := tx.Where(keyCol+" = ? AND is_deleted = ?", plan.PlanID, false).First(dest).Error

	if isDelete {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if findErr != nil {
			return nil, findErr
		}
		now := time.Now()
		dest.SoftDelete(now)
		return dest, tx.Model(dest).Where(keyCol+" = ?", plan.PlanID).
			Updates(map[string]interface{}{"is_deleted": true, "deleted_time": now}).Error
	}

	creating := false
	if errors.Is(findErr, gorm.ErrRecordNotFound) {
		switch err := tx.Where(keyCol+" = ?", plan.PlanID).First(dest).Error; {
		case err == nil:
			dest.Restore()
		case errors.Is(err, gorm.ErrRecordNotFound):
			creating = true
		default:
			return nil, err
		}
	} else if findErr != nil {
		return nil, findErr
	}

	dest.ApplyMirror(plan.Mirror())
	if models.CompletionStatus(plan.Status) {
		dest.MarkCompleted(time.Now())
	}
	if creating {
		return dest, tx.Create(dest).Error
	}
	return dest, tx.Save(dest).Error
}

// targetFor dispatches a plan_type to an empty row of the owning
// store plus the column its business key lives in.
func targetFor(planType string) (models.Mirrorable, string, error) {
	switch planType {
	case models.PlanTypeInspection:
		return &models.InspectionOrder{}, "order_no", nil
	case models.PlanTypeRepair:
		return &models.RepairOrder{}, "order_no", nil
	case models.PlanTypeSpotWork:
		return &models.SpotWorkOrder{}, "order_no", nil
	case models.PlanTypeMaintenance:
		return &models.MaintenancePlan{}, "plan_id", nil
	}
	return nil, "", fmt.Errorf("%w: %q", ErrUnknownPlanType, planType)
}
