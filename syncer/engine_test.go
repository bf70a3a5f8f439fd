package syncer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"p9e.in/weibao/models"
)

func syncToPlan(t *testing.T, db *gorm.DB, src models.Mirrorable, isDelete bool) *models.WorkPlan {
	t.Helper()
	var plan *models.WorkPlan
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		plan, err = NewEngine().SyncOrderToPlan(tx, src, isDelete)
		return err
	})
	require.NoError(t, err)
	return plan
}

func TestSyncOrderToPlanCreatesMirror(t *testing.T) {
	db := openTestDB(t)

	o := newInspection("XJ-P001-20260101-01", models.StatusNotStarted)
	require.NoError(t, db.Create(o).Error)

	plan := syncToPlan(t, db, o, false)
	require.NotNil(t, plan)

	assert.Equal(t, "XJ-P001-20260101-01", plan.PlanID)
	assert.Equal(t, models.PlanTypeInspection, plan.PlanType)
	assert.Equal(t, models.StatusNotStarted, plan.Status)
	assert.True(t, plan.Mirror().Equal(o.Mirror()))
}

func TestSyncOrderToPlanOverwritesInPlace(t *testing.T) {
	db := openTestDB(t)

	o := newRepair("WX-P001-20260210-01", models.StatusNotStarted)
	require.NoError(t, db.Create(o).Error)
	syncToPlan(t, db, o, false)

	o.Status = models.StatusPending
	o.Personnel = "王芳"
	require.NoError(t, db.Save(o).Error)
	plan := syncToPlan(t, db, o, false)

	assert.Equal(t, models.StatusPending, plan.Status)
	assert.Equal(t, "王芳", plan.Personnel)

	var count int64
	require.NoError(t, db.Model(&models.WorkPlan{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSyncOrderToPlanIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	o := newInspection("XJ-P001-20260101-01", models.StatusPending)
	require.NoError(t, db.Create(o).Error)

	first := syncToPlan(t, db, o, false)
	second := syncToPlan(t, db, o, false)

	assert.Equal(t, first.PlanID, second.PlanID)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.Mirror().Equal(second.Mirror()))

	var count int64
	require.NoError(t, db.Model(&models.WorkPlan{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSyncOrderToPlanDeletePropagates(t *testing.T) {
	db := openTestDB(t)

	o := newInspection("XJ-P001-20260101-01", models.StatusNotStarted)
	require.NoError(t, db.Create(o).Error)
	syncToPlan(t, db, o, false)

	plan := syncToPlan(t, db, o, true)
	assert.Nil(t, plan)

	var count int64
	require.NoError(t, db.Model(&models.WorkPlan{}).Where("plan_id = ?", o.OrderNo).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// second delete is a no-op, not an error
	plan = syncToPlan(t, db, o, true)
	assert.Nil(t, plan)
}

func TestSyncPlanToOrderMaterializesSource(t *testing.T) {
	db := openTestDB(t)

	plan := &models.WorkPlan{
		PlanID:        "WX-P001-20260210-05",
		PlanType:      models.PlanTypeRepair,
		ProjectID:     "P001",
		ProjectName:   "一号产业园维保项目",
		ClientName:    "华东物业集团",
		PlanStartDate: date(2026, 2, 10),
		PlanEndDate:   date(2026, 2, 12),
		Personnel:     "李强",
		Status:        models.StatusNotStarted,
	}
	require.NoError(t, db.Create(plan).Error)

	var src models.Mirrorable
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		src, err = NewEngine().SyncPlanToOrder(tx, plan, false)
		return err
	})
	require.NoError(t, err)

	repair, ok := src.(*models.RepairOrder)
	require.True(t, ok)
	assert.Equal(t, "WX-P001-20260210-05", repair.OrderNo)
	assert.True(t, repair.Mirror().Equal(plan.Mirror()))
	// type-specific payload the plan never carried stays zero
	assert.Empty(t, repair.FaultDescription)
}

func TestRoundTripPreservesMirrorNotPayload(t *testing.T) {
	db := openTestDB(t)
	eng := NewEngine()

	plan := &models.WorkPlan{
		PlanID:        "XJ-P001-20260101-03",
		PlanType:      models.PlanTypeInspection,
		ProjectID:     "P001",
		ProjectName:   "一号产业园维保项目",
		PlanStartDate: date(2026, 1, 1),
		PlanEndDate:   date(2026, 1, 7),
		Personnel:     "张伟",
		Status:        models.StatusPending,
		Remarks:       "雨季前检查",
	}
	require.NoError(t, db.Create(plan).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := eng.SyncPlanToOrder(tx, plan, false)
		return err
	})
	require.NoError(t, err)

	var o models.InspectionOrder
	require.NoError(t, db.Where("order_no = ?", plan.PlanID).First(&o).Error)
	assert.Empty(t, o.InspectionContent)

	roundTripped := syncToPlan(t, db, &o, false)
	assert.True(t, roundTripped.Mirror().Equal(plan.Mirror()))
}

func TestSyncPlanToOrderUpdateKeepsPayload(t *testing.T) {
	db := openTestDB(t)
	eng := NewEngine()

	o := newRepair("WX-P001-20260210-01", models.StatusNotStarted)
	o.RepairMeasure = "更换曳引轮"
	require.NoError(t, db.Create(o).Error)
	plan := syncToPlan(t, db, o, false)

	plan.Status = models.StatusPending
	require.NoError(t, db.Save(plan).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := eng.SyncPlanToOrder(tx, plan, false)
		return err
	})
	require.NoError(t, err)

	var updated models.RepairOrder
	require.NoError(t, db.Where("order_no = ?", o.OrderNo).First(&updated).Error)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Equal(t, "更换曳引轮", updated.RepairMeasure)
}

func TestSyncPlanToOrderDeleteSoftDeletes(t *testing.T) {
	db := openTestDB(t)
	eng := NewEngine()

	o := newInspection("XJ-P001-20260101-01", models.StatusNotStarted)
	require.NoError(t, db.Create(o).Error)
	plan := syncToPlan(t, db, o, false)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := eng.SyncPlanToOrder(tx, plan, true)
		return err
	})
	require.NoError(t, err)

	var gone models.InspectionOrder
	require.NoError(t, db.Where("order_no = ?", o.OrderNo).First(&gone).Error)
	assert.True(t, gone.IsDeleted)
	require.NotNil(t, gone.DeletedTime)

	// already gone: no-op
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := eng.SyncPlanToOrder(tx, plan, true)
		return err
	})
	require.NoError(t, err)
}

func TestSyncPlanToOrderCompletionStampsDate(t *testing.T) {
	db := openTestDB(t)
	eng := NewEngine()

	plan := &models.WorkPlan{
		PlanID:    "LX-P001-20260101-01",
		PlanType:  models.PlanTypeSpotWork,
		ProjectID: "P001",
		Status:    models.StatusDone,
	}
	require.NoError(t, db.Create(plan).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := eng.SyncPlanToOrder(tx, plan, false)
		return err
	})
	require.NoError(t, err)

	var o models.SpotWorkOrder
	require.NoError(t, db.Where("order_no = ?", plan.PlanID).First(&o).Error)
	require.NotNil(t, o.ActualCompletionDate)
	assert.False(t, o.ActualCompletionDate.IsZero())
}

func TestSyncPlanToOrderUnknownType(t *testing.T) {
	db := openTestDB(t)

	plan := &models.WorkPlan{PlanID: "XX-1", PlanType: "不存在的类型"}
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := NewEngine().SyncPlanToOrder(tx, plan, false)
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPlanType))
}

func TestSyncMaintenancePlanToPlanCarriesPlanName(t *testing.T) {
	db := openTestDB(t)

	mp := &models.MaintenancePlan{
		PlanID:        "WB-20260315-001",
		PlanName:      "中央空调季度保养",
		ProjectID:     "P002",
		ProjectName:   "滨江写字楼维保项目",
		EquipmentName: "中央空调机组",
		PlanStartDate: date(2026, 3, 15),
		PlanEndDate:   date(2026, 3, 16),
		Personnel:     "张伟",
		Status:        models.StatusNotStarted,
	}
	require.NoError(t, db.Create(mp).Error)

	var plan *models.WorkPlan
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		plan, err = NewEngine().SyncMaintenancePlanToPlan(tx, mp, false)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, models.PlanTypeMaintenance, plan.PlanType)
	assert.Equal(t, "中央空调季度保养", plan.PlanName)
	assert.Equal(t, "中央空调机组", plan.EquipmentName)
}

func TestSyncPlanToOrderRevivesSoftDeletedSource(t *testing.T) {
	db := openTestDB(t)

	o := newInspection("XJ-P001-20260101-01", models.StatusNotStarted)
	require.NoError(t, db.Create(o).Error)
	now := time.Now()
	require.NoError(t, db.Model(o).Updates(map[string]interface{}{
		"is_deleted": true, "deleted_time": now,
	}).Error)

	plan := &models.WorkPlan{}
	plan.ApplyMirror(o.Mirror())
	plan.Status = models.StatusPending
	require.NoError(t, db.Create(plan).Error)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := NewEngine().SyncPlanToOrder(tx, plan, false)
		return err
	}))

	// the soft-deleted row was revived in place, not duplicated
	var count int64
	require.NoError(t, db.Model(&models.InspectionOrder{}).Where("order_no = ?", o.OrderNo).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var revived models.InspectionOrder
	require.NoError(t, db.Where("order_no = ?", o.OrderNo).First(&revived).Error)
	assert.False(t, revived.IsDeleted)
	assert.Nil(t, revived.DeletedTime)
	assert.Equal(t, models.StatusPending, revived.Status)
	assert.Equal(t, "配电房巡检", revived.InspectionContent)
}
