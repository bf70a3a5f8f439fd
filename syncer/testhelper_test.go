package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"p9e.in/weibao/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every session on the same in-memory DB
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Project{},
		&models.InspectionOrder{}, &models.RepairOrder{}, &models.SpotWorkOrder{},
		&models.MaintenancePlan{}, &models.WorkPlan{}, &models.OrderSequence{},
	))
	return db
}

func date(y int, m time.Month, d int) models.Date {
	return models.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func newInspection(orderNo, status string) *models.InspectionOrder {
	return &models.InspectionOrder{
		OrderCommon: models.OrderCommon{
			OrderNo:       orderNo,
			ProjectID:     "P001",
			ProjectName:   "一号产业园维保项目",
			ClientName:    "华东物业集团",
			PlanStartDate: date(2026, 1, 1),
			PlanEndDate:   date(2026, 1, 7),
			Personnel:     "张伟",
			Status:        status,
			TotalCount:    4,
		},
		InspectionContent: "配电房巡检",
	}
}

func newRepair(orderNo, status string) *models.RepairOrder {
	return &models.RepairOrder{
		OrderCommon: models.OrderCommon{
			OrderNo:       orderNo,
			ProjectID:     "P001",
			ProjectName:   "一号产业园维保项目",
			ClientName:    "华东物业集团",
			PlanStartDate: date(2026, 2, 10),
			PlanEndDate:   date(2026, 2, 12),
			Personnel:     "李强",
			Status:        status,
		},
		FaultDescription: "电梯异响",
	}
}
