package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/weibao/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20260215_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Project{},
					&models.InspectionOrder{}, &models.RepairOrder{}, &models.SpotWorkOrder{},
					&models.MaintenancePlan{}, &models.WorkPlan{})
			},
		},
		{
			ID: "20260220_add_order_sequences",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.OrderSequence{})
			},
		},
	})
	return m.Migrate()
}
