package config

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"p9e.in/weibao/models"
)

// SeedBaseData creates the admin account and a couple of demo
// projects on an empty database. Safe to run on every start.
func SeedBaseData(db *gorm.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedProjects(db)
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "系统管理员",
		Phone:        "13800000000",
		PasswordHash: string(hash),
		Role:         "管理员",
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Seeded default admin user")
	return nil
}

func seedProjects(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Project{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	projects := []models.Project{
		{Code: "P001", Name: "一号产业园维保项目", ClientName: "华东物业集团"},
		{Code: "P002", Name: "滨江写字楼维保项目", ClientName: "滨江置业有限公司"},
	}
	for i := range projects {
		if err := db.Create(&projects[i]).Error; err != nil {
			return err
		}
	}
	log.Println("Seeded demo projects")
	return nil
}
