package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project supplies the denormalized project_name / client_name copies
// stamped onto orders at creation time. Orders reference it by Code,
// not by foreign key.
type Project struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code       string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	ClientName string    `gorm:"size:255" json:"client_name"`
	Address    string    `gorm:"size:500" json:"address,omitempty"`
	Status     string    `gorm:"size:50;default:'进行中'" json:"status"` // 进行中, 已结束

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// FindProjectByCode loads a project by its business code.
func FindProjectByCode(db *gorm.DB, code string) (*Project, error) {
	var p Project
	if err := db.Where("code = ?", code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
