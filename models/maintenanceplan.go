package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaintenancePlan is an equipment-centric planning record, distinct
// from an executable work order. Business key format is
// WB-yyyymmdd-NNN (no project segment, three-digit sequence).
type MaintenancePlan struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID   string    `gorm:"size:64;uniqueIndex;not null" json:"plan_id"`
	PlanName string    `gorm:"size:255;not null" json:"plan_name"`

	ProjectID   string `gorm:"size:50;index" json:"project_id"`
	ProjectName string `gorm:"size:255" json:"project_name"`
	ClientName  string `gorm:"size:255" json:"client_name"`

	EquipmentName     string `gorm:"size:255" json:"equipment_name"`
	EquipmentModel    string `gorm:"size:255" json:"equipment_model,omitempty"`
	EquipmentLocation string `gorm:"size:255" json:"equipment_location,omitempty"`

	MaintenanceContent string `gorm:"type:text" json:"maintenance_content,omitempty"`
	MaintenanceCycle   string `gorm:"size:50" json:"maintenance_cycle,omitempty"` // 每周/每月/每季度/每年

	PlanStartDate Date `gorm:"type:date" json:"plan_start_date"`
	PlanEndDate   Date `gorm:"type:date" json:"plan_end_date"`

	Personnel string `gorm:"size:100" json:"maintenance_personnel"`
	Status    string `gorm:"size:20;index;default:'未进行'" json:"status"`
	Remarks   string `gorm:"type:text" json:"remarks,omitempty"`

	ActualCompletionDate *Date `gorm:"type:date" json:"actual_completion_date,omitempty"`

	IsDeleted   bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedTime *time.Time `json:"deleted_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MaintenancePlan) TableName() string { return "maintenance_plans" }

func (p *MaintenancePlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BusinessKey implements Mirrorable.
func (p *MaintenancePlan) BusinessKey() string { return p.PlanID }

func (p *MaintenancePlan) Kind() string { return PlanTypeMaintenance }

func (p *MaintenancePlan) Mirror() MirrorFields {
	return MirrorFields{
		PlanID:        p.PlanID,
		PlanType:      PlanTypeMaintenance,
		ProjectID:     p.ProjectID,
		ProjectName:   p.ProjectName,
		ClientName:    p.ClientName,
		PlanStartDate: p.PlanStartDate,
		PlanEndDate:   p.PlanEndDate,
		Personnel:     p.Personnel,
		Status:        p.Status,
		Remarks:       p.Remarks,
		PlanName:      p.PlanName,
		EquipmentName: p.EquipmentName,
	}
}

// ApplyMirror overwrites the mirrored subset. Equipment model,
// location, content and cycle never travel through the plan index and
// stay as they are.
func (p *MaintenancePlan) ApplyMirror(m MirrorFields) {
	p.PlanID = m.PlanID
	p.ProjectID = m.ProjectID
	p.ProjectName = m.ProjectName
	p.ClientName = m.ClientName
	p.PlanStartDate = m.PlanStartDate
	p.PlanEndDate = m.PlanEndDate
	p.Personnel = m.Personnel
	p.Status = m.Status
	p.Remarks = m.Remarks
	p.PlanName = m.PlanName
	p.EquipmentName = m.EquipmentName
}

// MarkCompleted stamps the completion date once.
func (p *MaintenancePlan) MarkCompleted(on time.Time) {
	if p.ActualCompletionDate == nil || p.ActualCompletionDate.IsZero() {
		d := NewDate(on)
		p.ActualCompletionDate = &d
	}
}

// SoftDelete flags the row.
func (p *MaintenancePlan) SoftDelete(at time.Time) {
	p.IsDeleted = true
	p.DeletedTime = &at
}

// Restore clears the soft-delete flags.
func (p *MaintenancePlan) Restore() {
	p.IsDeleted = false
	p.DeletedTime = nil
}
