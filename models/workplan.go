package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkPlan is the denormalized cross-type index row. plan_id equals
// the originating order_no / maintenance plan_id and is unique; that
// uniqueness is the core invariant of the whole subsystem. The sync
// engine is the sole writer of the mirrored subset.
type WorkPlan struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID   string    `gorm:"size:64;uniqueIndex;not null" json:"plan_id"`
	PlanType string    `gorm:"size:20;index;not null" json:"plan_type"`

	ProjectID   string `gorm:"size:50;index" json:"project_id"`
	ProjectName string `gorm:"size:255" json:"project_name"`
	ClientName  string `gorm:"size:255" json:"client_name"`

	PlanStartDate Date `gorm:"type:date" json:"plan_start_date"`
	PlanEndDate   Date `gorm:"type:date" json:"plan_end_date"`

	Personnel string `gorm:"size:100" json:"assigned_personnel"`
	Status    string `gorm:"size:20;index;default:'未进行'" json:"status"`
	Remarks   string `gorm:"type:text" json:"remarks,omitempty"`

	FilledCount int `gorm:"default:0" json:"filled_count"`
	TotalCount  int `gorm:"default:0" json:"total_count"`

	// Present only on rows mirrored from maintenance plans.
	PlanName      string `gorm:"size:255" json:"plan_name,omitempty"`
	EquipmentName string `gorm:"size:255" json:"equipment_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WorkPlan) TableName() string { return "work_plans" }

func (p *WorkPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Mirror returns the mirrored-field projection of the plan row.
func (p *WorkPlan) Mirror() MirrorFields {
	return MirrorFields{
		PlanID:        p.PlanID,
		PlanType:      p.PlanType,
		ProjectID:     p.ProjectID,
		ProjectName:   p.ProjectName,
		ClientName:    p.ClientName,
		PlanStartDate: p.PlanStartDate,
		PlanEndDate:   p.PlanEndDate,
		Personnel:     p.Personnel,
		Status:        p.Status,
		Remarks:       p.Remarks,
		FilledCount:   p.FilledCount,
		TotalCount:    p.TotalCount,
		PlanName:      p.PlanName,
		EquipmentName: p.EquipmentName,
	}
}

// ApplyMirror overwrites the mirrored subset from a source row.
func (p *WorkPlan) ApplyMirror(m MirrorFields) {
	p.PlanID = m.PlanID
	p.PlanType = m.PlanType
	p.ProjectID = m.ProjectID
	p.ProjectName = m.ProjectName
	p.ClientName = m.ClientName
	p.PlanStartDate = m.PlanStartDate
	p.PlanEndDate = m.PlanEndDate
	p.Personnel = m.Personnel
	p.Status = m.Status
	p.Remarks = m.Remarks
	p.FilledCount = m.FilledCount
	p.TotalCount = m.TotalCount
	p.PlanName = m.PlanName
	p.EquipmentName = m.EquipmentName
}

// MirrorColumns lists the work_plans columns the sync engine may
// overwrite on conflict. Kept next to the model so schema changes and
// the upsert column list move together.
func MirrorColumns() []string {
	return []string{
		"plan_type", "project_id", "project_name", "client_name",
		"plan_start_date", "plan_end_date", "personnel", "status",
		"remarks", "filled_count", "total_count",
		"plan_name", "equipment_name", "updated_at",
	}
}
