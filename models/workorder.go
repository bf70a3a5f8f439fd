package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderCommon holds the fields every work-order variant shares: the
// business key, denormalized project data, the commitment window and
// the lifecycle status. Embedded by the three variants so the sync
// engine sees one shape.
type OrderCommon struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNo string    `gorm:"size:64;uniqueIndex;not null" json:"order_no"`

	ProjectID   string `gorm:"size:50;index;not null" json:"project_id"`
	ProjectName string `gorm:"size:255" json:"project_name"`
	ClientName  string `gorm:"size:255" json:"client_name"`

	PlanStartDate Date `gorm:"type:date" json:"plan_start_date"`
	PlanEndDate   Date `gorm:"type:date" json:"plan_end_date"`

	// Free-text name, validated against the personnel directory at
	// write time, not by foreign key.
	Personnel string `gorm:"size:100" json:"assigned_personnel"`

	Status  string `gorm:"size:20;index;default:'未进行'" json:"status"`
	Remarks string `gorm:"type:text" json:"remarks,omitempty"`

	FilledCount int `gorm:"default:0" json:"filled_count"`
	TotalCount  int `gorm:"default:0" json:"total_count"`

	ActualCompletionDate *Date `gorm:"type:date" json:"actual_completion_date,omitempty"`

	IsDeleted   bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedTime *time.Time `json:"deleted_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BusinessKey implements Mirrorable.
func (o *OrderCommon) BusinessKey() string { return o.OrderNo }

func (o *OrderCommon) mirror(kind string) MirrorFields {
	return MirrorFields{
		PlanID:        o.OrderNo,
		PlanType:      kind,
		ProjectID:     o.ProjectID,
		ProjectName:   o.ProjectName,
		ClientName:    o.ClientName,
		PlanStartDate: o.PlanStartDate,
		PlanEndDate:   o.PlanEndDate,
		Personnel:     o.Personnel,
		Status:        o.Status,
		Remarks:       o.Remarks,
		FilledCount:   o.FilledCount,
		TotalCount:    o.TotalCount,
	}
}

// ApplyMirror implements Mirrorable. PlanName and EquipmentName have
// no home on an order row and are dropped.
func (o *OrderCommon) ApplyMirror(m MirrorFields) {
	o.OrderNo = m.PlanID
	o.ProjectID = m.ProjectID
	o.ProjectName = m.ProjectName
	o.ClientName = m.ClientName
	o.PlanStartDate = m.PlanStartDate
	o.PlanEndDate = m.PlanEndDate
	o.Personnel = m.Personnel
	o.Status = m.Status
	o.Remarks = m.Remarks
	o.FilledCount = m.FilledCount
	o.TotalCount = m.TotalCount
}

// MarkCompleted stamps the completion date once. Calling it again is
// a no-op so repeated confirms cannot drift the date.
func (o *OrderCommon) MarkCompleted(on time.Time) {
	if o.ActualCompletionDate == nil || o.ActualCompletionDate.IsZero() {
		d := NewDate(on)
		o.ActualCompletionDate = &d
	}
}

// SoftDelete flags the row; the mirror row is removed separately by
// the sync engine.
func (o *OrderCommon) SoftDelete(at time.Time) {
	o.IsDeleted = true
	o.DeletedTime = &at
}

// Restore clears the soft-delete flags. The business key stays as it
// was, so a revived row keeps its identity.
func (o *OrderCommon) Restore() {
	o.IsDeleted = false
	o.DeletedTime = nil
}

// InspectionOrder is a periodic inspection work order (定期巡检).
type InspectionOrder struct {
	OrderCommon

	InspectionContent string         `gorm:"type:text" json:"inspection_content,omitempty"`
	InspectionResult  string         `gorm:"type:text" json:"inspection_result,omitempty"`
	Photos            datatypes.JSON `gorm:"type:jsonb" json:"photos,omitempty"`
	Signature         string         `gorm:"size:500" json:"signature,omitempty"`
}

func (InspectionOrder) TableName() string { return "inspection_orders" }

func (o *InspectionOrder) Kind() string { return PlanTypeInspection }

func (o *InspectionOrder) Mirror() MirrorFields { return o.mirror(PlanTypeInspection) }

func (o *InspectionOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// RepairOrder is a temporary repair work order (临时维修).
type RepairOrder struct {
	OrderCommon

	FaultDescription string         `gorm:"type:text" json:"fault_description,omitempty"`
	RepairMeasure    string         `gorm:"type:text" json:"repair_measure,omitempty"`
	RepairResult     string         `gorm:"type:text" json:"repair_result,omitempty"`
	Photos           datatypes.JSON `gorm:"type:jsonb" json:"photos,omitempty"`
	Signature        string         `gorm:"size:500" json:"signature,omitempty"`
}

func (RepairOrder) TableName() string { return "repair_orders" }

func (o *RepairOrder) Kind() string { return PlanTypeRepair }

func (o *RepairOrder) Mirror() MirrorFields { return o.mirror(PlanTypeRepair) }

func (o *RepairOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// SpotWorkOrder is a spot-labor work order (零星用工).
type SpotWorkOrder struct {
	OrderCommon

	WorkContent string         `gorm:"type:text" json:"work_content,omitempty"`
	LaborCount  int            `gorm:"default:0" json:"labor_count"`
	WorkHours   float64        `gorm:"default:0" json:"work_hours"`
	Photos      datatypes.JSON `gorm:"type:jsonb" json:"photos,omitempty"`
}

func (SpotWorkOrder) TableName() string { return "spot_work_orders" }

func (o *SpotWorkOrder) Kind() string { return PlanTypeSpotWork }

func (o *SpotWorkOrder) Mirror() MirrorFields { return o.mirror(PlanTypeSpotWork) }

func (o *SpotWorkOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
