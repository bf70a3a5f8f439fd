package models

import "time"

// MirrorFields is the shared projection every source row pushes into
// its work_plans row. The plan table must never carry a field the
// source cannot also produce here.
type MirrorFields struct {
	PlanID        string `json:"plan_id"`
	PlanType      string `json:"plan_type"`
	ProjectID     string `json:"project_id"`
	ProjectName   string `json:"project_name"`
	ClientName    string `json:"client_name"`
	PlanStartDate Date   `json:"plan_start_date"`
	PlanEndDate   Date   `json:"plan_end_date"`
	Personnel     string `json:"personnel"`
	Status        string `json:"status"`
	Remarks       string `json:"remarks"`
	FilledCount   int    `json:"filled_count"`
	TotalCount    int    `json:"total_count"`

	// Populated only by maintenance-plan sources; order-originated
	// mirrors leave these empty.
	PlanName      string `json:"plan_name,omitempty"`
	EquipmentName string `json:"equipment_name,omitempty"`
}

// Equal compares the mirrored subset, dates at day granularity.
func (m MirrorFields) Equal(other MirrorFields) bool {
	return m.PlanID == other.PlanID &&
		m.PlanType == other.PlanType &&
		m.ProjectID == other.ProjectID &&
		m.ProjectName == other.ProjectName &&
		m.ClientName == other.ClientName &&
		m.PlanStartDate.Equal(other.PlanStartDate) &&
		m.PlanEndDate.Equal(other.PlanEndDate) &&
		m.Personnel == other.Personnel &&
		m.Status == other.Status &&
		m.Remarks == other.Remarks &&
		m.FilledCount == other.FilledCount &&
		m.TotalCount == other.TotalCount &&
		m.PlanName == other.PlanName &&
		m.EquipmentName == other.EquipmentName
}

// Mirrorable is implemented by every source row the sync engine can
// project into the work-plan index: the three work-order variants and
// the maintenance plan.
type Mirrorable interface {
	// BusinessKey returns the order_no / plan_id shared with the mirror.
	BusinessKey() string
	// Kind returns the plan_type discriminant for this source.
	Kind() string
	// Mirror returns the current mirrored-field projection.
	Mirror() MirrorFields
	// ApplyMirror overwrites the mirrored subset from a plan row,
	// leaving type-specific payload untouched.
	ApplyMirror(MirrorFields)
	// SoftDelete flags the source row deleted without removing it.
	SoftDelete(time.Time)
	// Restore clears the soft-delete flags so the row is live again.
	Restore()
	// MarkCompleted stamps the actual completion date once; further
	// calls are no-ops.
	MarkCompleted(time.Time)
}
