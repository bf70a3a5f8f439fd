package syncer

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"p9e.in/weibao/models"
)

// Issue classes reported by the auditor.
const (
	IssueMissingMirror = "missing_mirror"
	IssueFieldMismatch = "field_mismatch"
	IssueOrphanMirror  = "orphan_mirror"
)

// Issue is one detected divergence between a source row and the
// work-plan index.
type Issue struct {
	PlanID string `json:"plan_id"`
	Source string `json:"source"`
	Class  string `json:"class"`
	Detail string `json:"detail,omitempty"`
	Fixed  bool   `json:"fixed"`
	Error  string `json:"error,omitempty"`
}

// TableReport summarizes one source table's pass.
type TableReport struct {
	Source        string  `json:"source"`
	SourceRows    int     `json:"source_rows"`
	MissingMirror int     `json:"missing_mirror"`
	FieldMismatch int     `json:"field_mismatch"`
	OrphanMirror  int     `json:"orphan_mirror"`
	Fixed         int     `json:"fixed"`
	Errors        int     `json:"errors"`
	Issues        []Issue `json:"issues,omitempty"`
}

// Report is the machine-readable audit result. Non-zero IssuesFound
// on a dry run is the alertable signal.
type Report struct {
	DryRun      bool             `json:"dry_run"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
	Tables      []TableReport    `json:"tables"`
	IssuesFound int              `json:"issues_found"`
	IssuesFixed int              `json:"issues_fixed"`
	RowCounts   map[string]int64 `json:"row_counts"`
}

// Auditor detects and repairs drift between the source stores and the
// work-plan index. Each repair is an ordinary sync call in its own
// transaction; a failing row is recorded and skipped, not fatal. The
// pass takes no table locks, so under live traffic it is best-effort:
// re-run until clean.
type Auditor struct {
	DB     *gorm.DB
	Engine *Engine
}

func NewAuditor(db *gorm.DB) *Auditor {
	return &Auditor{DB: db, Engine: NewEngine()}
}

// Audit runs one full reconciliation pass. With dryRun the pass only
// classifies; otherwise every detected issue is repaired in place.
// The index is loaded once and each source table is scanned once, so
// the pass is one bulk read per table instead of a lookup per row.
func (a *Auditor) Audit(dryRun bool) (*Report, error) {
	report := &Report{
		DryRun:    dryRun,
		StartedAt: time.Now(),
		RowCounts: map[string]int64{},
	}

	var plans []models.WorkPlan
	if err := a.DB.Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("audit: loading work plans: %w", err)
	}
	byID := make(map[string]*models.WorkPlan, len(plans))
	for i := range plans {
		byID[plans[i].PlanID] = &plans[i]
	}
	seen := make(map[string]bool, len(plans))

	for _, pass := range a.sourcePasses() {
		rows, err := pass.load()
		if err != nil {
			return nil, fmt.Errorf("audit: loading %s: %w", pass.name, err)
		}
		tr := a.auditSource(pass.name, rows, byID, seen, dryRun)
		report.Tables = append(report.Tables, tr)
	}

	orphans := a.auditOrphans(byID, seen, dryRun)
	report.Tables = append(report.Tables, orphans)

	for _, tr := range report.Tables {
		report.IssuesFound += tr.MissingMirror + tr.FieldMismatch + tr.OrphanMirror
		report.IssuesFixed += tr.Fixed
	}

	if err := a.countRows(report); err != nil {
		return nil, err
	}
	report.FinishedAt = time.Now()
	return report, nil
}

type sourcePass struct {
	name string
	load func() ([]models.Mirrorable, error)
}

func (a *Auditor) sourcePasses() []sourcePass {
	return []sourcePass{
		{"inspection_orders", func() ([]models.Mirrorable, error) {
			var rows []models.InspectionOrder
			if err := a.DB.Where("is_deleted = ?", false).Find(&rows).Error; err != nil {
				return nil, err
			}
			out := make([]models.Mirrorable, len(rows))
			for i := range rows {
				out[i] = &rows[i]
			}
			return out, nil
		}},
		{"repair_orders", func() ([]models.Mirrorable, error) {
			var rows []models.RepairOrder
			if err := a.DB.Where("is_deleted = ?", false).Find(&rows).Error; err != nil {
				return nil, err
			}
			out := make([]models.Mirrorable, len(rows))
			for i := range rows {
				out[i] = &rows[i]
			}
			return out, nil
		}},
		{"spot_work_orders", func() ([]models.Mirrorable, error) {
			var rows []models.SpotWorkOrder
			if err := a.DB.Where("is_deleted = ?", false).Find(&rows).Error; err != nil {
				return nil, err
			}
			out := make([]models.Mirrorable, len(rows))
			for i := range rows {
				out[i] = &rows[i]
			}
			return out, nil
		}},
		{"maintenance_plans", func() ([]models.Mirrorable, error) {
			var rows []models.MaintenancePlan
			if err := a.DB.Where("is_deleted = ?", false).Find(&rows).Error; err != nil {
				return nil, err
			}
			out := make([]models.Mirrorable, len(rows))
			for i := range rows {
				out[i] = &rows[i]
			}
			return out, nil
		}},
	}
}

// auditSource walks one source table against the preloaded index.
func (a *Auditor) auditSource(name string, rows []models.Mirrorable, byID map[string]*models.WorkPlan, seen map[string]bool, dryRun bool) TableReport {
	tr := TableReport{Source: name, SourceRows: len(rows)}

	for _, src := range rows {
		key := src.BusinessKey()
		plan, ok := byID[key]
		if ok {
			seen[key] = true
		}

		var issue *Issue
		switch {
		case !ok:
			issue = &Issue{PlanID: key, Source: name, Class: IssueMissingMirror}
			tr.MissingMirror++
		case !plan.Mirror().Equal(src.Mirror()):
			issue = &Issue{
				PlanID: key, Source: name, Class: IssueFieldMismatch,
				Detail: fmt.Sprintf("plan status=%q personnel=%q vs source status=%q personnel=%q",
					plan.Status, plan.Personnel, src.Mirror().Status, src.Mirror().Personnel),
			}
			tr.FieldMismatch++
		default:
			continue
		}

		if !dryRun {
			err := a.DB.Transaction(func(tx *gorm.DB) error {
				_, err := a.Engine.SyncOrderToPlan(tx, src, false)
				return err
			})
			if err != nil {
				issue.Error = err.Error()
				tr.Errors++
				log.Printf("audit: fixing %s %s failed: %v", name, key, err)
			} else {
				issue.Fixed = true
				tr.Fixed++
			}
		}
		tr.Issues = append(tr.Issues, *issue)
	}
	return tr
}

// auditOrphans repairs index rows whose source row is gone. When the
// source vanished outright a new row is materialized from the mirrored
// subset, lossy for type-specific payload the index never carried.
// When the source was soft-deleted the deletion is what got lost, so
// the source wins and the mirror row is dropped instead.
func (a *Auditor) auditOrphans(byID map[string]*models.WorkPlan, seen map[string]bool, dryRun bool) TableReport {
	tr := TableReport{Source: "work_plans"}

	for key, plan := range byID {
		if seen[key] {
			continue
		}
		issue := Issue{PlanID: key, Source: "work_plans", Class: IssueOrphanMirror,
			Detail: fmt.Sprintf("no live %s row", plan.PlanType)}
		tr.OrphanMirror++

		if !dryRun {
			err := a.DB.Transaction(func(tx *gorm.DB) error {
				return a.repairOrphan(tx, plan)
			})
			if err != nil {
				issue.Error = err.Error()
				tr.Errors++
				log.Printf("audit: repairing orphan %s failed: %v", key, err)
			} else {
				issue.Fixed = true
				tr.Fixed++
			}
		}
		tr.Issues = append(tr.Issues, issue)
	}
	return tr
}

// repairOrphan resolves one orphan mirror. A soft-deleted row still
// holding the business key means the source was deleted and the mirror
// delete never landed; propagating the deletion converges, while
// rematerializing would only collide with the key's unique index.
func (a *Auditor) repairOrphan(tx *gorm.DB, plan *models.WorkPlan) error {
	dest, keyCol, err := targetFor(plan.PlanType)
	if err != nil {
		return err
	}
	var deleted int64
	if err := tx.Model(dest).Where(keyCol+" = ? AND is_deleted = ?", plan.PlanID, true).Count(&deleted).Error; err != nil {
		return err
	}
	if deleted > 0 {
		return tx.Where("plan_id = ?", plan.PlanID).Delete(&models.WorkPlan{}).Error
	}
	_, err = a.Engine.SyncPlanToOrder(tx, plan, false)
	return err
}

func (a *Auditor) countRows(report *Report) error {
	tables := map[string]interface{}{
		"inspection_orders": &models.InspectionOrder{},
		"repair_orders":     &models.RepairOrder{},
		"spot_work_orders":  &models.SpotWorkOrder{},
		"maintenance_plans": &models.MaintenancePlan{},
		"work_plans":        &models.WorkPlan{},
	}
	for name, model := range tables {
		var n int64
		if err := a.DB.Model(model).Count(&n).Error; err != nil {
			return fmt.Errorf("audit: counting %s: %w", name, err)
		}
		report.RowCounts[name] = n
	}
	return nil
}
