package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"p9e.in/weibao/config"
	"p9e.in/weibao/models"
	"p9e.in/weibao/syncer"
)

func workPlanQuery(r *http.Request) *gorm.DB {
	q := config.DB.Model(&models.WorkPlan{})
	if v := r.URL.Query().Get("plan_type"); v != "" {
		q = q.Where("plan_type = ?", v)
	}
	if v := r.URL.Query().Get("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := r.URL.Query().Get("project_id"); v != "" {
		q = q.Where("project_id = ?", v)
	}
	if v := r.URL.Query().Get("personnel"); v != "" {
		q = q.Where("personnel = ?", v)
	}
	if v := r.URL.Query().Get("keyword"); v != "" {
		kw := "%" + v + "%"
		q = q.Where("plan_id LIKE ? OR project_name LIKE ? OR plan_name LIKE ?", kw, kw, kw)
	}
	if v := r.URL.Query().Get("start_from"); v != "" {
		q = q.Where("plan_start_date >= ?", v)
	}
	if v := r.URL.Query().Get("start_to"); v != "" {
		q = q.Where("plan_start_date <= ?", v)
	}
	return q
}

// GetAllWorkPlans is the unified cross-type listing.
func GetAllWorkPlans(w http.ResponseWriter, r *http.Request) {
	page, size := pagination(r)
	q := workPlanQuery(r)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var items []models.WorkPlan
	if err := q.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&items).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Total: total, Page: page, Size: size, Items: items})
}

func GetWorkPlan(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]
	var item models.WorkPlan
	if err := config.DB.Where("plan_id = ?", planID).First(&item).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// CreateWorkPlan is the planner-first entry point: the plan row is
// created directly and the backing source row is materialized in the
// same transaction. Type-specific payload starts at its zero value.
func CreateWorkPlan(w http.ResponseWriter, r *http.Request) {
	var item models.WorkPlan
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	prefix, ok := models.PrefixFor(item.PlanType)
	if !ok {
		http.Error(w, "unknown plan_type", http.StatusBadRequest)
		return
	}
	if item.PlanType != models.PlanTypeMaintenance {
		if item.ProjectID == "" {
			http.Error(w, "project_id is required", http.StatusBadRequest)
			return
		}
		project, err := models.FindProjectByCode(config.DB, item.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondWriteError(w, fmt.Errorf("%w: %s", errUnknownProject, item.ProjectID))
				return
			}
			respondWriteError(w, err)
			return
		}
		item.ProjectName = project.Name
		item.ClientName = project.ClientName
	} else if item.PlanName == "" {
		http.Error(w, "plan_name is required", http.StatusBadRequest)
		return
	}
	if err := validatePersonnel(config.DB, item.Personnel); err != nil {
		respondWriteError(w, err)
		return
	}
	if item.Status == "" {
		item.Status = models.StatusNotStarted
	}
	if !models.ValidStatus(item.Status) {
		respondWriteError(w, fmt.Errorf("%w: unknown status %q", models.ErrInvalidTransition, item.Status))
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if item.PlanID == "" {
			var planID string
			var err error
			if item.PlanType == models.PlanTypeMaintenance {
				planID, err = syncer.NextMaintenancePlanID(tx, time.Now())
			} else {
				planID, err = syncer.NextOrderNo(tx, prefix, item.ProjectID, time.Now())
			}
			if err != nil {
				return err
			}
			item.PlanID = planID
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		_, err := planSync.SyncPlanToOrder(tx, &item, false)
		return err
	})
	if err != nil {
		respondWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func UpdateWorkPlan(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]
	var item models.WorkPlan
	if err := config.DB.Where("plan_id = ?", planID).First(&item).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	var body models.WorkPlan
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if body.Personnel != "" && body.Personnel != item.Personnel {
		if err := validatePersonnel(config.DB, body.Personnel); err != nil {
			respondWriteError(w, err)
			return
		}
		item.Personnel = body.Personnel
	}
	if body.Status != "" && body.Status != item.Status {
		if err := models.CheckTransition(item.Status, body.Status); err != nil {
			respondWriteError(w, err)
			return
		}
		item.Status = body.Status
	}
	if !body.PlanStartDate.IsZero() {
		item.PlanStartDate = body.PlanStartDate
	}
	if !body.PlanEndDate.IsZero() {
		item.PlanEndDate = body.PlanEndDate
	}
	item.Remarks = body.Remarks
	item.FilledCount = body.FilledCount
	item.TotalCount = body.TotalCount
	if body.PlanName != "" {
		item.PlanName = body.PlanName
	}
	if body.EquipmentName != "" {
		item.EquipmentName = body.EquipmentName
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		_, err := planSync.SyncPlanToOrder(tx, &item, false)
		return err
	})
	if err != nil {
		respondWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func DeleteWorkPlan(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]
	var item models.WorkPlan
	err := config.DB.Where("plan_id = ?", planID).First(&item).Error
	if err != nil {
		// already gone: idempotent
		writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", planID).Delete(&models.WorkPlan{}).Error; err != nil {
			return err
		}
		_, err := planSync.SyncPlanToOrder(tx, &item, true)
		return err
	})
	if err != nil {
		respondWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}
