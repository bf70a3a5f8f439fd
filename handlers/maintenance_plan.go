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

func GetAllMaintenancePlans(w http.ResponseWriter, r *http.Request) {
	page, size := pagination(r)
	q := config.DB.Model(&models.MaintenancePlan{}).Where("is_deleted = ?", false)
	if v := r.URL.Query().Get("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := r.URL.Query().Get("project_id"); v != "" {
		q = q.Where("project_id = ?", v)
	}
	if v := r.URL.Query().Get("keyword"); v != "" {
		kw := "%" + v + "%"
		q = q.Where("plan_id LIKE ? OR plan_name LIKE ? OR equipment_name LIKE ?", kw, kw, kw)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var items []models.MaintenancePlan
	if err := q.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&items).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Total: total, Page: page, Size: size, Items: items})
}

func CreateMaintenancePlan(w http.ResponseWriter, r *http.Request) {
	var item models.MaintenancePlan
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if item.PlanName == "" {
		http.Error(w, "plan_name is required", http.StatusBadRequest)
		return
	}
	if item.ProjectID != "" {
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
		planID, err := syncer.NextMaintenancePlanID(tx, time.Now())
		if err != nil {
			return err
		}
		item.PlanID = planID
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		_, err = planSync.SyncMaintenancePlanToPlan(tx, &item, false)
		return err
	})
	if err != nil {
		respondWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func GetMaintenancePlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var item models.MaintenancePlan
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&item).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func UpdateMaintenancePlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var item models.MaintenancePlan
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&item).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	// Partial update: the body is decoded over the stored row, so only
	// the fields it carries change. Identity, project and lifecycle
	// fields stay as stored.
	prev := item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	item.ID = prev.ID
	item.PlanID = prev.PlanID
	item.ProjectID = prev.ProjectID
	item.ProjectName = prev.ProjectName
	item.ClientName = prev.ClientName
	item.ActualCompletionDate = prev.ActualCompletionDate
	item.IsDeleted = prev.IsDeleted
	item.DeletedTime = prev.DeletedTime
	item.CreatedAt = prev.CreatedAt

	if item.PlanName == "" {
		http.Error(w, "plan_name is required", http.StatusBadRequest)
		return
	}
	if item.Personnel != prev.Personnel {
		if err := validatePersonnel(config.DB, item.Personnel); err != nil {
			respondWriteError(w, err)
			return
		}
	}
	if item.Status != prev.Status {
		if err := models.CheckTransition(prev.Status, item.Status); err != nil {
			respondWriteError(w, err)
			return
		}
		if models.CompletionStatus(item.Status) {
			item.MarkCompleted(time.Now())
		}
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		_, err := planSync.SyncMaintenancePlanToPlan(tx, &item, false)
		return err
	})
	if err != nil {
		respondWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func DeleteMaintenancePlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var item models.MaintenancePlan
	err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&item).Error
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		item.SoftDelete(time.Now())
		if err := tx.Model(&item).Updates(map[string]interface{}{
			"is_deleted": true, "deleted_time": item.DeletedTime,
		}).Error; err != nil {
			return err
		}
		_, err := planSync.SyncMaintenancePlanToPlan(tx, &item, true)
		return err
	})
	if err != nil {
		respondWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}
