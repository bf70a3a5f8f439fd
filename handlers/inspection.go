package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"p9e.in/weibao/config"
	"p9e.in/weibao/models"
	"p9e.in/weibao/syncer"
)

func GetAllInspectionOrders(w http.ResponseWriter, r *http.Request) {
	page, size := pagination(r)
	q := config.DB.Model(&models.InspectionOrder{}).Where("is_deleted = ?", false)
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
		q = q.Where("order_no LIKE ? OR project_name LIKE ?", kw, kw)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var items []models.InspectionOrder
	if err := q.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&items).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Total: total, Page: page, Size: size, Items: items})
}

func CreateInspectionOrder(w http.ResponseWriter, r *http.Request) {
	var item models.InspectionOrder
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := prepareOrderCreate(config.DB, &item.OrderCommon); err != nil {
		respondWriteError(w, err)
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		no, err := syncer.NextOrderNo(tx, models.PrefixInspection, item.ProjectID, time.Now())
		if err != nil {
			return err
		}
		item.OrderNo = no
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		_, err = planSync.SyncOrderToPlan(tx, &item, false)
		return err
	})
	if err != nil {
		respondWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func GetInspectionOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var item models.InspectionOrder
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&item).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func UpdateInspectionOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var item models.InspectionOrder
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
	if err := applyOrderUpdate(config.DB, &item.OrderCommon, &prev.OrderCommon); err != nil {
		respondWriteError(w, err)
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		_, err := planSync.SyncOrderToPlan(tx, &item, false)
		return err
	})
	if err != nil {
		respondWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func UpdateInspectionOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var item models.InspectionOrder
	if err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&item).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	var body statusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := applyStatusChange(&item.OrderCommon, body.Status); err != nil {
		respondWriteError(w, err)
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		_, err := planSync.SyncOrderToPlan(tx, &item, false)
		return err
	})
	if err != nil {
		respondWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func DeleteInspectionOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var item models.InspectionOrder
	err := config.DB.Where("id = ? AND is_deleted = ?", id, false).First(&item).Error
	if err != nil {
		// already deleted or never existed: deletion is idempotent
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
		_, err := planSync.SyncOrderToPlan(tx, &item, true)
		return err
	})
	if err != nil {
		respondWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}
