package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"p9e.in/weibao/config"
	"p9e.in/weibao/models"
)

func setupTest(t *testing.T) *mux.Router {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Project{},
		&models.InspectionOrder{}, &models.RepairOrder{}, &models.SpotWorkOrder{},
		&models.MaintenancePlan{}, &models.WorkPlan{}, &models.OrderSequence{},
	))

	require.NoError(t, db.Create(&models.Project{
		Code: "P001", Name: "一号产业园维保项目", ClientName: "华东物业集团",
	}).Error)
	require.NoError(t, db.Create(&models.User{
		Name: "张伟", Phone: "13900000001", PasswordHash: "x", Role: "维修工", IsActive: true,
	}).Error)

	config.DB = db

	r := mux.NewRouter()
	r.HandleFunc("/inspections", CreateInspectionOrder).Methods("POST")
	r.HandleFunc("/inspections/{id}", UpdateInspectionOrder).Methods("PUT")
	r.HandleFunc("/inspections/{id}/status", UpdateInspectionOrderStatus).Methods("PUT")
	r.HandleFunc("/inspections/{id}", DeleteInspectionOrder).Methods("DELETE")
	r.HandleFunc("/workplans", CreateWorkPlan).Methods("POST")
	r.HandleFunc("/workplans/{planId}", DeleteWorkPlan).Methods("DELETE")
	r.HandleFunc("/admin/audit", RunAudit).Methods("POST")
	return r
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestInspectionLifecycleKeepsMirrorInSync(t *testing.T) {
	r := setupTest(t)

	// create
	w := doJSON(t, r, "POST", "/inspections", map[string]interface{}{
		"project_id":         "P001",
		"assigned_personnel": "张伟",
		"plan_start_date":    "2026-01-01",
		"plan_end_date":      "2026-01-07",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.InspectionOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "XJ-P001-"+created.CreatedAt.Format("20060102")+"-01", created.OrderNo)
	assert.Equal(t, models.StatusNotStarted, created.Status)
	assert.Equal(t, "一号产业园维保项目", created.ProjectName)

	var plan models.WorkPlan
	require.NoError(t, config.DB.Where("plan_id = ?", created.OrderNo).First(&plan).Error)
	assert.Equal(t, models.PlanTypeInspection, plan.PlanType)
	assert.Equal(t, models.StatusNotStarted, plan.Status)

	// walk the status machine to done
	for _, status := range []string{models.StatusPending, models.StatusConfirmed, models.StatusDone} {
		w = doJSON(t, r, "PUT", fmt.Sprintf("/inspections/%s/status", created.ID), map[string]string{"status": status})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	var done models.InspectionOrder
	require.NoError(t, config.DB.Where("id = ?", created.ID).First(&done).Error)
	assert.Equal(t, models.StatusDone, done.Status)
	require.NotNil(t, done.ActualCompletionDate)

	require.NoError(t, config.DB.Where("plan_id = ?", created.OrderNo).First(&plan).Error)
	assert.Equal(t, models.StatusDone, plan.Status)

	// delete propagates to the mirror
	w = doJSON(t, r, "DELETE", fmt.Sprintf("/inspections/%s", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, config.DB.Model(&models.WorkPlan{}).Where("plan_id = ?", created.OrderNo).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// deleting again stays a no-op
	w = doJSON(t, r, "DELETE", fmt.Sprintf("/inspections/%s", created.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateRejectsUnknownPersonnel(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, "POST", "/inspections", map[string]interface{}{
		"project_id":         "P001",
		"assigned_personnel": "不存在的人",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRejectsUnknownProject(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, "POST", "/inspections", map[string]interface{}{
		"project_id": "P999",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusEndpointRejectsIllegalTransition(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, "POST", "/inspections", map[string]interface{}{"project_id": "P001"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.InspectionOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, "PUT", fmt.Sprintf("/inspections/%s/status", created.ID), map[string]string{"status": models.StatusDone})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "PUT", fmt.Sprintf("/inspections/%s/status", created.ID), map[string]string{"status": "已审批"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSameDayCreatesGetDistinctOrderNos(t *testing.T) {
	r := setupTest(t)

	nos := map[string]bool{}
	for i := 0; i < 2; i++ {
		w := doJSON(t, r, "POST", "/inspections", map[string]interface{}{"project_id": "P001"})
		require.Equal(t, http.StatusCreated, w.Code)
		var created models.InspectionOrder
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		require.False(t, nos[created.OrderNo], "identifier %s issued twice", created.OrderNo)
		nos[created.OrderNo] = true
	}
}

func TestWorkPlanFirstCreationMaterializesOrder(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, "POST", "/workplans", map[string]interface{}{
		"plan_type":          models.PlanTypeRepair,
		"project_id":         "P001",
		"assigned_personnel": "张伟",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var plan models.WorkPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Equal(t, "一号产业园维保项目", plan.ProjectName)

	var order models.RepairOrder
	require.NoError(t, config.DB.Where("order_no = ? AND is_deleted = ?", plan.PlanID, false).First(&order).Error)
	assert.Empty(t, order.FaultDescription)

	// deleting the plan soft-deletes the materialized order
	w = doJSON(t, r, "DELETE", "/workplans/"+plan.PlanID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var gone models.RepairOrder
	require.NoError(t, config.DB.Where("order_no = ?", plan.PlanID).First(&gone).Error)
	assert.True(t, gone.IsDeleted)
}

func TestAuditEndpointReportsClean(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, "POST", "/inspections", map[string]interface{}{"project_id": "P001"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/admin/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		DryRun      bool `json:"dry_run"`
		IssuesFound int  `json:"issues_found"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(t, report.DryRun)
	assert.Equal(t, 0, report.IssuesFound)
}

func TestUpdateLeavesOmittedFieldsAlone(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, "POST", "/inspections", map[string]interface{}{
		"project_id":         "P001",
		"assigned_personnel": "张伟",
		"remarks":            "雨季前例行检查",
		"inspection_content": "配电房巡检",
		"total_count":        4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.InspectionOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// a body carrying one field changes that field only
	w = doJSON(t, r, "PUT", fmt.Sprintf("/inspections/%s", created.ID), map[string]interface{}{
		"filled_count": 3,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.InspectionOrder
	require.NoError(t, config.DB.Where("id = ?", created.ID).First(&updated).Error)
	assert.Equal(t, 3, updated.FilledCount)
	assert.Equal(t, "雨季前例行检查", updated.Remarks)
	assert.Equal(t, "配电房巡检", updated.InspectionContent)
	assert.Equal(t, "张伟", updated.Personnel)
	assert.Equal(t, 4, updated.TotalCount)
	assert.Equal(t, created.OrderNo, updated.OrderNo)

	var plan models.WorkPlan
	require.NoError(t, config.DB.Where("plan_id = ?", created.OrderNo).First(&plan).Error)
	assert.Equal(t, 3, plan.FilledCount)
}

func TestUpdateStatusFieldChecksTransition(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, "POST", "/inspections", map[string]interface{}{"project_id": "P001"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.InspectionOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, "PUT", fmt.Sprintf("/inspections/%s", created.ID), map[string]interface{}{
		"status": models.StatusDone,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
