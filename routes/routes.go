package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/weibao/handlers"
	"p9e.in/weibao/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/login", handlers.Login).Methods("POST")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handlers.Profile).Methods("GET")

	registerOrderRoutes(api)
	registerPlanRoutes(api)

	// =====================================================
	// Admin Routes
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/users", handlers.CreateUser).Methods("POST")
	admin.HandleFunc("/audit", handlers.RunAudit).Methods("POST")

	return r
}

func registerOrderRoutes(api *mux.Router) {
	// 定期巡检
	api.HandleFunc("/inspections", handlers.GetAllInspectionOrders).Methods("GET")
	api.HandleFunc("/inspections", handlers.CreateInspectionOrder).Methods("POST")
	api.HandleFunc("/inspections/{id}", handlers.GetInspectionOrder).Methods("GET")
	api.HandleFunc("/inspections/{id}", handlers.UpdateInspectionOrder).Methods("PUT")
	api.HandleFunc("/inspections/{id}/status", handlers.UpdateInspectionOrderStatus).Methods("PUT")
	api.HandleFunc("/inspections/{id}", handlers.DeleteInspectionOrder).Methods("DELETE")

	// 临时维修
	api.HandleFunc("/repairs", handlers.GetAllRepairOrders).Methods("GET")
	api.HandleFunc("/repairs", handlers.CreateRepairOrder).Methods("POST")
	api.HandleFunc("/repairs/{id}", handlers.GetRepairOrder).Methods("GET")
	api.HandleFunc("/repairs/{id}", handlers.UpdateRepairOrder).Methods("PUT")
	api.HandleFunc("/repairs/{id}/status", handlers.UpdateRepairOrderStatus).Methods("PUT")
	api.HandleFunc("/repairs/{id}", handlers.DeleteRepairOrder).Methods("DELETE")

	// 零星用工
	api.HandleFunc("/spotworks", handlers.GetAllSpotWorkOrders).Methods("GET")
	api.HandleFunc("/spotworks", handlers.CreateSpotWorkOrder).Methods("POST")
	api.HandleFunc("/spotworks/{id}", handlers.GetSpotWorkOrder).Methods("GET")
	api.HandleFunc("/spotworks/{id}", handlers.UpdateSpotWorkOrder).Methods("PUT")
	api.HandleFunc("/spotworks/{id}/status", handlers.UpdateSpotWorkOrderStatus).Methods("PUT")
	api.HandleFunc("/spotworks/{id}", handlers.DeleteSpotWorkOrder).Methods("DELETE")
}

func registerPlanRoutes(api *mux.Router) {
	// 维保计划
	api.HandleFunc("/maintenance-plans", handlers.GetAllMaintenancePlans).Methods("GET")
	api.HandleFunc("/maintenance-plans", handlers.CreateMaintenancePlan).Methods("POST")
	api.HandleFunc("/maintenance-plans/{id}", handlers.GetMaintenancePlan).Methods("GET")
	api.HandleFunc("/maintenance-plans/{id}", handlers.UpdateMaintenancePlan).Methods("PUT")
	api.HandleFunc("/maintenance-plans/{id}", handlers.DeleteMaintenancePlan).Methods("DELETE")

	// 统一工作计划
	api.HandleFunc("/workplans", handlers.GetAllWorkPlans).Methods("GET")
	api.HandleFunc("/workplans", handlers.CreateWorkPlan).Methods("POST")
	api.HandleFunc("/workplans/export", handlers.ExportWorkPlans).Methods("GET")
	api.HandleFunc("/workplans/{planId}", handlers.GetWorkPlan).Methods("GET")
	api.HandleFunc("/workplans/{planId}", handlers.UpdateWorkPlan).Methods("PUT")
	api.HandleFunc("/workplans/{planId}", handlers.DeleteWorkPlan).Methods("DELETE")
}
