package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"p9e.in/weibao/models"
	"p9e.in/weibao/syncer"
)

var planSync = syncer.NewEngine()

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondWriteError maps a failed write to the right status code:
// duplicate business keys and illegal transitions are caller errors,
// a vanished row is 404, everything else is a 500.
func respondWriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		http.Error(w, "duplicate business identifier", http.StatusConflict)
	case errors.Is(err, models.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "record not found", http.StatusNotFound)
	case errors.Is(err, errUnknownPersonnel), errors.Is(err, errUnknownProject):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, syncer.ErrUnknownPlanType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// pagination reads page/size query params, defaulting to 1/20.
func pagination(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if size < 1 || size > 200 {
		size = 20
	}
	return page, size
}

// listResponse is the shared paged-list envelope.
type listResponse struct {
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
	Items interface{} `json:"items"`
}
