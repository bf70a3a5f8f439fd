package handlers

import (
	"net/http"

	"p9e.in/weibao/config"
	"p9e.in/weibao/syncer"
)

// RunAudit triggers a reconciliation pass. Dry run by default;
// ?fix=true applies repairs. Operator-facing, admin only.
func RunAudit(w http.ResponseWriter, r *http.Request) {
	fix := r.URL.Query().Get("fix") == "true"

	auditor := syncer.NewAuditor(config.DB)
	report, err := auditor.Audit(!fix)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
