package handlers

import (
	"net/http"

	"onboard/internal/audit"
	"onboard/internal/pagination"
	"onboard/internal/respond"
)

func ListAuditLogs(svc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filters := audit.ListFilters{
			Action:   q.Get("action"),
			Resource: q.Get("resource"),
			UserID:   q.Get("userId"),
		}
		out, err := svc.List(reqCtx(r), pagination.Parse(q), filters)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, out)
	}
}
