// Package audit records mutating requests after the handler has responded.
// Writes are best-effort: a failed audit insert never fails the request.
package audit

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"onboard/internal/auth"
	"onboard/internal/models"
	"onboard/internal/pagination"
)

type Entry struct {
	Action     string
	Resource   string
	ResourceID *string
	Details    models.JSONB
}

type Service struct {
	db *gorm.DB
	lg *zap.SugaredLogger
	wg sync.WaitGroup
}

func NewService(db *gorm.DB, lg *zap.SugaredLogger) *Service {
	return &Service{db: db, lg: lg}
}

// Record writes one audit row. Tenant and user are both the acting user's id;
// there is no separate tenant concept.
func (s *Service) Record(rc *auth.RequestContext, e Entry) error {
	row := models.AuditLog{
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		Details:    e.Details,
	}
	if rc.User != nil {
		row.TenantID = &rc.User.UserID
		row.UserID = &rc.User.UserID
	}
	if rc.IP != "" {
		row.IP = &rc.IP
	}
	if rc.UserAgent != "" {
		row.UserAgent = &rc.UserAgent
	}
	return s.db.Create(&row).Error
}

type ListFilters struct {
	Action   string
	Resource string
	UserID   string
}

// List returns the caller's audit trail, newest first. Anonymous callers see
// an empty page.
func (s *Service) List(rc *auth.RequestContext, p pagination.Params, f ListFilters) (pagination.Result[models.AuditLog], error) {
	if rc.User == nil {
		return pagination.NewResult[models.AuditLog](nil, 0, p), nil
	}
	q := s.db.Model(&models.AuditLog{}).Where("tenant_id = ?", rc.User.UserID)
	if v := strings.TrimSpace(f.Action); v != "" {
		q = q.Where("action = ?", v)
	}
	if v := strings.TrimSpace(f.Resource); v != "" {
		q = q.Where("resource = ?", v)
	}
	if v := strings.TrimSpace(f.UserID); v != "" {
		q = q.Where("user_id = ?", v)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return pagination.Result[models.AuditLog]{}, err
	}
	var rows []models.AuditLog
	if err := q.Order("created_at desc").Limit(p.Limit).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return pagination.Result[models.AuditLog]{}, err
	}
	return pagination.NewResult(rows, total, p), nil
}

// Flush blocks until every dispatched background write has finished. Called
// on shutdown and by tests.
func (s *Service) Flush() {
	s.wg.Wait()
}

// Middleware wraps mutating routes. After a successful response it infers the
// resource and action and dispatches the write without blocking the caller.
// Authentication routes are never audited.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isMutation(r.Method) || isAuthPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		rc := auth.RequestContextFrom(r.Context())
		if rc == nil {
			next.ServeHTTP(w, r)
			return
		}
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		if sw.code >= 400 {
			return
		}
		entry := Entry{
			Action:   actionFromMethod(r.Method),
			Resource: resourceFromPath(r.URL.Path),
		}
		if id := chi.URLParam(r, "id"); id != "" {
			entry.ResourceID = &id
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				if p := recover(); p != nil {
					s.lg.Debugw("audit write panicked", "panic", p)
				}
			}()
			if err := s.Record(rc, entry); err != nil {
				s.lg.Debugw("audit write failed", "error", err)
			}
		}()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code    int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.code = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth") || strings.HasPrefix(path, "auth/")
}

// resourceFromPath takes the first path segment, except under the
// knowledge-base namespace where sub-resources stay distinguishable.
func resourceFromPath(path string) string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return "unknown"
	}
	if segments[0] == "knowledge-base" && len(segments) > 1 {
		return segments[0] + "/" + segments[1]
	}
	return segments[0]
}

func actionFromMethod(method string) string {
	switch method {
	case http.MethodPost:
		return "CREATE"
	case http.MethodPut, http.MethodPatch:
		return "UPDATE"
	case http.MethodDelete:
		return "DELETE"
	default:
		return method
	}
}
