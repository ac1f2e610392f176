package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"onboard/internal/audit"
	"onboard/internal/auth"
	"onboard/internal/config"
	"onboard/internal/httpserver/handlers"
	"onboard/internal/respond"
	"onboard/internal/services"
	"onboard/internal/storage"
)

// NewRouter wires the guard chain around every business route: identity,
// then declared permissions, then rate limiting, with the audit wrapper
// observing mutations after the handler responds.
func NewRouter(cfg *config.Config, db *gorm.DB, lg *zap.SugaredLogger, store *storage.Store, auditSvc *audit.Service) http.Handler {
	users := services.NewUsers(db, lg)
	authSvc := services.NewAuth(db, lg, cfg, users)
	bots := services.NewBots(db, lg)
	sources := services.NewSources(db, lg, store, bots)
	collections := services.NewCollections(db, lg, sources)

	rl := auth.NewRateLimiter(cfg.ThrottleLimit, cfg.ThrottleWindow)

	// guard declares the permissions a route requires; the rate limiter runs
	// last so throttling never counts requests a cheaper check would reject.
	guard := func(perms ...string) []func(http.Handler) http.Handler {
		return []func(http.Handler) http.Handler{auth.Require(db, perms...), rl.Handler}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Group(func(pub chi.Router) {
		pub.Use(auth.Capture, rl.Handler)
		pub.Post("/auth/register", handlers.Register(authSvc))
		pub.Post("/auth/login", handlers.Login(authSvc))
		pub.Post("/auth/forgot-password", handlers.ForgotPassword(authSvc))
		pub.Post("/auth/reset-password", handlers.ResetPassword(authSvc))
		pub.Get("/", func(w http.ResponseWriter, r *http.Request) {
			respond.JSON(w, r, http.StatusOK, "Hello World!")
		})
		pub.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTAuth(cfg.SessionSecret), auth.Capture, auditSvc.Middleware)

		pr.Route("/users", func(ur chi.Router) {
			ur.With(guard()...).Post("/", handlers.CreateUser(users))
			ur.With(guard()...).Post("/invite", handlers.InviteUser(users))
			ur.With(guard()...).Get("/", handlers.ListUsers(users))
			ur.With(guard()...).Get("/{id}", handlers.GetUser(users))
			ur.With(guard()...).Patch("/{id}", handlers.UpdateUser(users))
			ur.With(guard()...).Delete("/{id}", handlers.DeleteUser(users))
		})

		pr.Route("/bots", func(br chi.Router) {
			br.With(guard(auth.PermCreateBot)...).Post("/", handlers.CreateBot(bots))
			br.With(guard(auth.PermReadBot)...).Get("/", handlers.ListBots(bots))
			br.With(guard(auth.PermReadBot)...).Get("/{id}", handlers.GetBot(bots))
			br.With(guard(auth.PermUpdateBot)...).Patch("/{id}/archive", handlers.ArchiveBot(bots))
			br.With(guard(auth.PermUpdateBot)...).Patch("/{id}/disable", handlers.DisableBot(bots))
			br.With(guard(auth.PermUpdateBot)...).Patch("/{id}", handlers.UpdateBot(bots))
			br.With(guard(auth.PermDeleteBot)...).Delete("/{id}", handlers.DeleteBot(bots))
		})

		pr.Route("/knowledge-base/sources", func(sr chi.Router) {
			sr.With(guard(auth.PermCreateKBSource)...).Post("/", handlers.CreateSource(sources))
			sr.With(guard(auth.PermCreateKBSource)...).Post("/upload", handlers.UploadSource(sources))
			sr.With(guard(auth.PermReadKBSource)...).Get("/", handlers.ListSources(sources))
			sr.With(guard(auth.PermReadKBSource)...).Get("/{id}", handlers.GetSource(sources))
			sr.With(guard(auth.PermReadKBSource)...).Get("/{id}/download", handlers.DownloadSource(sources))
			sr.With(guard(auth.PermUpdateKBSource)...).Patch("/{id}", handlers.UpdateSource(sources))
			sr.With(guard(auth.PermUpdateKBSource)...).Post("/{id}/refresh", handlers.RefreshSource(sources))
			sr.With(guard(auth.PermUpdateKBSource)...).Post("/{id}/bots/{botId}", handlers.LinkSourceBot(sources))
			sr.With(guard(auth.PermUpdateKBSource)...).Delete("/{id}/bots/{botId}", handlers.UnlinkSourceBot(sources))
			sr.With(guard(auth.PermDeleteKBSource)...).Delete("/{id}", handlers.DeleteSource(sources))
		})

		pr.Route("/collections", func(cr chi.Router) {
			cr.With(guard(auth.PermCreateCollection)...).Post("/", handlers.CreateCollection(collections))
			cr.With(guard(auth.PermReadCollection)...).Get("/", handlers.ListCollections(collections))
			cr.With(guard(auth.PermReadCollection)...).Get("/{id}", handlers.GetCollection(collections))
			cr.With(guard(auth.PermUpdateCollection)...).Patch("/{id}", handlers.UpdateCollection(collections))
			cr.With(guard(auth.PermUpdateCollection)...).Post("/{id}/sources/{sourceId}", handlers.AddCollectionSource(collections))
			cr.With(guard(auth.PermUpdateCollection)...).Delete("/{id}/sources/{sourceId}", handlers.RemoveCollectionSource(collections))
			cr.With(guard(auth.PermDeleteCollection)...).Delete("/{id}", handlers.DeleteCollection(collections))
		})

		pr.With(guard(auth.PermReadAuditLog)...).Get("/audit-logs", handlers.ListAuditLogs(auditSvc))
	})

	return r
}
