package http

import (
	"net/http"

	"okapi-care-network/internal/delivery/http/handler"
	"okapi-care-network/internal/delivery/http/middleware"
	"okapi-care-network/internal/domain/feature"
	"okapi-care-network/internal/domain/rbac"

	"github.com/gorilla/mux"
)

// Instrumenter wraps every request for metrics collection.
type Instrumenter interface {
	Instrument(next http.Handler) http.Handler
	Handler() http.Handler
}

type Router struct {
	router               *mux.Router
	authHandler          *handler.AuthHandler
	accessHandler        *handler.AccessHandler
	staffHandler         *handler.StaffHandler
	auditLogHandler      *handler.AuditLogHandler
	healthHandler        *handler.HealthHandler
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	facilityMiddleware   *middleware.FacilityScopeMiddleware
	featureMiddleware    *middleware.FeatureMiddleware
	loginLimiter         *middleware.RateLimiter
	corsMiddleware       *middleware.CORSMiddleware
	clientIPMiddleware   *middleware.ClientIPMiddleware
	metrics              Instrumenter
}

func NewRouter(
	authHandler *handler.AuthHandler,
	accessHandler *handler.AccessHandler,
	staffHandler *handler.StaffHandler,
	auditLogHandler *handler.AuditLogHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	permissionMiddleware *middleware.PermissionMiddleware,
	facilityMiddleware *middleware.FacilityScopeMiddleware,
	featureMiddleware *middleware.FeatureMiddleware,
	loginLimiter *middleware.RateLimiter,
	corsMiddleware *middleware.CORSMiddleware,
	clientIPMiddleware *middleware.ClientIPMiddleware,
	metrics Instrumenter,
) *Router {
	return &Router{
		router:               mux.NewRouter(),
		authHandler:          authHandler,
		accessHandler:        accessHandler,
		staffHandler:         staffHandler,
		auditLogHandler:      auditLogHandler,
		healthHandler:        healthHandler,
		authMiddleware:       authMiddleware,
		permissionMiddleware: permissionMiddleware,
		facilityMiddleware:   facilityMiddleware,
		featureMiddleware:    featureMiddleware,
		loginLimiter:         loginLimiter,
		corsMiddleware:       corsMiddleware,
		clientIPMiddleware:   clientIPMiddleware,
		metrics:              metrics,
	}
}

func (r *Router) Setup() *mux.Router {
	// Health and metrics
	r.router.HandleFunc("/health", r.healthHandler.Live).Methods(http.MethodGet)
	r.router.HandleFunc("/health/live", r.healthHandler.Live).Methods(http.MethodGet)
	r.router.HandleFunc("/health/ready", r.healthHandler.Ready).Methods(http.MethodGet)
	r.router.Handle("/metrics", r.metrics.Handler()).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Access model (public, read-only)
	access := api.PathPrefix("/access").Subrouter()
	access.HandleFunc("/permissions", r.accessHandler.ListPermissions).Methods(http.MethodGet)
	access.HandleFunc("/roles", r.accessHandler.ListRoles).Methods(http.MethodGet)
	access.HandleFunc("/roles/{role}/permissions", r.accessHandler.GetRolePermissions).Methods(http.MethodGet)
	access.HandleFunc("/check", r.accessHandler.CheckPermission).Methods(http.MethodPost)
	api.HandleFunc("/features", r.accessHandler.ListFeatures).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Handle("/login", r.loginLimiter.Limit(http.HandlerFunc(r.authHandler.Login))).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	authProtected.HandleFunc("/me/permissions", r.accessHandler.GetMyPermissions).Methods(http.MethodGet)

	// Facility routes (protected - scoped to the caller's facility)
	facility := api.PathPrefix("/facilities/{facilityId}").Subrouter()
	facility.Use(r.authMiddleware.Authenticate)
	facility.Use(r.facilityMiddleware.Enforce)

	staffGate := r.featureMiddleware.RequireFeature(feature.StaffList)
	facility.Handle("/staff", staffGate(r.permissionMiddleware.RequirePermission(rbac.StaffRead)(
		http.HandlerFunc(r.staffHandler.ListStaff)))).Methods(http.MethodGet)
	facility.Handle("/staff", staffGate(r.permissionMiddleware.RequirePermission(rbac.StaffManage)(
		http.HandlerFunc(r.staffHandler.CreateStaff)))).Methods(http.MethodPost)

	// Admin routes (protected - admin:all)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(r.permissionMiddleware.RequirePermission(rbac.AdminAll))
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Preflight requests must match a route for the middleware below to run.
	r.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// The client address must be resolved before rate limiting and auditing.
	r.router.Use(r.clientIPMiddleware.Resolve)
	r.router.Use(r.metrics.Instrument)
	r.router.Use(middleware.SecurityHeaders)
	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}
