package handler

import (
	"context"
	"net/http"
	"time"

	"okapi-care-network/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const readinessTimeout = 2 * time.Second

type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		log:         log,
	}
}

// Live reports that the process is serving requests.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}

// Ready pings the database and Redis.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{"database": "ok", "redis": "ok"}
	ready := true

	if err := h.pingDB(ctx); err != nil {
		h.log.Warnf("Readiness check failed for database: %+v", err)
		checks["database"] = "unavailable"
		ready = false
	}

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Warnf("Readiness check failed for redis: %+v", err)
		checks["redis"] = "unavailable"
		ready = false
	}

	if !ready {
		response.Error(w, http.StatusServiceUnavailable, "Service not ready", checks)
		return
	}
	response.Success(w, http.StatusOK, "ready", checks)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
