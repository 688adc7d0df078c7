package handlers

import (
	"context"
	"time"

	"portal-cms/helper"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db   *gorm.DB
	http *helper.HTTPHelper
}

func NewHealthHandler(db *gorm.DB, httpHelper *helper.HTTPHelper) *HealthHandler {
	return &HealthHandler{db: db, http: httpHelper}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		_ = c.Error(err)
		h.http.SendError(c, "Database unreachable", gin.H{"database": "down"}, 503, `storeUnavailable`)
		return
	}

	h.http.SendSuccess(c, "", gin.H{"database": "up"})
}
