package handlers

import (
	"portal-cms/helper"
	"portal-cms/middleware"
	"portal-cms/services"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	historyService services.HistoryService
	http           *helper.HTTPHelper
}

func NewHistoryHandler(historyService services.HistoryService, httpHelper *helper.HTTPHelper) *HistoryHandler {
	return &HistoryHandler{historyService: historyService, http: httpHelper}
}

func (h *HistoryHandler) GetVersions(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, ok := h.http.ParseID(c, "id")
	if !ok {
		return
	}

	versions, err := h.historyService.ListVersions(c.Request.Context(), id, actor)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "", versions)
}

func (h *HistoryHandler) GetVersion(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, ok := h.http.ParseID(c, "id")
	if !ok {
		return
	}
	versionID, ok := h.http.ParseID(c, "version_id")
	if !ok {
		return
	}

	version, err := h.historyService.GetVersion(c.Request.Context(), id, versionID, actor)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "", version)
}
