package handlers

import (
	"portal-cms/helper"
	"portal-cms/middleware"
	"portal-cms/models"
	"portal-cms/services"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentService services.ContentService
	http           *helper.HTTPHelper
}

func NewContentHandler(contentService services.ContentService, httpHelper *helper.HTTPHelper) *ContentHandler {
	return &ContentHandler{contentService: contentService, http: httpHelper}
}

func (h *ContentHandler) CreateContent(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	var req models.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.http.SendBadRequest(c, err.Error(), h.http.EmptyJsonMap())
		return
	}
	if !h.http.ValidateRequest(c, req) {
		return
	}

	item, err := h.contentService.Create(c.Request.Context(), req.Input(), actor)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendCreated(c, "Content created", item)
}

func (h *ContentHandler) GetContents(c *gin.Context) {
	var params models.ContentListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.http.SendBadRequest(c, err.Error(), h.http.EmptyJsonMap())
		return
	}
	h.listContents(c, params)
}

// GetPublicContents lists published items only, whatever status is asked for.
func (h *ContentHandler) GetPublicContents(c *gin.Context) {
	var params models.ContentListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.http.SendBadRequest(c, err.Error(), h.http.EmptyJsonMap())
		return
	}
	params.Status = string(models.StatusPublished)
	h.listContents(c, params)
}

func (h *ContentHandler) listContents(c *gin.Context, params models.ContentListParams) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 10
	}

	items, total, err := h.contentService.List(c.Request.Context(), params)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "", gin.H{
		"contents":   items,
		"pagination": h.http.GeneratePaging(c, params.Limit, params.Page, int(total)),
	})
}

func (h *ContentHandler) GetContent(c *gin.Context) {
	id, ok := h.http.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.contentService.Get(c.Request.Context(), id)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "", item)
}

func (h *ContentHandler) GetPublicContent(c *gin.Context) {
	item, err := h.contentService.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "", item)
}

func (h *ContentHandler) UpdateContent(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, ok := h.http.ParseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.http.SendBadRequest(c, err.Error(), h.http.EmptyJsonMap())
		return
	}
	if !h.http.ValidateRequest(c, req) {
		return
	}

	item, err := h.contentService.Update(c.Request.Context(), id, req.Patch(), actor, req.ChangeDescription)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "Content updated", item)
}

func (h *ContentHandler) PublishContent(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, ok := h.http.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.contentService.Publish(c.Request.Context(), id, actor)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "Content published", item)
}

func (h *ContentHandler) ScheduleContent(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, ok := h.http.ParseID(c, "id")
	if !ok {
		return
	}

	var req models.ScheduleContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.http.SendBadRequest(c, err.Error(), h.http.EmptyJsonMap())
		return
	}
	if !h.http.ValidateRequest(c, req) {
		return
	}

	item, err := h.contentService.Schedule(c.Request.Context(), id, *req.ScheduledAt, actor)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "Content scheduled", item)
}

func (h *ContentHandler) CancelSchedule(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, ok := h.http.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.contentService.CancelSchedule(c.Request.Context(), id, actor)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "Schedule cancelled", item)
}

func (h *ContentHandler) ArchiveContent(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, ok := h.http.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.contentService.Archive(c.Request.Context(), id, actor)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "Content archived", item)
}

func (h *ContentHandler) RevertContent(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, ok := h.http.ParseID(c, "id")
	if !ok {
		return
	}

	var req models.RevertContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.http.SendBadRequest(c, err.Error(), h.http.EmptyJsonMap())
		return
	}
	if !h.http.ValidateRequest(c, req) {
		return
	}

	item, err := h.contentService.Revert(c.Request.Context(), id, req.SnapshotID, actor)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "Content reverted", item)
}

func (h *ContentHandler) DeleteContent(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)
	id, ok := h.http.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.contentService.Delete(c.Request.Context(), id, actor); err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "Content deleted", h.http.EmptyJsonMap())
}
