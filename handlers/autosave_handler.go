package handlers

import (
	"portal-cms/helper"
	"portal-cms/middleware"
	"portal-cms/models"
	"portal-cms/services"

	"github.com/gin-gonic/gin"
)

type AutosaveHandler struct {
	autosaveService services.AutosaveService
	http            *helper.HTTPHelper
}

func NewAutosaveHandler(autosaveService services.AutosaveService, httpHelper *helper.HTTPHelper) *AutosaveHandler {
	return &AutosaveHandler{autosaveService: autosaveService, http: httpHelper}
}

// Save answers 200 even when the draft was not committed; the result's
// notice tells the editor why.
func (h *AutosaveHandler) Save(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	var req models.AutosaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.http.SendBadRequest(c, err.Error(), h.http.EmptyJsonMap())
		return
	}
	if !h.http.ValidateRequest(c, req) {
		return
	}

	result := h.autosaveService.Save(c.Request.Context(), req, actor)
	h.http.SendSuccess(c, "", result)
}

func (h *AutosaveHandler) Load(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	draft, err := h.autosaveService.Load(c.Request.Context(), c.Param("key"), actor)
	if err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "", draft)
}

func (h *AutosaveHandler) Clear(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	if err := h.autosaveService.Clear(c.Request.Context(), c.Param("key"), actor); err != nil {
		h.http.SendErrorFromErr(c, err)
		return
	}

	h.http.SendSuccess(c, "Draft cleared", h.http.EmptyJsonMap())
}
