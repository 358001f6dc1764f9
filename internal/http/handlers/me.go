package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/majorcompass-backend/internal/http/response"
	"github.com/yungbote/majorcompass-backend/internal/platform/ctxutil"
	"github.com/yungbote/majorcompass-backend/internal/services"
)

type MeHandler struct {
	history  services.HistoryService
	identity services.IdentityService
	sessions services.SessionDropper
}

func NewMeHandler(history services.HistoryService, identity services.IdentityService, sessions services.SessionDropper) *MeHandler {
	return &MeHandler{history: history, identity: identity, sessions: sessions}
}

// GET /api/me/export
func (h *MeHandler) Export(c *gin.Context) {
	out, err := h.history.Export(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="majorcompass-export.json"`)
	response.RespondOK(c, out)
}

// DELETE /api/me/data
func (h *MeHandler) DeleteData(c *gin.Context) {
	summary, err := h.history.DeleteData(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, summary)
}

// POST /api/session/signout
func (h *MeHandler) SignOut(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.identity.SignOut(ctx); err != nil {
		respondErr(c, err)
		return
	}
	if h.sessions != nil {
		h.sessions.Drop(ctxutil.OwnerID(ctx))
	}
	c.Status(http.StatusNoContent)
}
