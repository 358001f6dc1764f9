package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/majorcompass-backend/internal/http/response"
	"github.com/yungbote/majorcompass-backend/internal/services"
)

type HistoryHandler struct {
	history services.HistoryService
}

func NewHistoryHandler(history services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// GET /api/history?limit=&offset=
func (h *HistoryHandler) List(c *gin.Context) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		badRequest(c, err)
		return
	}
	offset, err := intQuery(c, "offset")
	if err != nil {
		badRequest(c, err)
		return
	}
	page, err := h.history.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/history/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	entry, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, entry)
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
