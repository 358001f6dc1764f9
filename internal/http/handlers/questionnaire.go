package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/majorcompass-backend/internal/http/response"
	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
	"github.com/yungbote/majorcompass-backend/internal/services"
)

type QuestionnaireHandler struct {
	questionnaire services.QuestionnaireService
}

func NewQuestionnaireHandler(questionnaire services.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{questionnaire: questionnaire}
}

// POST /api/questionnaire/session
// body (optional): { "force_fresh": true }
func (h *QuestionnaireHandler) StartSession(c *gin.Context) {
	var req struct {
		ForceFresh bool `json:"force_fresh"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	snap, err := h.questionnaire.Start(c.Request.Context(), req.ForceFresh)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, snap)
}

// GET /api/questionnaire/session
func (h *QuestionnaireHandler) GetSession(c *gin.Context) {
	snap, err := h.questionnaire.Current(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, snap)
}

// POST /api/questionnaire/session/answers
// body: { "commands": [ { "type": "toggle_interest", "id": "math" }, ... ] }
func (h *QuestionnaireHandler) Answer(c *gin.Context) {
	var req struct {
		Commands []questionnaire.Command `json:"commands"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Commands) == 0 {
		badRequest(c, errors.New("commands must not be empty"))
		return
	}
	snap, err := h.questionnaire.Answer(c.Request.Context(), req.Commands)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, snap)
}

// POST /api/questionnaire/session/next
func (h *QuestionnaireHandler) Next(c *gin.Context) {
	snap, err := h.questionnaire.Next(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, snap)
}

// POST /api/questionnaire/session/back
func (h *QuestionnaireHandler) Back(c *gin.Context) {
	snap, err := h.questionnaire.Back(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, snap)
}

// GET /api/questionnaire/catalog
func (h *QuestionnaireHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"catalog":          h.questionnaire.Catalog(),
		"total_steps":      questionnaire.TotalSteps,
		"career_value_cap": questionnaire.CareerValueCap,
		"skill_min":        questionnaire.SkillMin,
		"skill_max":        questionnaire.SkillMax,
	})
}
