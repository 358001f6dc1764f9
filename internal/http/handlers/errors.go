package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/majorcompass-backend/internal/http/response"
	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
	"github.com/yungbote/majorcompass-backend/internal/platform/apierr"
)

// toAPIError attaches an HTTP status and code to questionnaire errors.
// Errors that already carry an *apierr.Error pass through.
func toAPIError(err error) error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, questionnaire.ErrNoOwner):
		return apierr.New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, questionnaire.ErrStepIncomplete):
		return apierr.New(http.StatusUnprocessableEntity, "step_incomplete", err)
	case errors.Is(err, questionnaire.ErrTransitionInFlight):
		return apierr.New(http.StatusConflict, "transition_in_flight", err)
	case errors.Is(err, questionnaire.ErrInvalidTransition):
		return apierr.New(http.StatusConflict, "invalid_transition", err)
	case errors.Is(err, questionnaire.ErrNotInitialized):
		return apierr.New(http.StatusConflict, "not_initialized", err)
	case errors.Is(err, questionnaire.ErrInvalidCommand):
		return apierr.New(http.StatusBadRequest, "invalid_command", err)
	case errors.Is(err, questionnaire.ErrCompletionNotSaved):
		return apierr.New(http.StatusServiceUnavailable, "completion_not_saved", questionnaire.ErrCompletionNotSaved)
	case errors.Is(err, questionnaire.ErrAttemptNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	}
	return err
}

func respondErr(c *gin.Context, err error) {
	_ = c.Error(err)
	response.RespondAPIError(c, toAPIError(err))
}

func badRequest(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
}
