package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/partner-booking/internal/repository"
	"github.com/iliyamo/partner-booking/internal/service"
)

// DecisionHandler processes partner accept/reject actions.  The chat
// frontend translates inline-button callbacks ("bk:ok:<id>" /
// "bk:no:<id>") into calls to this endpoint using the partner's token.
type DecisionHandler struct {
	Decisions *service.DecisionService
}

// NewDecisionHandler constructs a DecisionHandler.
func NewDecisionHandler(decisions *service.DecisionService) *DecisionHandler {
	if decisions == nil {
		panic("nil service passed to NewDecisionHandler")
	}
	return &DecisionHandler{Decisions: decisions}
}

// SubmitDecision handles POST /v1/bookings/:id/decision.  The body carries
// {"decision": "accept"|"reject"}.  Conflict outcomes of legitimate races
// are reported as 409 with a specific message; the caller must not assume
// whether the partner or the sweeper won a lost race.
func (h *DecisionHandler) SubmitDecision(c echo.Context) error {
	actor, err := partnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Decision string `json:"decision"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	dec := service.Decision(body.Decision)
	if _, ok := dec.Status(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "decision must be accept or reject"})
	}

	b, err := h.Decisions.Resolve(c.Request().Context(), id, actor, dec)
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrAlreadyDecided):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already decided"})
	case errors.Is(err, service.ErrAlreadyExpired):
		return c.JSON(http.StatusConflict, echo.Map{"error": "offer expired"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to apply decision"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": bookingJSON(b)})
}
