package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/partner-booking/internal/middleware"
	"github.com/iliyamo/partner-booking/internal/repository"
	"github.com/iliyamo/partner-booking/internal/utils"
)

// PartnerHandler implements partner onboarding.  Partners are provisioned
// by an external admin tool with a one-time connect code; redeeming the
// code binds the partner's chat target and yields a PARTNER access token
// for the decision endpoints.
type PartnerHandler struct {
	Partners    *repository.PartnerRepo
	JWTSecret   string
	TokenTTLMin int
}

// NewPartnerHandler constructs a PartnerHandler.
func NewPartnerHandler(partners *repository.PartnerRepo, jwtSecret string, tokenTTLMin int) *PartnerHandler {
	if partners == nil {
		panic("nil repository passed to NewPartnerHandler")
	}
	return &PartnerHandler{Partners: partners, JWTSecret: jwtSecret, TokenTTLMin: tokenTTLMin}
}

// Connect handles POST /v1/partners/connect.  The body carries the
// partner id, the plain connect code and the chat id the partner is
// connecting from.  The code is verified against the stored bcrypt hash;
// invalid combinations are reported uniformly so codes cannot be probed.
func (h *PartnerHandler) Connect(c echo.Context) error {
	var body struct {
		PartnerID   uint64 `json:"partner_id"`
		ConnectCode string `json:"connect_code"`
		ChatID      int64  `json:"chat_id"`
	}
	if err := c.Bind(&body); err != nil || body.PartnerID == 0 || body.ConnectCode == "" || body.ChatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "partner_id, connect_code and chat_id are required"})
	}

	ctx := c.Request().Context()
	p, err := h.Partners.GetByID(ctx, body.PartnerID)
	if err != nil {
		if errors.Is(err, repository.ErrPartnerNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid connect code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to connect"})
	}
	if !p.IsActive || !utils.VerifyConnectCode(p.ConnectCodeHash, body.ConnectCode) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid connect code"})
	}

	if p.ChatID != body.ChatID {
		bound, err := h.Partners.BindChat(ctx, p.ID, body.ChatID)
		if err != nil || !bound {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to connect"})
		}
	}

	tok, err := utils.NewAccessToken(h.JWTSecret, p.ID, middleware.RolePartner, h.TokenTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
		"partner": echo.Map{
			"id":           p.ID,
			"display_name": p.DisplayName,
		},
	})
}
