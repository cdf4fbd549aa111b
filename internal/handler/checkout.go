package handler

import (
	"errors"
	"io"
	"net/http"

	"course-commerce/internal/dto"
	"course-commerce/internal/middleware"
	"course-commerce/internal/model"
	"course-commerce/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) BeginCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.checkoutService.BeginCheckout(ctx, middleware.UserID(c), req.OfferCode)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmptyCart):
			return c.JSON(http.StatusBadRequest, dto.CheckoutResponse{
				ActionResult: dto.ActionResult{Success: false, Message: "your cart is empty"},
			})
		case errors.Is(err, model.ErrNotFound):
			return c.JSON(http.StatusConflict, dto.CheckoutResponse{
				ActionResult: dto.ActionResult{Success: false, Message: err.Error()},
			})
		case errors.Is(err, model.ErrInvalidOfferCode):
			return c.JSON(http.StatusBadRequest, dto.CheckoutResponse{
				ActionResult: dto.ActionResult{Success: false, Message: err.Error()},
			})
		case errors.Is(err, model.ErrPaymentProvider):
			return c.JSON(http.StatusBadGateway, dto.CheckoutResponse{
				ActionResult: dto.ActionResult{Success: false, Message: "payment provider is unavailable, try again"},
			})
		}
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// StripeWebhook is the one boundary where failure surfaces as a non-2xx so
// the provider retries. Business failures after signature verification are
// logged inside the service and acknowledged to stop infinite retries.
func (h *CheckoutHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.checkoutService.HandleWebhook(ctx, signature, body); err != nil {
		if errors.Is(err, model.ErrInvalidSignature) {
			return c.NoContent(http.StatusBadRequest)
		}
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusOK)
}

func (h *CheckoutHandler) ListPurchases(c echo.Context) error {
	ctx := c.Request().Context()

	purchases, err := h.checkoutService.ListPurchases(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, purchases)
}
