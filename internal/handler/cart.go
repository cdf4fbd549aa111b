package handler

import (
	"errors"
	"net/http"

	"course-commerce/internal/dto"
	"course-commerce/internal/middleware"
	"course-commerce/internal/model"
	"course-commerce/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.cartService.List(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	item, err := h.cartService.Add(ctx, middleware.UserID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAlreadyInCart):
			return c.JSON(http.StatusConflict, dto.ActionResult{Success: false, Message: err.Error()})
		case errors.Is(err, model.ErrNotFound):
			return c.JSON(http.StatusNotFound, dto.ActionResult{Success: false, Message: err.Error()})
		}
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.cartService.Remove(ctx, middleware.UserID(c), c.Param("itemID"))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return c.JSON(http.StatusNotFound, dto.ActionResult{Success: false, Message: "cart item not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, dto.ActionResult{Success: true})
}

func (h *CartHandler) RemoveSelection(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RemoveSelectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	err := h.cartService.RemoveBySelection(ctx, middleware.UserID(c), &req)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return c.JSON(http.StatusNotFound, dto.ActionResult{Success: false, Message: "no matching cart item"})
		}
		return err
	}
	return c.JSON(http.StatusOK, dto.ActionResult{Success: true})
}

func (h *CartHandler) Quote(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	quote, err := h.cartService.Quote(ctx, middleware.UserID(c), req.OfferCode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quote)
}
