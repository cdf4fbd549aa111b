package server

import (
	"course-commerce/internal/handler"
	authmw "course-commerce/internal/middleware"
	"course-commerce/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	cartHandler     *handler.CartHandler
	checkoutHandler *handler.CheckoutHandler
	jwtSecret       string
}

func NewServer(cartService service.CartService, checkoutService service.CheckoutService, jwtSecret string) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		cartHandler:     handler.NewCartHandler(cartService),
		checkoutHandler: handler.NewCheckoutHandler(checkoutService),
		jwtSecret:       jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- stripe webhooks (signature-authenticated, no user token) --------
	api.POST("/stripe/webhook", s.checkoutHandler.StripeWebhook)

	// -------- user-facing --------
	authed := api.Group("", authmw.Auth(s.jwtSecret))
	authed.GET("/cart", s.cartHandler.GetCart)
	authed.POST("/cart/items", s.cartHandler.AddItem)
	authed.DELETE("/cart/items/:itemID", s.cartHandler.RemoveItem)
	authed.DELETE("/cart/items", s.cartHandler.RemoveSelection)
	authed.POST("/cart/quote", s.cartHandler.Quote)
	authed.POST("/checkout", s.checkoutHandler.BeginCheckout)
	authed.GET("/purchases", s.checkoutHandler.ListPurchases)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
