package handlers

import (
	"context"

	"scango/internal/apperrors"
	"scango/internal/middleware"
	"scango/internal/models"
	"scango/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler serves the customer's own cart.
type CartHandler struct {
	carts  *services.CartService
	watch  *services.WatchService
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *services.CartService, watch *services.WatchService, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, watch: watch, logger: logger}
}

// RegisterRoutes registers the customer cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Post("/", guards.customer(h.HandleStartShopping)...)
	cartRoutes.Get("/", guards.customer(h.HandleGetCart)...)
	cartRoutes.Get("/stream", guards.customer(h.HandleStreamCart)...)
	cartRoutes.Post("/items", guards.customer(h.HandleAddItem)...)
	cartRoutes.Patch("/items/:productId", guards.customer(h.HandleChangeQuantity)...)
	cartRoutes.Delete("/items/:productId", guards.customer(h.HandleRemoveItem)...)
	cartRoutes.Post("/checkout", guards.customer(h.HandleCheckout)...)
	cartRoutes.Post("/checkout/cancel", guards.customer(h.HandleCancelCheckout)...)
}

// HandleStartShopping binds a cart to the session.
func (h *CartHandler) HandleStartShopping(c *fiber.Ctx) error {
	cart, err := h.carts.StartShopping(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, h.logger, "Could not start shopping", err)
	}
	return c.JSON(cart)
}

// HandleGetCart returns the session's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.carts.CurrentCart(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve cart", err)
	}
	return c.JSON(cart)
}

// HandleStreamCart streams the session's cart as it changes.
func (h *CartHandler) HandleStreamCart(c *fiber.Ctx) error {
	cart, err := h.carts.CurrentCart(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve cart", err)
	}

	q := newEventQueue()
	sub, err := h.watch.WatchCart(context.Background(), cart.ID, func(cart *models.Cart, err error) {
		q.snapshot(cart, err)
	})
	if err != nil {
		return respondError(c, h.logger, "Could not watch cart", err)
	}
	return serveStream(c, h.logger, q, sub)
}

// AddItemRequest adds one unit by product ID or by scanned label.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	ScanCode  string `json:"scan_code"`
}

// HandleAddItem adds one unit of a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	sess := middleware.CurrentSession(c)
	var (
		cart *models.Cart
		err  error
	)
	switch {
	case req.ScanCode != "":
		cart, err = h.carts.ScanProduct(c.UserContext(), sess, req.ScanCode)
	case req.ProductID != "":
		cart, err = h.carts.AddProduct(c.UserContext(), sess, req.ProductID)
	default:
		err = apperrors.Invalid("product_id", "product_id or scan_code is required")
	}
	if err != nil {
		return respondError(c, h.logger, "Could not add item", err)
	}
	return c.JSON(cart)
}

// HandleChangeQuantity applies a +/- delta to a cart line.
func (h *CartHandler) HandleChangeQuantity(c *fiber.Ctx) error {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	cart, err := h.carts.ChangeQuantity(c.UserContext(), middleware.CurrentSession(c), c.Params("productId"), req.Delta)
	if err != nil {
		return respondError(c, h.logger, "Could not change quantity", err)
	}
	return c.JSON(cart)
}

// HandleRemoveItem removes a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.carts.RemoveItem(c.UserContext(), middleware.CurrentSession(c), c.Params("productId"))
	if err != nil {
		return respondError(c, h.logger, "Could not remove item", err)
	}
	return c.JSON(cart)
}

// HandleCheckout moves the cart to pending. The response carries the cart ID
// the customer shows to the cashier.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	res, err := h.carts.RequestCheckout(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, h.logger, "Could not request checkout", err)
	}
	return c.JSON(fiber.Map{
		"message":       "Show this code at the checkout",
		"checkout_code": res.Cart.ID,
		"cart":          res.Cart,
		"order":         res.Order,
	})
}

// HandleCancelCheckout takes a pending cart back to shopping.
func (h *CartHandler) HandleCancelCheckout(c *fiber.Ctx) error {
	cart, err := h.carts.CancelCheckout(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, h.logger, "Could not cancel checkout", err)
	}
	return c.JSON(cart)
}
