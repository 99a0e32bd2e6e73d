package handlers

import (
	"context"

	"scango/internal/apperrors"
	"scango/internal/models"
	"scango/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CheckoutHandler serves the cashier screens.
type CheckoutHandler struct {
	checkout *services.CheckoutService
	watch    *services.WatchService
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout *services.CheckoutService, watch *services.WatchService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, watch: watch, logger: logger}
}

// RegisterRoutes registers the admin cart and checkout routes.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	cartRoutes := router.Group("/admin/carts")
	cartRoutes.Get("/", guards.admin(h.HandleListCarts)...)
	cartRoutes.Get("/stream", guards.admin(h.HandleStreamCarts)...)
	cartRoutes.Get("/:id", guards.admin(h.HandleGetCart)...)
	cartRoutes.Put("/:id/items", guards.admin(h.HandleEditCart)...)

	checkoutRoutes := router.Group("/admin/checkout")
	checkoutRoutes.Post("/scan", guards.admin(h.HandleScan)...)
	checkoutRoutes.Post("/:id/verify-age", guards.admin(h.HandleVerifyAge)...)
	checkoutRoutes.Post("/:id/cancel", guards.admin(h.HandleCancel)...)
}

// HandleListCarts lists carts, optionally filtered by ?status=.
func (h *CheckoutHandler) HandleListCarts(c *fiber.Ctx) error {
	carts, err := h.checkout.ListCarts(c.UserContext(), c.Query("status"))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve carts", err)
	}
	return c.JSON(carts)
}

// HandleStreamCarts streams the whole cart collection as it changes.
func (h *CheckoutHandler) HandleStreamCarts(c *fiber.Ctx) error {
	q := newEventQueue()
	sub, err := h.watch.WatchCarts(context.Background(), func(carts []models.Cart, err error) {
		q.snapshot(carts, err)
	})
	if err != nil {
		return respondError(c, h.logger, "Could not watch carts", err)
	}
	return serveStream(c, h.logger, q, sub)
}

// HandleGetCart retrieves a single cart.
func (h *CheckoutHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.checkout.GetCart(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Cart not found", err)
	}
	return c.JSON(cart)
}

// EditCartRequest carries the desired quantity of every line to change.
type EditCartRequest struct {
	Items []services.EditLine `json:"items"`
}

// HandleEditCart saves the cashier's order edits.
func (h *CheckoutHandler) HandleEditCart(c *fiber.Ctx) error {
	var req EditCartRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	cart, err := h.checkout.SaveEdit(c.UserContext(), c.Params("id"), req.Items)
	if err != nil {
		return respondError(c, h.logger, "Could not save order changes", err)
	}
	return c.JSON(cart)
}

// HandleScan resolves the code shown by the customer. Carts without age
// restricted items are completed immediately.
func (h *CheckoutHandler) HandleScan(c *fiber.Ctx) error {
	var req struct {
		CartID string `json:"cart_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if req.CartID == "" {
		return respondError(c, h.logger, "Invalid checkout code", apperrors.Invalid("cart_id", "is required"))
	}
	result, err := h.checkout.Scan(c.UserContext(), req.CartID)
	if err != nil {
		return respondError(c, h.logger, "Invalid checkout code", err)
	}
	return c.JSON(result)
}

// HandleVerifyAge completes a cart once the customer's age has been checked.
func (h *CheckoutHandler) HandleVerifyAge(c *fiber.Ctx) error {
	var req struct {
		Age *int `json:"age"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if req.Age == nil {
		return respondError(c, h.logger, "Age verification failed", apperrors.Invalid("age", "is required"))
	}
	result, err := h.checkout.VerifyAge(c.UserContext(), c.Params("id"), *req.Age)
	if err != nil {
		return respondError(c, h.logger, "Age verification failed", err)
	}
	return c.JSON(result)
}

// HandleCancel cancels a pending cart.
func (h *CheckoutHandler) HandleCancel(c *fiber.Ctx) error {
	cart, err := h.checkout.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Could not cancel order", err)
	}
	return c.JSON(cart)
}
