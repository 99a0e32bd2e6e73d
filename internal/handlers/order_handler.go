package handlers

import (
	"fmt"

	"scango/internal/apperrors"
	"scango/internal/middleware"
	"scango/internal/models"
	"scango/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	router.Get("/orders", guards.customer(h.HandleGetMyOrders)...)

	adminRoutes := router.Group("/admin/orders")
	adminRoutes.Get("/", guards.admin(h.HandleGetOrders)...)
	adminRoutes.Get("/:id", guards.admin(h.HandleGetOrderByID)...)
	adminRoutes.Patch("/:id/status", guards.admin(h.HandleUpdateOrderStatus)...)
}

// HandleGetMyOrders lists the caller's own orders, newest first.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	orders, err := h.service.GetUserOrders(c.UserContext(), sess.UserID)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(c.UserContext(), orderID)
	if err != nil {
		return respondError(c, h.logger, fmt.Sprintf("Order with ID %s not found", orderID), err)
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		return badRequest(c, "Invalid request body for status update", err)
	}

	status := models.OrderStatus(updateData.Status)
	if !status.Valid() {
		return respondError(c, h.logger, "Status is required for order status update.",
			apperrors.Invalid("status", "must be one of pending, completed, cancelled"))
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), orderID, status)
	if err != nil {
		return respondError(c, h.logger, "Could not update order status", err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, status),
		"order":   order,
	})
}
