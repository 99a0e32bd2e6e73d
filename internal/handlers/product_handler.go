package handlers

import (
	"net/url"

	"scango/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{service: service, logger: logger}
}

// RegisterRoutes registers the catalog routes. Reads are open to any signed-in
// user; changes are admin only.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", guards.Authenticated, h.HandleGetProducts)
	productRoutes.Get("/scan/:code", guards.Authenticated, h.HandleGetProductByScanCode)
	productRoutes.Get("/:id", guards.Authenticated, h.HandleGetProductByID)

	adminRoutes := router.Group("/admin/products")
	adminRoutes.Post("/", guards.admin(h.HandleCreateProduct)...)
	adminRoutes.Put("/:id", guards.admin(h.HandleUpdateProduct)...)
	adminRoutes.Delete("/:id", guards.admin(h.HandleDeleteProduct)...)
	adminRoutes.Post("/:id/reduce-stock", guards.admin(h.HandleReduceStock)...)
}

// HandleGetProducts lists the catalog sorted by name.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Product not found", err)
	}
	return c.JSON(product)
}

// HandleGetProductByScanCode resolves a scanned label.
func (h *ProductHandler) HandleGetProductByScanCode(c *fiber.Ctx) error {
	code, err := url.PathUnescape(c.Params("code"))
	if err != nil {
		return badRequest(c, "Invalid scan code", err)
	}
	product, err := h.service.GetProductByScanCode(c.UserContext(), code)
	if err != nil {
		return respondError(c, h.logger, "Product not found", err)
	}
	return c.JSON(product)
}

// HandleCreateProduct adds a product, generating a scan code when none is given.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.logger, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a product's editable fields.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.logger, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product. Carts keep their snapshots.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.logger, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleReduceStock takes units out of a product's stock.
func (h *ProductHandler) HandleReduceStock(c *fiber.Ctx) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	product, err := h.service.ReduceStock(c.UserContext(), c.Params("id"), req.Quantity)
	if err != nil {
		return respondError(c, h.logger, "Could not reduce stock", err)
	}
	return c.JSON(product)
}
