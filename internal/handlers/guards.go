package handlers

import "github.com/gofiber/fiber/v2"

// Guards are the middleware chains attached per route. Authenticated must run
// before Customer or Admin.
type Guards struct {
	Authenticated fiber.Handler
	Customer      fiber.Handler
	Admin         fiber.Handler
}

func (g Guards) customer(h fiber.Handler) []fiber.Handler {
	return []fiber.Handler{g.Authenticated, g.Customer, h}
}

func (g Guards) admin(h fiber.Handler) []fiber.Handler {
	return []fiber.Handler{g.Authenticated, g.Admin, h}
}
