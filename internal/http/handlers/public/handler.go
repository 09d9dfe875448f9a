package public

import "github.com/mealstack/internal/provider"

// Handler customer-facing API handlers.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
