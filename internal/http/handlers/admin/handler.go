package admin

import "github.com/mealstack/internal/provider"

// Handler ops/admin API handlers. Routes mounting these must sit behind
// the admin middleware gate.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
