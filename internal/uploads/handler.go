package uploads

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-review/internal/shared/server/middleware"
	"resume-review/internal/shared/server/respond"
)

// Handler exposes the caller's upload state.
type Handler struct {
	Tracker Tracker
}

// NewHandler constructs a Handler.
func NewHandler(tracker Tracker) *Handler {
	return &Handler{Tracker: tracker}
}

type stateResponse struct {
	State State `json:"state"`
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/uploads/state", h.state)
}

func (h *Handler) state(c *gin.Context) {
	if h.Tracker == nil {
		respond.OK(c, stateResponse{State: StateIdle})
		return
	}
	st, err := h.Tracker.State(c.Request.Context(), middleware.ClientIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusServiceUnavailable, "upload_state_unavailable", "upload state is unavailable", nil)
		return
	}
	respond.OK(c, stateResponse{State: st})
}
