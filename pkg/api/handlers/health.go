package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/lfdctl/pkg/api/types"
	"github.com/urmzd/lfdctl/pkg/session"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	displays Displays
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(displays Displays) *HealthHandler {
	return &HealthHandler{displays: displays}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Reports how many configured displays are connected. Degraded when some are not.
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "All displays connected"
// @Failure      503  {object}  types.HealthResponse  "Some displays are not connected"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	list, err := h.displays.ListDevices(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	connected := 0
	for _, d := range list {
		if d.Status.State == session.StateConnected {
			connected++
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if connected < len(list) {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:    status,
		Displays:  len(list),
		Connected: connected,
		Timestamp: time.Now(),
	})
}
