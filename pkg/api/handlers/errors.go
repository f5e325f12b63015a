package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/lfdctl/pkg/api/types"
	"github.com/urmzd/lfdctl/pkg/device"
	"github.com/urmzd/lfdctl/pkg/host"
	"github.com/urmzd/lfdctl/pkg/session"
)

// Displays is the controller surface the handlers drive.
type Displays interface {
	device.Controller
	device.EventSubscriber
	Metadata() host.Metadata
	RunAction(ctx context.Context, id, action string, values map[string]any) (string, error)
	Variables(ctx context.Context, id string) (map[string]string, error)
	Feedbacks(ctx context.Context, id string) (map[string]host.Style, error)
	LastFailure(ctx context.Context, id string) (*session.Response, error)
}

// writeError maps controller errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, device.ErrNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error:   "not_found",
			Message: "Display not found",
		})
	case errors.Is(err, device.ErrExists):
		c.JSON(http.StatusConflict, types.ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	case errors.Is(err, device.ErrValidation), errors.Is(err, session.ErrBadConfig):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	case errors.Is(err, device.ErrUnsupported):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "unsupported",
			Message: err.Error(),
		})
	case errors.Is(err, device.ErrNotConnected):
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{
			Error:   "not_connected",
			Message: "Display is not connected",
		})
	case errors.Is(err, device.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{
			Error:   "controller_closed",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "controller_error",
			Message: err.Error(),
		})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}
