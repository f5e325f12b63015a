package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/lfdctl/pkg/api/types"
)

// DisplaysHandler handles display lifecycle endpoints
type DisplaysHandler struct {
	displays Displays
}

// NewDisplaysHandler creates a new displays handler
func NewDisplaysHandler(displays Displays) *DisplaysHandler {
	return &DisplaysHandler{displays: displays}
}

// ListDisplays handles GET /displays
// @Summary      List all displays
// @Description  Returns every configured display with its connection status and snapshot
// @Tags         displays
// @Produce      json
// @Success      200  {object}  types.ListDisplaysResponse
// @Failure      500  {object}  types.ErrorResponse  "Controller error"
// @Router       /displays [get]
func (h *DisplaysHandler) ListDisplays(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := h.displays.ListDevices(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	result := make([]types.DisplayWithState, 0, len(list))
	for _, d := range list {
		state, _ := h.displays.GetDeviceState(ctx, d.ID)
		result = append(result, types.NewDisplayWithState(d, state))
	}

	c.JSON(http.StatusOK, types.ListDisplaysResponse{
		Displays: result,
		Count:    len(result),
	})
}

// GetDisplay handles GET /displays/:id
// @Summary      Get display details
// @Description  Returns one display by ID or name
// @Tags         displays
// @Produce      json
// @Param        id   path      string  true  "Display ID or name"
// @Success      200  {object}  types.DisplayResponse
// @Failure      404  {object}  types.ErrorResponse  "Display not found"
// @Router       /displays/{id} [get]
func (h *DisplaysHandler) GetDisplay(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := h.displays.GetDevice(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	state, _ := h.displays.GetDeviceState(ctx, d.ID)

	c.JSON(http.StatusOK, types.DisplayResponse{
		Display: types.NewDisplayWithState(*d, state),
	})
}

// AddDisplay handles POST /displays
// @Summary      Add a display
// @Description  Validates and persists a display, then connects to it
// @Tags         displays
// @Accept       json
// @Produce      json
// @Param        request  body      types.AddDisplayRequest  true  "Display configuration"
// @Success      201      {object}  types.DisplayResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid configuration"
// @Failure      409      {object}  types.ErrorResponse  "Display already exists"
// @Router       /displays [post]
func (h *DisplaysHandler) AddDisplay(c *gin.Context) {
	var req types.AddDisplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "id and host are required")
		return
	}

	d, err := h.displays.AddDevice(c.Request.Context(), req.Spec())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.DisplayResponse{
		Display: types.NewDisplayWithState(*d, nil),
	})
}

// RenameDisplay handles PATCH /displays/:id
// @Summary      Rename a display
// @Description  Changes the friendly name of a display
// @Tags         displays
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Display ID or name"
// @Param        request  body      types.RenameDisplayRequest  true  "New name"
// @Success      200      {object}  types.DisplayResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Display not found"
// @Router       /displays/{id} [patch]
func (h *DisplaysHandler) RenameDisplay(c *gin.Context) {
	ctx := c.Request.Context()

	var req types.RenameDisplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}

	// Resolve first; the old name stops matching after the rename.
	d, err := h.displays.GetDevice(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.displays.RenameDevice(ctx, d.ID, req.Name); err != nil {
		writeError(c, err)
		return
	}

	d, err = h.displays.GetDevice(ctx, d.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DisplayResponse{
		Display: types.NewDisplayWithState(*d, nil),
	})
}

// RemoveDisplay handles DELETE /displays/:id
// @Summary      Remove a display
// @Description  Tears down the display's session and deletes its configuration
// @Tags         displays
// @Produce      json
// @Param        id   path  string  true  "Display ID or name"
// @Success      204  "Display removed"
// @Failure      404  {object}  types.ErrorResponse  "Display not found"
// @Router       /displays/{id} [delete]
func (h *DisplaysHandler) RemoveDisplay(c *gin.Context) {
	if err := h.displays.RemoveDevice(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Configure handles PUT /displays/:id/config
// @Summary      Reconfigure a display
// @Description  Replaces the connection configuration and reconnects. An invalid configuration leaves the display in bad_config.
// @Tags         displays
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Display ID or name"
// @Param        request  body      types.ConnectionRequest  true  "Connection configuration"
// @Success      200      {object}  types.DisplayResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid configuration"
// @Failure      404      {object}  types.ErrorResponse  "Display not found"
// @Router       /displays/{id}/config [put]
func (h *DisplaysHandler) Configure(c *gin.Context) {
	ctx := c.Request.Context()

	var req types.ConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "host is required")
		return
	}

	id := c.Param("id")
	if err := h.displays.Configure(ctx, id, req.Config()); err != nil {
		writeError(c, err)
		return
	}

	d, err := h.displays.GetDevice(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DisplayResponse{
		Display: types.NewDisplayWithState(*d, nil),
	})
}

// Teardown handles POST /displays/:id/teardown
// @Summary      Disconnect a display
// @Description  Closes the display's session without deleting it. Configure reconnects it.
// @Tags         displays
// @Produce      json
// @Param        id   path  string  true  "Display ID or name"
// @Success      204  "Session closed"
// @Failure      404  {object}  types.ErrorResponse  "Display not found"
// @Router       /displays/{id}/teardown [post]
func (h *DisplaysHandler) Teardown(c *gin.Context) {
	if err := h.displays.Teardown(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
