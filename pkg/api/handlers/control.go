package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/lfdctl/pkg/api/types"
	"github.com/urmzd/lfdctl/pkg/device/schema"
)

// ControlHandler handles display state and command endpoints
type ControlHandler struct {
	displays  Displays
	validator *schema.Validator
}

// NewControlHandler creates a new control handler
func NewControlHandler(displays Displays, validator *schema.Validator) *ControlHandler {
	return &ControlHandler{displays: displays, validator: validator}
}

// GetState handles GET /displays/:id/state
// @Summary      Get display state
// @Description  Returns the last known snapshot of a display
// @Tags         control
// @Produce      json
// @Param        id   path      string  true  "Display ID or name"
// @Success      200  {object}  types.StateResponse
// @Failure      404  {object}  types.ErrorResponse  "Display not found"
// @Router       /displays/{id}/state [get]
func (h *ControlHandler) GetState(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := h.displays.GetDevice(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	state, err := h.displays.GetDeviceState(ctx, d.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.StateResponse{
		Display:   d.ID,
		State:     state,
		Timestamp: time.Now(),
	})
}

// SetState handles POST /displays/:id/state
// @Summary      Set display state
// @Description  Submits one set command per key of a JSON object validated against the display's state schema. Results arrive as state events.
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        id       path      string  true  "Display ID or name"
// @Param        request  body      object  true  "State to set, e.g. {\"power\":\"on\",\"volume\":25}"
// @Success      202      {object}  types.StateResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Display not found"
// @Failure      503      {object}  types.ErrorResponse  "Display not connected"
// @Router       /displays/{id}/state [post]
func (h *ControlHandler) SetState(c *gin.Context) {
	ctx := c.Request.Context()

	var req map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	d, err := h.displays.GetDevice(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.validator.Validate(d.StateSchema, req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	state, err := h.displays.SetDeviceState(ctx, d.ID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, types.StateResponse{
		Display:   d.ID,
		State:     state,
		Timestamp: time.Now(),
	})
}

// SendCommand handles POST /displays/:id/commands
// @Summary      Submit a command
// @Description  Submits semantic command text such as "power on", "volume 30" or "model?". Commands sent while disconnected follow the display's submit policy.
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Display ID or name"
// @Param        request  body      types.CommandRequest  true  "Command text"
// @Success      202      {object}  types.CommandResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid or unsupported command"
// @Failure      404      {object}  types.ErrorResponse  "Display not found"
// @Router       /displays/{id}/commands [post]
func (h *ControlHandler) SendCommand(c *gin.Context) {
	var req types.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "command is required")
		return
	}

	id := c.Param("id")
	if err := h.displays.SendCommand(c.Request.Context(), id, req.Command); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, types.CommandResponse{
		Display: id,
		Command: req.Command,
		Status:  "submitted",
	})
}

// RunAction handles POST /displays/:id/actions/:action
// @Summary      Run a host action
// @Description  Renders an action from the metadata catalogue into command text and submits it
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        id       path      string               true   "Display ID or name"
// @Param        action   path      string               true   "Action ID, e.g. powerOn or input"
// @Param        request  body      types.ActionRequest  false  "Option values"
// @Success      202      {object}  types.CommandResponse
// @Failure      400      {object}  types.ErrorResponse  "Unknown action or invalid values"
// @Failure      404      {object}  types.ErrorResponse  "Display not found"
// @Router       /displays/{id}/actions/{action} [post]
func (h *ControlHandler) RunAction(c *gin.Context) {
	var req types.ActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
	}

	id := c.Param("id")
	text, err := h.displays.RunAction(c.Request.Context(), id, c.Param("action"), req.Values)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, types.CommandResponse{
		Display: id,
		Command: text,
		Status:  "submitted",
	})
}

// Variables handles GET /displays/:id/variables
// @Summary      Get display variables
// @Description  Returns the snapshot projected to host variables; unknown values are empty strings
// @Tags         control
// @Produce      json
// @Param        id   path      string  true  "Display ID or name"
// @Success      200  {object}  types.VariablesResponse
// @Failure      404  {object}  types.ErrorResponse  "Display not found"
// @Router       /displays/{id}/variables [get]
func (h *ControlHandler) Variables(c *gin.Context) {
	id := c.Param("id")
	vars, err := h.displays.Variables(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.VariablesResponse{Display: id, Variables: vars})
}

// Feedbacks handles GET /displays/:id/feedbacks
// @Summary      Get feedback styles
// @Description  Returns the current style of every feedback of a display
// @Tags         control
// @Produce      json
// @Param        id   path      string  true  "Display ID or name"
// @Success      200  {object}  types.FeedbacksResponse
// @Failure      404  {object}  types.ErrorResponse  "Display not found"
// @Router       /displays/{id}/feedbacks [get]
func (h *ControlHandler) Feedbacks(c *gin.Context) {
	id := c.Param("id")
	styles, err := h.displays.Feedbacks(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make(map[string]types.FeedbackStyle, len(styles))
	for fid, st := range styles {
		out[fid] = types.FeedbackStyle{Active: st.Active, Text: st.Text}
	}
	c.JSON(http.StatusOK, types.FeedbacksResponse{Display: id, Feedbacks: out})
}

// LastFailure handles GET /displays/:id/failure
// @Summary      Get the last rejected request
// @Description  Returns the most recent NAK or unsupported response of a display, or an empty body when there is none
// @Tags         control
// @Produce      json
// @Param        id   path      string  true  "Display ID or name"
// @Success      200  {object}  types.FailureResponse
// @Failure      404  {object}  types.ErrorResponse  "Display not found"
// @Router       /displays/{id}/failure [get]
func (h *ControlHandler) LastFailure(c *gin.Context) {
	id := c.Param("id")
	resp, err := h.displays.LastFailure(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	out := types.FailureResponse{Display: id}
	if resp != nil {
		out.RequestKey = resp.RequestKey
		out.Status = resp.Status.String()
		if resp.Err != nil {
			out.Message = resp.Err.Error()
		}
	}
	c.JSON(http.StatusOK, out)
}
