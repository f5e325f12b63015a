package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// heartbeatInterval keeps idle SSE connections open through proxies.
const heartbeatInterval = 30 * time.Second

// EventsHandler streams display events and serves host metadata
type EventsHandler struct {
	displays Displays
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(displays Displays) *EventsHandler {
	return &EventsHandler{displays: displays}
}

// Events handles GET /events (SSE stream)
// @Summary      Subscribe to display events
// @Description  Server-Sent Events stream of status, state, feedback and lifecycle events. Filter with ?display=<id>.
// @Tags         events
// @Produce      text/event-stream
// @Param        display  query     string  false  "Only events of this display"
// @Success      200      {string}  string  "SSE event stream"
// @Router       /events [get]
func (h *EventsHandler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	filter := c.Query("display")
	eventChan := h.displays.Subscribe()
	defer h.displays.Unsubscribe(eventChan)

	sendSSEEvent(c.Writer, "connected", map[string]any{
		"timestamp": time.Now(),
		"message":   "Connected to display event stream",
	})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return

		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if filter != "" && event.Device != filter {
				continue
			}
			sendSSEEvent(c.Writer, event.Type, event)
			c.Writer.Flush()

		case <-ticker.C:
			sendSSEEvent(c.Writer, "heartbeat", map[string]any{
				"timestamp": time.Now(),
			})
			c.Writer.Flush()
		}
	}
}

// Metadata handles GET /metadata
// @Summary      Get host metadata
// @Description  Returns the action, feedback, preset and variable catalogue shared by all displays
// @Tags         events
// @Produce      json
// @Success      200  {object}  host.Metadata
// @Router       /metadata [get]
func (h *EventsHandler) Metadata(c *gin.Context) {
	c.JSON(http.StatusOK, h.displays.Metadata())
}

// sendSSEEvent writes an SSE event to the response
func sendSSEEvent(w io.Writer, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: "+string(jsonData)+"\n\n")
}
