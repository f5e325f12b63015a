package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/lfdctl/pkg/api/types"
	"github.com/urmzd/lfdctl/pkg/transport"
)

// PortsHandler lists the local serial ports a display can be wired to.
type PortsHandler struct {
	list func() ([]string, error)
}

// NewPortsHandler creates a ports handler. A nil list uses
// transport.ListPorts.
func NewPortsHandler(list func() ([]string, error)) *PortsHandler {
	if list == nil {
		list = transport.ListPorts
	}
	return &PortsHandler{list: list}
}

// SerialPorts handles GET /serial-ports
// @Summary      List serial ports
// @Description  Lists the RS-232 ports on the controller host, for displays using the serial transport
// @Tags         discovery
// @Produce      json
// @Success      200  {object}  types.SerialPortsResponse
// @Failure      500  {object}  types.ErrorResponse  "Port enumeration failed"
// @Router       /serial-ports [get]
func (h *PortsHandler) SerialPorts(c *gin.Context) {
	ports, err := h.list()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list serial ports")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "port_enumeration_failed",
			Message: err.Error(),
		})
		return
	}
	if ports == nil {
		ports = []string{}
	}

	c.JSON(http.StatusOK, types.SerialPortsResponse{
		Ports:           ports,
		DefaultBaudRate: transport.DefaultBaudRate,
		DefaultTCPPort:  transport.DefaultTCPPort,
	})
}
