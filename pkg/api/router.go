package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/urmzd/lfdctl/pkg/api/handlers"
	"github.com/urmzd/lfdctl/pkg/device/schema"
)

// Router holds the Gin engine and dependencies
type Router struct {
	engine    *gin.Engine
	displays  handlers.Displays
	validator *schema.Validator
}

// NewRouter creates a new API router. An empty origins list allows any
// origin.
func NewRouter(displays handlers.Displays, validator *schema.Validator, origins []string) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine, origins)

	router := &Router{
		engine:    engine,
		displays:  displays,
		validator: validator,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	healthHandler := handlers.NewHealthHandler(r.displays)
	r.engine.GET("/health", healthHandler.Health)

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		eventsHandler := handlers.NewEventsHandler(r.displays)
		v1.GET("/events", eventsHandler.Events)
		v1.GET("/metadata", eventsHandler.Metadata)

		portsHandler := handlers.NewPortsHandler(nil)
		v1.GET("/serial-ports", portsHandler.SerialPorts)

		displaysHandler := handlers.NewDisplaysHandler(r.displays)
		controlHandler := handlers.NewControlHandler(r.displays, r.validator)
		displays := v1.Group("/displays")
		{
			displays.GET("", displaysHandler.ListDisplays)
			displays.POST("", displaysHandler.AddDisplay)
			displays.GET("/:id", displaysHandler.GetDisplay)
			displays.PATCH("/:id", displaysHandler.RenameDisplay)
			displays.DELETE("/:id", displaysHandler.RemoveDisplay)
			displays.PUT("/:id/config", displaysHandler.Configure)
			displays.POST("/:id/teardown", displaysHandler.Teardown)

			displays.GET("/:id/state", controlHandler.GetState)
			displays.POST("/:id/state", controlHandler.SetState)
			displays.POST("/:id/commands", controlHandler.SendCommand)
			displays.POST("/:id/actions/:action", controlHandler.RunAction)
			displays.GET("/:id/variables", controlHandler.Variables)
			displays.GET("/:id/feedbacks", controlHandler.Feedbacks)
			displays.GET("/:id/failure", controlHandler.LastFailure)
		}
	}
}

// Handler returns the HTTP handler, for tests and custom servers.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
