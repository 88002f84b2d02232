package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/domain"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/in"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

// HTTPMetrics: то, что контроллеру нужно от метрик
type HTTPMetrics interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

type RoomsController struct {
	useCase in.RoomAvailabilityUseCase
	cfg     *config.Config
	metrics HTTPMetrics
	logger  out.LoggerPort
}

type RoomsDebugResponse struct {
	Rooms []domain.Room      `json:"rooms"`
	Debug []domain.DebugInfo `json:"debug"`
}

func NewRoomsController(useCase in.RoomAvailabilityUseCase, cfg *config.Config, metrics HTTPMetrics, logger out.LoggerPort) *RoomsController {
	return &RoomsController{
		useCase: useCase,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterRoutes вешает API и служебные маршруты. /metrics только при gatherer != nil
func (c *RoomsController) RegisterRoutes(router *gin.Engine, gatherer prometheus.Gatherer) {
	if c.metrics != nil {
		router.Use(c.observeRequests())
	}

	router.GET("/health", c.health)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.GET("/rooms", c.listRooms)
		api.GET("/rooms/:alias", c.getRoom)
		api.POST("/rooms/invalidate", c.invalidateRooms)
	}
}

func (c *RoomsController) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": c.cfg.App.Version,
	})
}

func (c *RoomsController) listRooms(ctx *gin.Context) {
	debug := queryFlag(ctx, "debug")
	opts := in.ListRoomsOptions{
		Refresh: queryFlag(ctx, "refresh"),
	}

	rooms, debugInfo, err := c.useCase.ListRooms(ctx.Request.Context(), opts)
	if err != nil {
		c.logger.Error("http.rooms.list_failed", out.LogFields{
			"error": err.Error(),
		})
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if debug {
		ctx.JSON(http.StatusOK, RoomsDebugResponse{
			Rooms: rooms,
			Debug: debugInfo,
		})
		return
	}

	ctx.JSON(http.StatusOK, rooms)
}

func (c *RoomsController) getRoom(ctx *gin.Context) {
	room, err := c.useCase.GetRoom(ctx.Request.Context(), ctx.Param("alias"))
	if errors.Is(err, domain.ErrRoomNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.logger.Error("http.rooms.get_failed", out.LogFields{
			"alias": ctx.Param("alias"),
			"error": err.Error(),
		})
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, room)
}

func (c *RoomsController) invalidateRooms(ctx *gin.Context) {
	if err := c.useCase.InvalidateRooms(ctx.Request.Context()); err != nil {
		c.logger.Error("http.rooms.invalidate_failed", out.LogFields{
			"error": err.Error(),
		})
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (c *RoomsController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth || !c.isAllowed(username, password) {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ctx.Next()
	}
}

func (c *RoomsController) isAllowed(username, password string) bool {
	allowed := false
	// Проходим по всем клиентам, чтобы время ответа не зависело от позиции
	for _, client := range c.cfg.Auth.BasicClients {
		userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(client.Username))
		passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(client.Password))
		if userMatch&passMatch == 1 {
			allowed = true
		}
	}
	return allowed
}

func (c *RoomsController) observeRequests() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		c.metrics.ObserveHTTPRequest(ctx.Request.Method, path, ctx.Writer.Status(), time.Since(start))
	}
}

func queryFlag(ctx *gin.Context, name string) bool {
	value, ok := ctx.GetQuery(name)
	if !ok {
		return false
	}
	if value == "" {
		return true
	}
	flag, err := strconv.ParseBool(value)
	return err == nil && flag
}
