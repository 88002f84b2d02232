package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/suchimauz/meeting-rooms-availability/internal/adapters/in/http"
	"github.com/suchimauz/meeting-rooms-availability/internal/adapters/in/rabbitmq"
	"github.com/suchimauz/meeting-rooms-availability/internal/adapters/out/cache"
	"github.com/suchimauz/meeting-rooms-availability/internal/adapters/out/ews"
	"github.com/suchimauz/meeting-rooms-availability/internal/adapters/out/exclusion"
	"github.com/suchimauz/meeting-rooms-availability/internal/adapters/out/logger"
	"github.com/suchimauz/meeting-rooms-availability/internal/adapters/out/metrics"
	"github.com/suchimauz/meeting-rooms-availability/internal/adapters/out/msgraph"
	"github.com/suchimauz/meeting-rooms-availability/internal/adapters/out/tracing"
	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/services/room_availability_service"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Локально читаемый цветной вывод, в остальных окружениях JSON
	logLevel := out.ParseLogLevel(cfg.App.LogLevel)
	var mainLogger out.LoggerPort
	if cfg.IsLocal() {
		consoleLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
		if err != nil {
			fmt.Printf("Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
		consoleLogger.SetLevel(logLevel)
		mainLogger = consoleLogger
	} else {
		structuredLogger := logger.NewZerologLogger(cfg.App.Version)
		structuredLogger.SetLevel(logLevel)
		mainLogger = structuredLogger
	}
	log := mainLogger.WithModule("Main")

	log.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"backend":         cfg.Backend,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, cfg)
	if err != nil {
		log.Error("app.tracing.init_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("app.tracing.shutdown_failed", out.LogFields{
				"error": err.Error(),
			})
		}
	}()

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Инициализация адаптеров
	var directoryAdapter out.DirectoryPort
	switch cfg.Backend {
	case config.BackendEWS:
		directoryAdapter = ews.NewEWSAdapter(cfg, mainLogger.WithModule("EWSAdapter"))
	default:
		directoryAdapter = msgraph.NewGraphAdapter(ctx, cfg, mainLogger.WithModule("GraphAdapter"))
	}

	exclusionAdapter, err := exclusion.NewExclusionAdapter(cfg, mainLogger.WithModule("ExclusionAdapter"))
	if err != nil {
		log.Error("app.exclusion.init_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	cacheAdapter, err := cache.NewCacheAdapter(ctx, cfg, mainLogger.WithModule("CacheAdapter"))
	if err != nil {
		log.Error("app.cache.init_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	if closer, ok := cacheAdapter.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	metricsAdapter := metrics.NewPrometheusAdapter(prometheus.DefaultRegisterer)

	// Инициализация сервиса
	roomService := room_availability_service.NewRoomAvailabilityService(
		directoryAdapter,
		exclusionAdapter,
		cacheAdapter,
		metricsAdapter,
		mainLogger,
		room_availability_service.NewSettings(cfg),
	)

	// Настройка HTTP сервера
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.IsLocal() {
		router.Use(gin.Logger())
	}
	controller := http.NewRoomsController(
		roomService,
		cfg,
		metricsAdapter,
		mainLogger.WithModule("HttpController"),
	)
	controller.RegisterRoutes(router, prometheus.DefaultGatherer)

	// Настройка RabbitMQ слушателя только если он включен
	if cfg.RabbitMQ.Enabled {
		listener, err := rabbitmq.NewRoomsListener(
			roomService,
			cfg,
			mainLogger.WithModule("RabbitMQListener"),
		)
		if err != nil {
			log.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		if err := listener.Start(ctx); err != nil {
			log.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				log.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			log.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	log.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})
}
