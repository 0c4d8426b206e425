package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally/v4"
	promreporter "github.com/uber-go/tally/v4/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/exmosaul/queteparece/internal/authclient"
	"github.com/exmosaul/queteparece/pkg/discovery"
	"github.com/exmosaul/queteparece/pkg/discovery/consul"
	"github.com/exmosaul/queteparece/pkg/tracing"
	"github.com/exmosaul/queteparece/social/internal/controller/favorites"
	"github.com/exmosaul/queteparece/social/internal/controller/recommend"
	"github.com/exmosaul/queteparece/social/internal/controller/relationship"
	httphandler "github.com/exmosaul/queteparece/social/internal/handler/http"
	"github.com/exmosaul/queteparece/social/internal/repository/memory"
	"github.com/exmosaul/queteparece/social/internal/repository/mysql"
	"github.com/exmosaul/queteparece/social/pkg/model"
)

const serviceName = "social"

type userRepository interface {
	Get(ctx context.Context, uid string) (*model.User, error)
	Put(ctx context.Context, user *model.User) error
	Update(ctx context.Context, uid string, fn func(*model.User) error) error
	UpdatePair(ctx context.Context, uidA, uidB string, fn func(a, b *model.User) error) error
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	f, err := os.Open("configs/social.yaml")
	if err != nil {
		logger.Fatal("Failed to open configuration", zap.Error(err))
	}
	var cfg config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		logger.Fatal("Failed to parse configuration", zap.Error(err))
	}
	port := cfg.API.Port
	logger.Info("Starting the social service", zap.Int("port", port))

	registry, err := consul.NewRegistry(cfg.ServiceDiscovery.Consul.Address)
	if err != nil {
		logger.Fatal("Failed to init social service registry", zap.Error(err))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracer, tracerCloser, err := tracing.NewTracer(serviceName, cfg.Jaeger.Host, cfg.Jaeger.Port, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Jaeger tracer", zap.Error(err))
	}
	defer tracerCloser.Close()
	opentracing.SetGlobalTracer(tracer)

	instanceID := discovery.GenerateInstanceID(serviceName)
	if err := registry.Register(ctx, instanceID, serviceName, fmt.Sprintf("localhost:%d", port)); err != nil {
		logger.Fatal("Failed to register service", zap.Error(err))
	}
	go func() {
		for {
			if err := registry.ReportHealthyState(instanceID, serviceName); err != nil {
				log.Println("Failed to report healthy state: " + err.Error())
			}
			time.Sleep(1 * time.Second)
		}
	}()
	defer registry.Deregister(ctx, instanceID, serviceName)

	var repo userRepository
	if cfg.MySQL.DSN != "" {
		repo, err = mysql.New(cfg.MySQL.DSN)
		if err != nil {
			logger.Fatal("Failed to init MySQL repository", zap.Error(err))
		}
	} else {
		logger.Info("No MySQL DSN configured, using in-memory storage")
		repo = memory.New()
	}

	reporter := promreporter.NewReporter(promreporter.Options{})
	scope, scopeCloser := tally.NewRootScope(tally.ScopeOptions{
		Prefix:         serviceName,
		CachedReporter: reporter,
		Separator:      promreporter.DefaultSeparator,
	}, time.Second)
	defer scopeCloser.Close()

	relationships := relationship.New(repo, logger)
	h := httphandler.New(relationships, favorites.New(repo), recommend.New(repo), repo, scope)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(rateLimit(1000, 1000))
	router.GET("/metrics", gin.WrapH(reporter.HTTPHandler()))
	h.Register(router, authclient.New(registry))

	srv := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: router,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-sigChan
		logger.Info("Received signal, attempting graceful shutdown", zap.Any("signal", s))
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", zap.Error(err))
		}
		logger.Info("Gracefully stopped the HTTP server")
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Failed to serve HTTP server", zap.Error(err))
	}

	wg.Wait()
}

func rateLimit(limit int, burst int) gin.HandlerFunc {
	l := rate.NewLimiter(rate.Limit(limit), burst)
	return func(c *gin.Context) {
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
