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
	moviectrl "github.com/exmosaul/queteparece/movie/internal/controller/movie"
	"github.com/exmosaul/queteparece/movie/internal/controller/rating"
	"github.com/exmosaul/queteparece/movie/internal/controller/review"
	usergateway "github.com/exmosaul/queteparece/movie/internal/gateway/user/http"
	httphandler "github.com/exmosaul/queteparece/movie/internal/handler/http"
	"github.com/exmosaul/queteparece/movie/internal/ingester/kafka"
	"github.com/exmosaul/queteparece/movie/internal/repository/memory"
	"github.com/exmosaul/queteparece/movie/internal/repository/mysql"
	"github.com/exmosaul/queteparece/movie/pkg/model"
	"github.com/exmosaul/queteparece/pkg/discovery"
	"github.com/exmosaul/queteparece/pkg/discovery/consul"
	"github.com/exmosaul/queteparece/pkg/locale"
	"github.com/exmosaul/queteparece/pkg/tracing"
)

const serviceName = "movie"

type movieRepository interface {
	GetMovie(ctx context.Context, id string) (*model.Movie, error)
	PutMovie(ctx context.Context, movie *model.Movie) error
	SetAggregate(ctx context.Context, movieID string, rating float64, count int) error
	CreateReview(ctx context.Context, movieID string, review *model.Review) error
	GetReview(ctx context.Context, movieID, reviewID string) (*model.Review, error)
	ListReviews(ctx context.Context, movieID string) ([]model.Review, error)
	UpdateReview(ctx context.Context, movieID, reviewID string, fn func(*model.Review) error) error
	DeleteReview(ctx context.Context, movieID, reviewID string) error
	PutRating(ctx context.Context, movieID string, sample *model.RatingSample) error
	GetRating(ctx context.Context, movieID, userID string) (*model.RatingSample, error)
	ListRatings(ctx context.Context, movieID string) ([]model.RatingSample, error)
	DeleteRating(ctx context.Context, movieID, userID string) error
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	f, err := os.Open("configs/movie.yaml")
	if err != nil {
		logger.Fatal("Failed to open configuration", zap.Error(err))
	}
	var cfg config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		logger.Fatal("Failed to parse configuration", zap.Error(err))
	}
	port := cfg.API.Port
	logger.Info("Starting the movie service", zap.Int("port", port))

	registry, err := consul.NewRegistry(cfg.ServiceDiscovery.Consul.Address)
	if err != nil {
		logger.Fatal("Failed to init movie service registry", zap.Error(err))
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

	var repo movieRepository
	if cfg.MySQL.DSN != "" {
		repo, err = mysql.New(cfg.MySQL.DSN)
		if err != nil {
			logger.Fatal("Failed to init MySQL repository", zap.Error(err))
		}
	} else {
		logger.Info("No MySQL DSN configured, using in-memory storage")
		repo = memory.New()
	}

	var ingester rating.Ingester
	if cfg.Kafka.Address != "" {
		ingester, err = kafka.NewIngester(cfg.Kafka.Address, cfg.Kafka.GroupID, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Fatal("Failed to init Kafka ingester", zap.Error(err))
		}
	}

	defaultLocale := cfg.Catalog.DefaultLocale
	if defaultLocale == "" {
		defaultLocale = locale.DefaultLocale
	}

	movies := moviectrl.New(repo, defaultLocale)
	reviews := review.New(repo, usergateway.New(registry))
	ratings := rating.New(repo, ingester)
	if ingester != nil {
		go func() {
			if err := ratings.StartIngestion(ctx, logger); err != nil {
				logger.Error("Rating event ingestion stopped", zap.Error(err))
			}
		}()
	}

	reporter := promreporter.NewReporter(promreporter.Options{})
	scope, scopeCloser := tally.NewRootScope(tally.ScopeOptions{
		Prefix:         serviceName,
		CachedReporter: reporter,
		Separator:      promreporter.DefaultSeparator,
	}, time.Second)
	defer scopeCloser.Close()

	h := httphandler.New(movies, reviews, ratings, scope)

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
