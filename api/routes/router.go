package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spacehub/internal/auth"
	"spacehub/internal/availability"
	"spacehub/internal/bookings"
	"spacehub/internal/notifications"
	"spacehub/internal/payments"
	"spacehub/internal/reviews"
	"spacehub/internal/shared/config"
	"spacehub/internal/shared/database"
	"spacehub/internal/spaces"
	"spacehub/pkg/cache"
	"spacehub/pkg/logger"
)

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	log    *logger.Logger

	bookingService bookings.Service
	jobProcessor   *bookings.JobProcessor
	producer       *notifications.KafkaProducer
	consumer       *notifications.KafkaConsumer
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, log *logger.Logger) *Router {
	return &Router{
		config: cfg,
		db:     db,
		log:    log,
	}
}

// SetupRoutes wires every service and registers all application routes.
func (r *Router) SetupRoutes(engine *gin.Engine) error {
	r.setupHealthRoutes(engine)

	// Shared infrastructure
	index := availability.NewStore()
	cacheService := cache.NewService(r.db.GetRedisClient())

	// Auth
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)

	// Spaces and rooms
	spaceRepo := spaces.NewRepository(r.db.GetPostgreSQL())
	spaceService := spaces.NewService(spaceRepo, index, cacheService, spaces.SlotConfig{
		OpenHour:     r.config.Booking.BusinessOpenHour,
		CloseHour:    r.config.Booking.BusinessEndHour,
		SlotDuration: time.Hour,
	})
	spaceController := spaces.NewController(spaceService)

	// Payments
	provider, err := payments.NewOmiseProvider(r.config.Omise.PublicKey, r.config.Omise.SecretKey)
	if err != nil {
		return err
	}

	// Notifications; the booking engine runs without them if Kafka is off.
	var notifier bookings.Notifier
	if r.config.Kafka.Enabled {
		producerConfig := notifications.DefaultProducerConfig()
		producerConfig.Brokers = r.config.Kafka.Brokers
		producerConfig.BookingTopic = r.config.Kafka.BookingTopic

		producer, err := notifications.NewKafkaProducer(producerConfig, r.log)
		if err != nil {
			return err
		}
		r.producer = producer
		notifier = notifications.NewBookingEventPublisher(producer, authRepo, r.log)
	}

	// Booking engine
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	bookingService := bookings.NewService(bookingRepo, index, spaceService, provider, notifier, bookings.Rules{
		MinDuration: r.config.Booking.MinDuration,
		MaxDuration: r.config.Booking.MaxDuration,
		OpenHour:    r.config.Booking.BusinessOpenHour,
		CloseHour:   r.config.Booking.BusinessEndHour,
		HoldTTL:     r.config.Booking.HoldTTL,
	})
	r.bookingService = bookingService
	bookingController := bookings.NewController(bookingService)

	// Reviews of completed stays
	reviewRepo := reviews.NewRepository(r.db.GetPostgreSQL())
	reviewService := reviews.NewService(reviewRepo, bookingService, spaceService)
	reviewController := reviews.NewController(reviewService)

	// Rebuild the in-memory index from active bookings before serving.
	if err := bookingService.RestoreAvailability(context.Background()); err != nil {
		return err
	}

	api := engine.Group(r.config.GetAPIBasePath())
	{
		auth.SetupAuthRoutes(api, authController)
		spaces.SetupSpaceRoutes(api, spaceController)
		bookings.SetupBookingRoutes(api, bookingController)
		reviews.SetupReviewRoutes(api, reviewController)

		if verifier, ok := provider.(payments.EventVerifier); ok {
			webhookController := payments.NewWebhookController(verifier, &lifecycleAdapter{service: bookingService}, r.log)
			payments.SetupWebhookRoutes(api, webhookController)
		}
	}

	return nil
}

// StartBackground launches the hold expiry and completion sweeps plus, when
// Kafka is enabled, the email consumer.
func (r *Router) StartBackground(ctx context.Context) error {
	r.jobProcessor = bookings.NewJobProcessor(r.bookingService, &bookings.JobConfig{
		SweepInterval: r.config.Booking.SweepInterval,
		MaxBackoff:    r.config.Booking.SweepMaxBackoff,
	})
	r.jobProcessor.Start(ctx)

	if r.config.Kafka.Enabled && r.config.Email.SMTPHost != "" {
		emailService, err := notifications.NewSMTPEmailService(notifications.NewSMTPConfig(r.config.Email))
		if err != nil {
			return err
		}

		consumerConfig := notifications.DefaultConsumerConfig()
		consumerConfig.Brokers = r.config.Kafka.Brokers
		consumerConfig.GroupID = r.config.Kafka.ConsumerGroup
		consumerConfig.Topics = []string{r.config.Kafka.BookingTopic}

		consumer, err := notifications.NewKafkaConsumer(consumerConfig, emailService, r.log)
		if err != nil {
			return err
		}
		r.consumer = consumer
		if err := consumer.Start(ctx, 2); err != nil {
			return err
		}
	}

	return nil
}

// Shutdown stops background workers and closes the Kafka clients.
func (r *Router) Shutdown() {
	if r.jobProcessor != nil {
		r.jobProcessor.Stop()
	}
	if r.consumer != nil {
		if err := r.consumer.Stop(); err != nil {
			r.log.Error("failed to stop notification consumer", "error", err)
		}
	}
	if r.producer != nil {
		if err := r.producer.Close(); err != nil {
			r.log.Error("failed to close Kafka producer", "error", err)
		}
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "spacehub-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "spacehub-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// lifecycleAdapter exposes the booking service to the payment webhook without
// a package cycle.
type lifecycleAdapter struct {
	service bookings.Service
}

func (a *lifecycleAdapter) ConfirmPayment(ctx context.Context, bookingID uuid.UUID) error {
	_, err := a.service.ConfirmPayment(ctx, bookingID)
	return err
}

func (a *lifecycleAdapter) CancelForFailedPayment(ctx context.Context, bookingID uuid.UUID, reason string) error {
	_, err := a.service.CancelForFailedPayment(ctx, bookingID, reason)
	return err
}
