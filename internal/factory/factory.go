package factory

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"kumbam-backend/internal/audit"
	"kumbam-backend/internal/client"
	"kumbam-backend/internal/config"
	"kumbam-backend/internal/events"
	"kumbam-backend/internal/handler"
	"kumbam-backend/internal/hashing"
	"kumbam-backend/internal/mailer"
	redisrepo "kumbam-backend/internal/repository/redis"
	"kumbam-backend/internal/repository/scylla"
	"kumbam-backend/internal/search"
	"kumbam-backend/internal/service"
	"kumbam-backend/internal/util"
)

// Factory wires all application dependencies and owns their lifecycle.
// Scylla and Redis are required; Kafka, ClickHouse and Elasticsearch are
// optional and the app degrades without them.
type Factory struct {
	config *config.Config

	scyllaClient     *scylla.Client
	redisClient      *client.RedisClient
	kafkaProducer    *client.KafkaProducer
	clickhouseClient *client.ClickHouseClient
	esClient         *client.ESClient

	recorder *audit.Recorder

	authService    *service.AuthService
	bookingService *service.BookingService

	router chi.Router

	closeOnce sync.Once
}

// NewFactory loads configuration, connects the backing services and builds
// the handler graph.
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	f := &Factory{config: cfg}

	if err := f.initializeClients(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}

	f.initializeServices()

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.Bool("kafka_enabled", f.kafkaProducer != nil),
		util.Bool("clickhouse_enabled", f.clickhouseClient != nil),
		util.Bool("elasticsearch_enabled", f.esClient != nil),
	)

	return f, nil
}

func (f *Factory) initializeClients() error {
	scyllaClient, err := scylla.NewClient(f.config)
	if err != nil {
		return fmt.Errorf("scylla: %w", err)
	}
	f.scyllaClient = scyllaClient

	redisClient, err := client.NewRedisClient(f.config)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	f.redisClient = redisClient

	if f.config.KafkaEnabled() {
		producer, err := client.NewKafkaProducer(f.config, util.Get())
		if err != nil {
			util.Warn("Kafka producer initialization failed - proceeding without Kafka", util.ErrorField(err))
		} else {
			f.kafkaProducer = producer
		}
	}

	if f.config.ClickhouseEnabled() {
		chClient, err := client.NewClickHouseClient(f.config)
		if err != nil {
			util.Warn("ClickHouse initialization failed - proceeding without audit trail", util.ErrorField(err))
		} else {
			f.clickhouseClient = chClient
			recorder, err := audit.NewRecorder(chClient)
			if err != nil {
				util.Warn("Audit recorder initialization failed - proceeding without audit trail", util.ErrorField(err))
			} else {
				f.recorder = recorder
			}
		}
	}

	if f.config.ElasticsearchEnabled() {
		esClient, err := client.NewElasticsearchClient(f.config)
		if err != nil {
			util.Warn("Elasticsearch initialization failed - proceeding without search", util.ErrorField(err))
		} else {
			f.esClient = esClient
		}
	}

	return nil
}

func (f *Factory) initializeServices() {
	logger := util.Get()

	users := scylla.NewUserRepository(f.scyllaClient)
	otps := scylla.NewOTPRepository(f.scyllaClient)
	halls := scylla.NewBanquetRepository(f.scyllaClient)

	cache := redisrepo.NewCatalogCache(f.redisClient)

	var publisher *events.Publisher
	if f.kafkaProducer != nil {
		publisher = events.NewPublisher(f.kafkaProducer,
			f.config.Kafka.AuthTopic, f.config.Kafka.BookingTopic)
	}

	var index *search.BanquetIndex
	if f.esClient != nil {
		index = search.NewBanquetIndex(f.esClient, f.config.Elasticsearch.BanquetIndex)
	}

	smtpMailer := mailer.NewSMTPMailer(f.config)

	otpService := service.NewOTPService(otps, smtpMailer, logger)
	f.authService = service.NewAuthService(users, otpService, hashing.NewHasher(), publisher, f.recorder, logger)
	f.bookingService = service.NewBookingService(halls, cache, index, publisher, logger)

	authHandler := handler.NewAuthHandler(f.authService, logger)
	bookingHandler := handler.NewBookingHandler(f.bookingService, logger)

	f.router = handler.NewRouter(authHandler, bookingHandler, f.config.Server.UploadsDir, f.healthCheck, logger)
}

// healthCheck probes every connected dependency. Optional dependencies that
// are not configured do not appear in the report.
func (f *Factory) healthCheck(r *http.Request) map[string]string {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	deps := map[string]string{}

	if err := f.scyllaClient.HealthCheck(ctx); err != nil {
		deps["scylla"] = err.Error()
	} else {
		deps["scylla"] = "ok"
	}

	if err := f.redisClient.HealthCheck(ctx); err != nil {
		deps["redis"] = err.Error()
	} else {
		deps["redis"] = "ok"
	}

	if f.kafkaProducer != nil {
		if err := f.kafkaProducer.HealthCheck(ctx); err != nil {
			deps["kafka"] = err.Error()
		} else {
			deps["kafka"] = "ok"
		}
	}

	if f.clickhouseClient != nil {
		if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
			deps["clickhouse"] = err.Error()
		} else {
			deps["clickhouse"] = "ok"
		}
	}

	if f.esClient != nil {
		if err := f.esClient.HealthCheck(); err != nil {
			deps["elasticsearch"] = err.Error()
		} else {
			deps["elasticsearch"] = "ok"
		}
	}

	return deps
}

// Router returns the fully wired HTTP handler.
func (f *Factory) Router() chi.Router {
	return f.router
}

// Config returns the loaded configuration.
func (f *Factory) Config() *config.Config {
	return f.config
}

// Close tears down dependencies in reverse initialization order. Safe to
// call more than once.
func (f *Factory) Close() {
	f.closeOnce.Do(func() {
		if f.recorder != nil {
			f.recorder.Close()
		}
		if f.esClient != nil {
			f.esClient.Close()
		}
		if f.clickhouseClient != nil {
			_ = f.clickhouseClient.Close()
		}
		if f.kafkaProducer != nil {
			_ = f.kafkaProducer.Close()
		}
		if f.redisClient != nil {
			_ = f.redisClient.Close()
		}
		if f.scyllaClient != nil {
			f.scyllaClient.Close()
		}
		util.Info("Factory closed")
		util.Sync()
	})
}
