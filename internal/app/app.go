// Package app assembles the chat service from a validated config. Both
// entrypoints share it so the Lambda and the HTTP server run identical
// wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"travel-agent/internal/config"
	"travel-agent/internal/dialogue"
	"travel-agent/internal/fetch"
	"travel-agent/internal/gazetteer"
	"travel-agent/internal/integrations/gemini"
	"travel-agent/internal/integrations/openai"
	"travel-agent/internal/integrations/paramstore"
	"travel-agent/internal/integrations/travelapi"
	"travel-agent/internal/repository"
	"travel-agent/internal/usecase"
)

const (
	searchTimeout = 30 * time.Second
	visaTimeout   = 15 * time.Second
	connectWait   = 10 * time.Second
)

// Options are the process-level inputs of Build. AWS is loaded from the
// default chain when nil and a component needs it.
type Options struct {
	Config  config.Config
	Secrets paramstore.Getter
	AWS     *aws.Config
	Logger  *slog.Logger
}

// App is a wired chat service plus the resources it owns.
type App struct {
	Chat    *usecase.ChatService
	closers []func(context.Context) error
}

// Close releases store connections and LLM clients.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func Build(ctx context.Context, opts Options) (*App, error) {
	if opts.Secrets == nil {
		return nil, errors.New("app: secrets getter must not be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	a := &App{}

	secrets, err := paramstore.NewCached(opts.Secrets)
	if err != nil {
		return nil, err
	}

	store, err := a.buildStore(ctx, cfg.State, opts.AWS)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	llm, err := a.buildLLM(cfg, secrets)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	chat, err := buildChat(cfg, secrets, store, llm, logger)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.Chat = chat
	logger.Info("chat service ready",
		"state_backend", cfg.State.Backend,
		"llm_provider", cfg.LLM.Provider,
		"travel_rpm", cfg.Travel.RequestsPerMin,
	)
	return a, nil
}

func (a *App) buildStore(ctx context.Context, cfg config.StateConfig, awsCfg *aws.Config) (repository.UserStore, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, connectWait)
		defer cancel()
		client, err := mongo.Connect(connectCtx, mongooptions.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("app: connect mongo: %w", err)
		}
		a.closers = append(a.closers, client.Disconnect)
		if err := client.Ping(connectCtx, nil); err != nil {
			return nil, fmt.Errorf("app: ping mongo: %w", err)
		}
		return repository.NewMongoStore(client.Database(cfg.MongoDB).Collection(cfg.MongoCollection))

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		pingCtx, cancel := context.WithTimeout(ctx, connectWait)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("app: ping redis: %w", err)
		}
		return repository.NewRedisStore(client, 0)

	default:
		if awsCfg == nil {
			loaded, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, fmt.Errorf("app: load AWS config: %w", err)
			}
			awsCfg = &loaded
		}
		return repository.NewDynamoStore(awsdynamodb.NewFromConfig(*awsCfg), cfg.Table)
	}
}

func (a *App) buildLLM(cfg config.Config, secrets paramstore.Getter) (dialogue.TextCompletion, error) {
	prefix := cfg.Travel.ParamPrefix
	if cfg.LLM.Provider == config.ProviderOpenAI {
		return openai.NewClient(secrets, prefix, openai.WithModel(cfg.LLM.Model))
	}
	client, err := gemini.NewClient(secrets, prefix, gemini.WithModel(cfg.LLM.Model))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	return client, nil
}

func buildChat(cfg config.Config, secrets paramstore.Getter, store repository.UserStore, llm dialogue.TextCompletion, logger *slog.Logger) (*usecase.ChatService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	countries := gazetteer.NewCountries(nil)
	airports, err := gazetteer.LoadAirports()
	if err != nil {
		return nil, fmt.Errorf("app: load airports: %w", err)
	}
	cities, err := gazetteer.LoadHotelCities()
	if err != nil {
		return nil, fmt.Errorf("app: load hotel cities: %w", err)
	}

	creds, err := travelapi.NewSecrets(secrets, cfg.Travel.ParamPrefix)
	if err != nil {
		return nil, err
	}
	fetchLogger := logger.With("component", "fetch")
	searchFetcher := fetch.New(
		fetch.WithTimeout(searchTimeout),
		fetch.WithRateLimit(cfg.Travel.RequestsPerMin, 2),
		fetch.WithLogger(fetchLogger),
	)
	visaFetcher := fetch.New(
		fetch.WithTimeout(visaTimeout),
		fetch.WithRateLimit(cfg.Travel.RequestsPerMin, 2),
		fetch.WithLogger(fetchLogger),
	)

	flights, err := travelapi.NewFlights(searchFetcher, cfg.Travel.TravelBaseURL, airports, creds.Login, logger)
	if err != nil {
		return nil, err
	}
	hotels, err := travelapi.NewHotels(searchFetcher, cfg.Travel.TravelBaseURL, creds.Login, logger)
	if err != nil {
		return nil, err
	}
	visas, err := travelapi.NewVisas(visaFetcher, cfg.Travel.VisaBaseURL, creds.VisaToken)
	if err != nil {
		return nil, err
	}

	router, err := dialogue.NewRouter(countries, llm, logger)
	if err != nil {
		return nil, err
	}
	flightFlow, err := dialogue.NewFlightDialogue(flights, dialogue.FlightOptions{
		KeepContextOnComplete: cfg.Chat.KeepFlightContext,
		LenientChildAges:      cfg.Chat.LenientChildAges,
	}, logger)
	if err != nil {
		return nil, err
	}
	hotelFlow, err := dialogue.NewHotelDialogue(cities, hotels, logger)
	if err != nil {
		return nil, err
	}
	visaFlow, err := dialogue.NewVisaDialogue(visas, llm, cfg.Chat.VisaDisclaimerText, logger)
	if err != nil {
		return nil, err
	}

	return usecase.NewChatService(usecase.ChatDeps{
		Store:  store,
		Router: router,
		Flight: flightFlow,
		Hotel:  hotelFlow,
		Visa:   visaFlow,
		LLM:    llm,
		Params: secrets,
		Logger: logger,
	}, usecase.ChatConfig{
		ParamPrefix:     cfg.Travel.ParamPrefix,
		MaxHistoryItems: cfg.Chat.MaxHistoryItems,
		MaxQuestionLen:  cfg.Chat.MaxQuestionLength,
	})
}
