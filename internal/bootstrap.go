package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"section8-underwriter/internal/adapters/cache"
	"section8-underwriter/internal/adapters/census"
	"section8-underwriter/internal/adapters/hud"
	logger_adapter "section8-underwriter/internal/adapters/logger"
	postgres_adapter "section8-underwriter/internal/adapters/postgres"
	"section8-underwriter/internal/adapters/rentcast"
	"section8-underwriter/internal/adapters/zillow"
	"section8-underwriter/internal/configs"
	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"
	"section8-underwriter/internal/core/usecase"
	fluentlogger "section8-underwriter/pkg/fluent_logger"
	"section8-underwriter/pkg/postgres"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Options - параметры запуска из командной строки
type Options struct {
	EnvPath    string
	PolicyPath string
	// Workers переопределяет UNDERWRITE_WORKERS, 0 - из конфигурации
	Workers int
	// LogWriter - куда писать логи stdout-логгера. CLI передает stderr
	LogWriter io.Writer
}

// runtime - общие для всех команд ресурсы: конфигурация, логгеры, кэш, БД
type runtime struct {
	config     *configs.AppConfig
	params     domain.UnderwritingParams
	baseLogger port.LoggerPort
	logger     port.LoggerPort

	fluentClient *fluent.Fluent
	cache        port.CachePort
	redisCache   *cache.RedisCache
	dbPool       *pgxpool.Pool
}

func newRuntime(ctx context.Context, opts Options) (*runtime, error) {
	appConfig, err := configs.LoadConfig(opts.EnvPath)
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}
	if opts.Workers > 0 {
		appConfig.UnderwriteWorkers = opts.Workers
	}

	rt := &runtime{config: appConfig}

	// --- 1. ЛОГГЕРЫ ---
	if err := rt.initLoggers(opts.LogWriter); err != nil {
		return nil, err
	}

	// --- 2. ПОЛИТИКА АНДЕРРАЙТИНГА ---
	policyPath := opts.PolicyPath
	if policyPath == "" {
		policyPath = appConfig.UnderwritingPolicy
	}
	rt.params, err = configs.LoadUnderwritingParams(policyPath)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.logger.Info("Underwriting policy loaded", port.Fields{
		"path":          policyPath,
		"interest_rate": rt.params.InterestRate,
		"ps110":         rt.params.Use110PaymentStandard,
	})

	// --- 3. КЭШ ---
	if appConfig.Redis.Enabled {
		rt.redisCache, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     appConfig.Redis.Addr,
			Password: appConfig.Redis.Password,
			DB:       appConfig.Redis.DB,
		})
		if err != nil {
			rt.logger.Warn("Redis is unavailable, falling back to in-memory cache", port.Fields{"error": err.Error()})
		} else {
			rt.cache = rt.redisCache
			rt.logger.Info("Redis cache connected", port.Fields{"addr": appConfig.Redis.Addr})
		}
	}
	if rt.cache == nil {
		rt.cache = cache.NewMemoryCache()
	}

	return rt, nil
}

func (rt *runtime) initLoggers(w io.Writer) error {
	cfg := rt.config
	var activeLoggers []port.LoggerPort

	if cfg.StdoutLogger.Enabled {
		activeLoggers = append(activeLoggers, logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
			Writer:   w,
			Level:    parseLogLevel(cfg.StdoutLogger.Level),
			UseColor: cfg.StdoutLogger.UseColor,
		}))
	}

	if cfg.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     true,
		})
		if err != nil {
			return fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(cfg.FluentBit.Level))
		if err != nil {
			fluentClient.Close()
			return fmt.Errorf("failed to create fluentbit adapter: %w", err)
		}
		rt.fluentClient = fluentClient
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	var multiLogger port.LoggerPort = contextkeys.NoopLogger()
	if len(activeLoggers) > 0 {
		var err error
		multiLogger, err = logger_adapter.NewMultiloggerAdapter(activeLoggers...)
		if err != nil {
			return fmt.Errorf("failed to create multi-logger: %w", err)
		}
	}

	rt.baseLogger = multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	rt.logger = rt.baseLogger.WithFields(port.Fields{"component": "app"})
	rt.logger.Debug("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers),
		"fluent_enabled": cfg.FluentBit.Enabled,
	})
	return nil
}

// postgresPool подключается к PostgreSQL при первом обращении
func (rt *runtime) postgresPool(ctx context.Context) (*pgxpool.Pool, error) {
	if rt.dbPool != nil {
		return rt.dbPool, nil
	}
	pool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: rt.config.Database.URL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	rt.dbPool = pool
	rt.logger.Info("Successfully connected to PostgreSQL pool", nil)
	return pool, nil
}

// rentTable выбирает хранилище таблицы SAFMR: Postgres, если задан DATABASE_URL,
// иначе таблица в памяти, загруженная из книги HUD при старте
func (rt *runtime) rentTable(ctx context.Context) (port.RentTableProviderPort, error) {
	cfg := rt.config
	ctx = contextkeys.ContextWithLogger(ctx, rt.baseLogger)

	if cfg.Database.URL != "" {
		pool, err := rt.postgresPool(ctx)
		if err != nil {
			return nil, err
		}
		repo, err := postgres_adapter.NewRentTableRepository(pool)
		if err != nil {
			return nil, fmt.Errorf("failed to create rent table repository: %w", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		count, err := repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			rt.logger.Warn("Rent table is empty, every zip will use fallback rents. Run import-safmr", nil)
		}
		rt.logger.Info("Using PostgreSQL rent table", port.Fields{"rows": count})
		return cache.NewRentTableProvider(repo, rt.cache, cfg.Cache.RentTTL), nil
	}

	table := hud.NewMemoryRentTable()
	source := cache.NewRentTableSource(hud.NewSAFMRSource(cfg.Providers.SAFMRURL, cfg.Providers.UserAgent), rt.cache, cfg.Cache.RentTTL)
	loaded, err := usecase.NewImportRentTableUseCase(source, table).Execute(ctx)
	if err != nil {
		rt.logger.Warn("Could not load SAFMR workbook, every zip will use fallback rents", port.Fields{
			"url":   cfg.Providers.SAFMRURL,
			"error": err.Error(),
		})
	} else {
		rt.logger.Info("Using in-memory rent table", port.Fields{"rows": loaded})
	}
	return table, nil
}

// newUnderwriter собирает конвейер андеррайтинга со всеми провайдерами
func (rt *runtime) newUnderwriter(ctx context.Context, metrics port.MetricsPort) (*usecase.UnderwriteBatchUseCase, *usecase.QuoteRentUseCase, error) {
	cfg := rt.config

	rentTable, err := rt.rentTable(ctx)
	if err != nil {
		return nil, nil, err
	}

	censusClient := census.NewClient(census.Config{
		BaseURL: cfg.Providers.CensusURL,
		Year:    cfg.Providers.CensusYear,
		APIKey:  cfg.Providers.CensusAPIKey,
		Timeout: cfg.Providers.HTTPTimeout,
	})
	market := cache.NewMarketStatsProvider(censusClient, rt.cache, cfg.Cache.MarketTTL)

	var listings port.ListingSearchPort
	if cfg.Providers.ZillowEnabled {
		geocoder := zillow.NewGeocoder(cfg.Providers.NominatimURL, cfg.Providers.UserAgent, cfg.Providers.HTTPTimeout)
		search := zillow.NewSearchClient(zillow.Config{
			BaseURL:  cfg.Providers.ZillowURL,
			Timeout:  cfg.Providers.HTTPTimeout,
			CacheTTL: cfg.Cache.ListingTTL,
		}, geocoder, rt.cache)
		listings = cache.NewListingSearch(search, rt.cache, cfg.Cache.ListingTTL)
	}

	var descriptions port.DescriptionProviderPort
	if strings.TrimSpace(cfg.Providers.RentcastAPIKey) != "" {
		rc, err := rentcast.NewClient(rentcast.Config{
			BaseURL: cfg.Providers.RentcastURL,
			APIKey:  cfg.Providers.RentcastAPIKey,
			RPS:     cfg.Providers.RentcastRPS,
			Timeout: cfg.Providers.HTTPTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		descriptions = cache.NewDescriptionProvider(rc, rt.cache, cfg.Cache.DescriptionTTL)
	}

	rt.logger.Info("Providers initialized", port.Fields{
		"zillow":   listings != nil,
		"rentcast": descriptions != nil,
		"workers":  cfg.UnderwriteWorkers,
	})

	property := usecase.NewUnderwritePropertyUseCase(rentTable, market, listings, descriptions, rentcast.SourceName, metrics)
	batch := usecase.NewUnderwriteBatchUseCase(property, cfg.UnderwriteWorkers, metrics)
	quote := usecase.NewQuoteRentUseCase(rentTable)
	return batch, quote, nil
}

func (rt *runtime) close() {
	if rt.dbPool != nil {
		rt.dbPool.Close()
		rt.logger.Info("PostgreSQL pool closed", nil)
	}
	if rt.redisCache != nil {
		if err := rt.redisCache.Close(); err != nil {
			rt.logger.Error("Error closing redis client", err, nil)
		}
	}
	if rt.fluentClient != nil {
		rt.logger.Info("Closing Fluent Bit client", nil)
		if err := rt.fluentClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
