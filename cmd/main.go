package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"rawlogin/internal/app/auth/config"
	"rawlogin/internal/app/auth/handler"
	"rawlogin/internal/app/auth/repository"
	"rawlogin/internal/app/auth/service"
	"rawlogin/internal/app/auth/util"
	"rawlogin/pkg/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		logger.Init("rawlogin", "info")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init("rawlogin", cfg.Log.Level)

	// Подключаемся к базе данных PostgreSQL
	db, err := connectDB(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	logger.Info().Msg("Successfully connected to PostgreSQL database")

	// Инициализируем репозитории
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)

	// Хранилище черного списка токенов выбирается конфигурацией:
	// Redis (TTL чистит записи сам) или PostgreSQL (чистим по расписанию)
	var (
		tokenRepo   repository.TokenRepository
		redisClient *redis.Client
		sweeper     *cron.Cron
	)

	switch cfg.JWT.TokenStore {
	case "redis":
		redisClient = connectRedis(cfg.Redis)
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		cancel()

		logger.Info().Msg("Successfully connected to Redis")
		tokenRepo = repository.NewRedisTokenRepository(redisClient)

	case "postgres":
		pgTokenRepo := repository.NewTokenRepository(db)
		tokenRepo = pgTokenRepo

		// Периодическая очистка истекших записей черного списка
		sweeper = cron.New()
		_, err := sweeper.AddFunc(cfg.JWT.CleanupInterval, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := pgTokenRepo.CleanupExpiredTokens(ctx); err != nil {
				logger.Error().Err(err).Msg("Failed to cleanup expired tokens")
			}
		})
		if err != nil {
			logger.Fatal().Err(err).Str("schedule", cfg.JWT.CleanupInterval).Msg("Invalid token cleanup schedule")
		}
		sweeper.Start()
		defer sweeper.Stop()

		logger.Info().Str("schedule", cfg.JWT.CleanupInterval).Msg("Token cleanup scheduler started")
	}

	// Kafka producer для событий аудита (опционально)
	var publisher service.MessagePublisher
	if cfg.Kafka.Enabled {
		producer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer

		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("Kafka producer initialized")
	}

	// Инициализируем JWT менеджер
	jwtManager := util.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.TokenDuration)

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, roleRepo, tokenRepo, jwtManager, publisher)
	userService := service.NewUserService(userRepo, roleRepo, publisher)
	roleService := service.NewRoleService(roleRepo, publisher)
	resolver := service.NewPermissionResolver(roleRepo)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService, resolver)
	authMiddleware := handler.NewAuthMiddleware(authService, resolver, roleRepo)

	// Настраиваем маршруты
	router := handler.SetupRoutes(authHandler, userHandler, roleHandler, authMiddleware)

	// Создаем HTTP сервер
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Ожидаем сигнала завершения (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Даем серверу 30 секунд на завершение текущих запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL используя pgx connection pool
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}

	// Настройки пула для production
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// Пробуем подключиться с повторными попытками
	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	if err != nil {
		return nil, err
	}

	return pool, nil
}

// connectRedis создает и настраивает Redis клиент
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}
