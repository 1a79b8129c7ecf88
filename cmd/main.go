package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"akabo/internal/adapters"
	"akabo/internal/bootstrap"
	authDelivery "akabo/internal/delivery/auth"
	gameDelivery "akabo/internal/delivery/game"
	matchDelivery "akabo/internal/delivery/matchmaking"
	repo "akabo/internal/repository"
	authUC "akabo/internal/usecase/auth"
	gameUC "akabo/internal/usecase/game"
	matchUC "akabo/internal/usecase/matchmaking"
)

type mainDeliveryHandler struct {
	matchmaking *matchDelivery.MatchmakingHandler
	game        *gameDelivery.GameHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()

	// .env is optional; the environment and defaults cover everything.
	_ = godotenv.Load()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Fatal("Failed to setup configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.mongoAdapter.Close(ctx)
	defer databaseAdapters.redisAdapter.Close(ctx)

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, databaseAdapters)
	handlers.Router(r)

	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: r,
	}

	go handleShutdown(server, cancel, logger)

	logger.Infof("Server is running on %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux) {
	r.Use(middleware.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/matchmaking", h.matchmaking.HandleCreateTicket)
		r.Get("/matchmaking", h.matchmaking.HandlePollTicket)
		r.Delete("/matchmaking", h.matchmaking.HandleDeleteTicket)

		r.Get("/game/{uuid}", h.game.HandlePollGame)
		r.Post("/game/{uuid}/move", h.game.HandleMakeMove)
		r.Post("/game/{uuid}/forfeit", h.game.HandleForfeitGame)
	})
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(cfg)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize MongoDB", zap.Error(err))
	}

	redisAdapter := adapters.NewAdapterRedis(cfg)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	log.Info("Database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	databaseAdapters *dataBaseAdapters,
) *mainDeliveryHandler {
	users := repo.NewMongoUserStorage(databaseAdapters.mongoAdapter, log)
	tickets := repo.NewMongoTicketStorage(databaseAdapters.mongoAdapter, log)
	games := repo.NewMongoGameStorage(databaseAdapters.mongoAdapter, log)
	locks := repo.NewRedisLocker(databaseAdapters.redisAdapter.GetClient(), log, cfg.LockTTL)
	sessions := repo.NewSessionRedisStorage(databaseAdapters.redisAdapter.GetClient(), log)

	authUsecase := authUC.NewAuthUsecaseHandler(sessions)
	authHandler := authDelivery.NewAuthHandler(cfg, log, authUsecase)

	gameUsecase := gameUC.NewGameUseCase(cfg, log, games, users, locks)
	matchUsecase := matchUC.NewMatchmakingUseCase(cfg, log, tickets, users, gameUsecase, locks)

	return &mainDeliveryHandler{
		matchmaking: matchDelivery.NewMatchmakingHandler(cfg, log, matchUsecase, authHandler),
		game:        gameDelivery.NewGameHandler(cfg, log, gameUsecase, authHandler),
	}
}

func handleShutdown(server *http.Server, cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	cancelFunc()
}
