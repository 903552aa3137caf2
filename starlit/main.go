package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starlit/starlit/config"
	"starlit/starlit/controllers"
	"starlit/starlit/realtime"
	"starlit/starlit/routes"
	"starlit/starlit/services/llm"
	"starlit/starlit/sources/psql"
	"starlit/starlit/sources/psql/dao"
	"starlit/starlit/sources/storage"
	"starlit/starlit/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	userDAO := dao.NewUserDAO(db.DB)
	exchangeDAO := dao.NewExchangeDAO(db.DB)
	registry := realtime.NewRegistry()
	gateway := llm.NewClient(cfg.AIServiceURL)

	authCtrl := controllers.NewAuthController(userDAO, cfg)
	chatCtrl := controllers.NewChatController(gateway, exchangeDAO, registry)
	healthCtrl := controllers.NewHealthController()

	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		logging.ErrorLogger.Error("minio connection error", zap.Error(err))
		os.Exit(1)
	}
	kbCtrl := controllers.NewKBController(minioClient)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// No router-wide Timeout: /chat/ws holds its socket open for the life
	// of the subscription. Request/response routes get their deadline here,
	// the chat routes apply it internally to everything but the socket.
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Timeout(60 * time.Second))
		gr.Mount("/auth", routes.AuthRoutes(authCtrl))
		gr.Mount("/kb", routes.KBRoutes(kbCtrl, cfg))
		gr.Mount("/health", routes.HealthRoutes(healthCtrl))
	})
	r.Mount("/chat", routes.ChatRoutes(chatCtrl, registry, cfg))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	registry.Teardown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
