package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dataprep/internal/dispatch"
	"dataprep/internal/http/handlers"
	httpapi "dataprep/internal/http/httpapi"
	"dataprep/internal/infra"
	"dataprep/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Tasks run under this context; it is cancelled only on shutdown.
	baseCtx, cancelTasks := context.WithCancel(context.Background())
	defer cancelTasks()

	svc, err := service.New(baseCtx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to build pipeline")
	}
	defer svc.Close()

	dispatcher := dispatch.New(baseCtx, svc.Expander, svc.Executor, logger)
	app := handlers.NewApp(dispatcher, svc.Registry, logger)
	router := httpapi.NewRouter(app, httpapi.Options{SubmitRateLimit: cfg.SubmitRateLimit})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("api: listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("api: http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: failed to shutdown server")
	}

	cancelTasks()
	dispatcher.Wait()
	logger.Info().Msg("api: stopped")
}
