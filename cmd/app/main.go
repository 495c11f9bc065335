package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"agenda-service/internal/config"
	attendanceCreate "agenda-service/internal/http-server/handlers/attendance/create"
	attendanceGet "agenda-service/internal/http-server/handlers/attendance/get"
	bookingCancel "agenda-service/internal/http-server/handlers/bookings/cancel"
	bookingConfirm "agenda-service/internal/http-server/handlers/bookings/confirm"
	bookingCreate "agenda-service/internal/http-server/handlers/bookings/create"
	bookingDelete "agenda-service/internal/http-server/handlers/bookings/delete"
	bookingEvaluate "agenda-service/internal/http-server/handlers/bookings/evaluate"
	bookingGet "agenda-service/internal/http-server/handlers/bookings/get"
	bookingReschedule "agenda-service/internal/http-server/handlers/bookings/reschedule"
	closureCreate "agenda-service/internal/http-server/handlers/closures/create"
	closureDelete "agenda-service/internal/http-server/handlers/closures/delete"
	closureGet "agenda-service/internal/http-server/handlers/closures/get"
	closureUpdate "agenda-service/internal/http-server/handlers/closures/update"
	eligibilityGet "agenda-service/internal/http-server/handlers/eligibility/get"
	eligibilitySet "agenda-service/internal/http-server/handlers/eligibility/set"
	patientAppointments "agenda-service/internal/http-server/handlers/patients/appointments"
	rulesGet "agenda-service/internal/http-server/handlers/rules/get"
	rulesUpdate "agenda-service/internal/http-server/handlers/rules/update"
	slotsGenerate "agenda-service/internal/http-server/handlers/slots/generate"
	slotsGet "agenda-service/internal/http-server/handlers/slots/get"
	templateCreate "agenda-service/internal/http-server/handlers/templates/create"
	templateDelete "agenda-service/internal/http-server/handlers/templates/delete"
	templateGet "agenda-service/internal/http-server/handlers/templates/get"
	templateUpdate "agenda-service/internal/http-server/handlers/templates/update"
	"agenda-service/internal/lock"
	"agenda-service/internal/service"
	"agenda-service/internal/storage/postgres"
	slogpretty "agenda-service/pkg/handlers/slogPretty"
	mwLogger "agenda-service/pkg/middleware/mwLogger"
	"agenda-service/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting agenda-service", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	svc := service.NewService(storage, locker)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Route("/templates", func(r chi.Router) {
		r.Post("/", templateCreate.New(log, svc))
		r.Get("/", templateGet.NewList(log, svc))
		r.Get("/{id}", templateGet.New(log, svc))
		r.Put("/{id}", templateUpdate.New(log, svc))
		r.Delete("/{id}", templateDelete.New(log, svc))
	})

	router.Route("/doctors/{doctorID}", func(r chi.Router) {
		r.Get("/rules", rulesGet.New(log, svc))
		r.Put("/rules", rulesUpdate.New(log, svc))
		r.Get("/eligibility", eligibilityGet.New(log, svc))
		r.Put("/eligibility", eligibilitySet.New(log, svc))
	})

	router.Route("/slots", func(r chi.Router) {
		r.Post("/generate", slotsGenerate.New(log, svc))
		r.Get("/", slotsGet.New(log, svc))
	})

	router.Route("/bookings", func(r chi.Router) {
		r.Post("/", bookingCreate.New(log, svc))
		r.Post("/evaluate", bookingEvaluate.New(log, svc))
		r.Get("/", bookingGet.NewList(log, svc))
		r.Get("/{id}", bookingGet.New(log, svc))
		r.Post("/{id}/cancel", bookingCancel.New(log, svc))
		r.Post("/{id}/confirm", bookingConfirm.New(log, svc))
		r.Post("/{id}/reschedule", bookingReschedule.New(log, svc))
		r.Delete("/{id}", bookingDelete.New(log, svc))
	})

	router.Route("/closures", func(r chi.Router) {
		r.Post("/", closureCreate.New(log, svc))
		r.Get("/", closureGet.NewList(log, svc))
		r.Get("/{id}", closureGet.New(log, svc))
		r.Put("/{id}", closureUpdate.New(log, svc))
		r.Delete("/{id}", closureDelete.New(log, svc))
	})

	router.Route("/attendance", func(r chi.Router) {
		r.Post("/", attendanceCreate.New(log, svc))
		r.Get("/", attendanceGet.NewList(log, svc))
		r.Get("/{id}", attendanceGet.New(log, svc))
	})

	router.Get("/patients/{patientID}/appointments", patientAppointments.New(log, svc))

	log.Info("starting server", slog.String("address", cfg.Address))

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", sl.Err(err))
		}
	}()

	log.Info("server started")

	<-done
	log.Info("stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("failed to stop server", sl.Err(err))
		return
	}

	if err := locker.Close(); err != nil {
		log.Error("failed to close redis client", sl.Err(err))
	}
	if err := storage.Close(); err != nil {
		log.Error("failed to close storage", sl.Err(err))
	}

	log.Info("server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
