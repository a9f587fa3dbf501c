package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/meetingverify/internal/application"
	"github.com/example/meetingverify/internal/config"
	"github.com/example/meetingverify/internal/constraint"
	httptransport "github.com/example/meetingverify/internal/http"
	"github.com/example/meetingverify/internal/monitor"
	"github.com/example/meetingverify/internal/persistence/adapter"
	"github.com/example/meetingverify/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	idGenerator := func() string { return uuid.New().String() }
	now := time.Now

	rooms := adapter.NewRoomRepository(sqlite.NewRoomRepository(pool))
	participants := adapter.NewParticipantRepository(sqlite.NewParticipantRepository(pool))
	meetings := adapter.NewMeetingRepository(sqlite.NewMeetingRepository(pool))

	backend := constraint.NewBackend(cfg.SolverTimeout)
	backend.SetEnabled(cfg.Z3SolverEnabled)

	mon := monitor.New(now)

	roomService := application.NewRoomServiceWithLogger(rooms, idGenerator, now, logger)
	participantService := application.NewParticipantServiceWithLogger(participants, idGenerator, now, logger)
	schedulingService := application.NewSchedulingServiceWithLogger(meetings, rooms, participants, backend, mon, idGenerator, now, logger)
	schedulingService.SetAvailabilityIncrement(time.Duration(cfg.AvailabilitySlotIncrementMinutes) * time.Minute)

	roomHandler := httptransport.NewRoomHandler(roomService, logger)
	participantHandler := httptransport.NewParticipantHandler(participantService, logger)
	meetingHandler := httptransport.NewMeetingHandler(schedulingService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Meetings:     meetingHandler,
		Rooms:        roomHandler,
		Participants: participantHandler,
		Middleware:   []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("meeting verification core listening", "addr", server.Addr, "z3_solver_enabled", cfg.Z3SolverEnabled)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
