package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"homesurvey/internal/common/camunda"
	"homesurvey/internal/common/config"
	"homesurvey/internal/common/logger"
	"homesurvey/internal/common/observability"
	"homesurvey/internal/envelope"
	"homesurvey/internal/imageref"
	"homesurvey/internal/storage"
	"homesurvey/pkg/registry"

	le "homesurvey/internal/workers/survey/load-envelope"
	nsr "homesurvey/internal/workers/survey/normalize-scan-result"
	pe "homesurvey/internal/workers/survey/persist-envelope"
	sr "homesurvey/internal/workers/survey/sanitize-report"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.WithError(err).Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// workerSettings merges the worker's config section with the registry:
// a worker without a section takes its timeout from the registry.
func workerSettings(cfg *config.Config, reg *registry.ActivityRegistry, taskType string) config.WorkerConfig {
	wcfg := config.GetWorkerConfig(cfg, taskType)
	if _, configured := cfg.Workers[taskType]; !configured {
		if activity, ok := reg.Find(taskType); ok {
			wcfg.Timeout = int(activity.TimeoutDuration(config.GetDuration(wcfg.Timeout)).Milliseconds())
		}
	}
	return wcfg
}

// buildHandlers creates one handler per task type.
func buildHandlers(cfg *config.Config, reg *registry.ActivityRegistry, store *envelope.Store, log logger.Logger) map[string]camunda.ContextHandler {
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(workerSettings(cfg, reg, taskType).Timeout)
	}

	persist := pe.NewHandler(&pe.Config{Timeout: timeout(pe.TaskType), RequireStored: true}, store, log)

	return map[string]camunda.ContextHandler{
		nsr.TaskType: nsr.NewHandler(&nsr.Config{Timeout: timeout(nsr.TaskType)}, store.Resolver(), log).HandleContext,
		sr.TaskType:  sr.NewHandler(&sr.Config{Timeout: timeout(sr.TaskType)}, log).HandleContext,
		pe.TaskType:  persist.HandleContext,
		le.TaskType:  le.NewHandler(&le.Config{Timeout: timeout(le.TaskType)}, store, log).HandleContext,
	}
}

func sortedTaskTypes(handlers map[string]camunda.ContextHandler) []string {
	types := make([]string, 0, len(handlers))
	for t := range handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}
	if err := config.ValidateForWorkers(cfg); err != nil {
		zap.NewExample().Fatal("invalid worker configuration", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting worker manager", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"storage":     cfg.Storage.Backend,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}

	ctx := context.Background()

	var backend storage.Storage
	var closeStorage func() error
	err = retryWithBackoff(func() error {
		var err error
		backend, closeStorage, err = storage.Open(ctx, cfg.Storage)
		return err
	}, 10, 2*time.Second, log, "storage connection")
	if err != nil {
		zapLog.Fatal("storage failed after retries", zap.Error(err))
	}
	defer closeStorage()

	store := envelope.NewStore(
		storage.NewScopedStore(backend, log),
		imageref.New(cfg.API.BaseURL),
		log,
	)

	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	handlers := buildHandlers(cfg, reg, store, log)
	var workers []*camunda.Worker
	for _, taskType := range sortedTaskTypes(handlers) {
		if _, ok := reg.Find(taskType); !ok {
			log.Warn("task type missing from activity registry", map[string]interface{}{"taskType": taskType})
		}
		handler := camunda.Instrument(obs, taskType, handlers[taskType])
		if w := camunda.StartWorker(zeebe.Zeebe(), taskType, workerSettings(cfg, reg, taskType), handler, log); w != nil {
			workers = append(workers, w)
		}
	}
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	var server *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			writeStatus(w, http.StatusOK, "healthy")
		})
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := zeebe.HealthCheck(r.Context()); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "not ready")
				return
			}
			writeStatus(w, http.StatusOK, "ready")
		})
		mux.Handle("/metrics", promhttp.Handler())

		server = &http.Server{Addr: cfg.Metrics.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("health/metrics server listening", map[string]interface{}{"address": cfg.Metrics.Address})
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("health/metrics server failed", nil)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("health/metrics server shutdown failed", nil)
		}
	}
	if err := zeebe.Close(); err != nil {
		log.WithError(err).Error("error closing Zeebe client", nil)
	}
	log.Info("worker manager stopped", nil)
}
