package loadenvelope

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"homesurvey/internal/common/camunda"
	apperrors "homesurvey/internal/common/errors"
	"homesurvey/internal/common/logger"
	"homesurvey/internal/common/metrics"
	"homesurvey/internal/envelope"
	"homesurvey/internal/storage"
)

const TaskType = "load-envelope"

// Handler reads back the last envelope of a user and rebuilds its report.
// It never writes.
type Handler struct {
	config *Config
	store  *envelope.Store
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, store *envelope.Store, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
		errors: apperrors.NewErrorHandler(log),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.HandleContext(context.Background(), client, job)
}

// HandleContext processes one job under parent, which usually carries the
// job span.
func (h *Handler) HandleContext(parent context.Context, client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(parent, h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.GetKey(),
		"workflowKey": job.GetProcessInstanceKey(),
	})

	var input Input
	if err := camunda.ParseInput(job, inputSchema, &input); err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	if err := camunda.Complete(ctx, client, job, output); err != nil {
		h.logger.WithError(err).Error("failed to complete job", map[string]interface{}{"jobKey": job.GetKey()})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := storage.ResolveUserID(input.UserID, input.User)

	env, status := h.store.Lookup(ctx, userID)
	out := &Output{
		UserID:    userID,
		Found:     status == envelope.LoadFound,
		Discarded: status == envelope.LoadDiscarded,
	}
	if !out.Found {
		if h.config.RequireEnvelope {
			return nil, apperrors.NewEnvelopeNotFoundError(userID)
		}
		return out, nil
	}

	a := envelope.Analyze(h.store.Resolver(), env, "")
	out.Envelope = env
	out.Report = &a.Report
	out.Images = a.Images
	return out, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.AsStandardError(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}
