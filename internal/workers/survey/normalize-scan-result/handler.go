package normalizescanresult

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
	"homesurvey/internal/imageref"
	"homesurvey/internal/models"
)

const TaskType = "normalize-scan-result"

// Handler turns a raw model reply into the structured result, the classic
// case when the reply carries one, and the dashboard report. Nothing is
// persisted.
type Handler struct {
	config   *Config
	resolver *imageref.Resolver
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, resolver *imageref.Resolver, log logger.Logger) *Handler {
	if resolver == nil {
		resolver = imageref.New("")
	}
	return &Handler{
		config:   config,
		resolver: resolver,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
	raws := input.Raws
	if input.RawText != "" {
		raws = append([]string{input.RawText}, raws...)
	}
	env := &models.Envelope{
		Raws:         raws,
		Results:      input.Results,
		Property:     input.Property,
		PreviewImage: input.PreviewImage,
	}
	if env.RawText() == "" {
		return nil, apperrors.NewEmptyScanResultError()
	}

	a := envelope.Analyze(h.resolver, env, "")
	if a.Structured == nil && a.Classic == nil {
		return nil, apperrors.NewEmptyScanResultError()
	}

	h.logger.Debug("scan result normalized", map[string]interface{}{
		"classic":  a.Classic != nil,
		"risk":     a.Report.Verdict.Risk,
		"hasImage": len(a.Images) > 0,
	})
	return &Output{
		Structured: a.Structured,
		Classic:    a.Classic,
		Report:     a.Report,
		Images:     a.Images,
	}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.AsStandardError(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}
