package sanitizereport

import (
	"context"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"homesurvey/internal/common/camunda"
	apperrors "homesurvey/internal/common/errors"
	"homesurvey/internal/common/logger"
	"homesurvey/internal/common/metrics"
	"homesurvey/internal/models"
	"homesurvey/internal/survey"
)

const TaskType = "sanitize-report"

type Handler struct {
	config *Config
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	var report models.ReportData
	switch {
	case strings.TrimSpace(input.ReportJSON) != "":
		parsed, err := survey.ParseReportJSON([]byte(input.ReportJSON))
		if err != nil {
			return nil, apperrors.NewReportParseFailedError(err)
		}
		report = parsed
	case input.Report != nil:
		report = survey.SanitizeReportData(input.Report)
	default:
		return nil, apperrors.NewInvalidInputError("reportJson or report is required")
	}

	result, err := survey.ValidateCase(report)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	messages := result.GetErrorMessages()
	if !result.Valid {
		h.logger.Warn("report is not dashboard ready", map[string]interface{}{
			"errors": messages,
		})
		if h.config.RejectInvalid {
			return nil, apperrors.NewReportInvalidError(strings.Join(messages, "; "))
		}
	}

	return &Output{
		Report:           report,
		Valid:            result.Valid,
		ValidationErrors: messages,
	}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.AsStandardError(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}
