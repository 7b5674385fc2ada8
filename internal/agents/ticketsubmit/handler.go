package ticketsubmit

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"helpdesk-assistant/internal/common/config"
	"helpdesk-assistant/internal/common/errors"
	"helpdesk-assistant/internal/common/metrics"
	"helpdesk-assistant/internal/common/servicenow"
)

// IncidentCreator is the slice of the ticketing client the submitter needs.
type IncidentCreator interface {
	CreateIncident(ctx context.Context, payload *servicenow.IncidentPayload) (*servicenow.IncidentRecord, error)
	IncidentURL(sysID string) string
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config   *Config
	snConfig config.ServiceNowConfig
	client   IncidentCreator
	logger   Logger
	sleep    func(time.Duration)
}

func NewHandler(cfg *Config, snConfig config.ServiceNowConfig, client IncidentCreator, log Logger) *Handler {
	return &Handler{
		config:   cfg,
		snConfig: snConfig,
		client:   client,
		logger: log.With(map[string]interface{}{
			"agent": "ticket-submit",
		}),
		sleep: time.Sleep,
	}
}

// Submit redacts the draft, tags it for deduplication and creates the
// incident, retrying up to the attempt cap on failure. A draft with missing
// required fields and unconfigured credentials both fail before any network
// call is made.
func (h *Handler) Submit(ctx context.Context, draft map[string]string, opts SubmitOptions) (*Incident, error) {
	if !h.snConfig.Configured() {
		metrics.TicketsSubmitted.WithLabelValues("missing_credentials").Inc()
		return nil, errors.NewTicketCredentialsMissingError()
	}

	shortDescription := draft["short_description"]
	description := draft["description"]
	if shortDescription == "" || description == "" {
		return nil, errors.NewTicketValidationFailedError("short_description and description are required")
	}

	impact := draft["impact"]
	if impact == "" {
		impact = "3"
	}
	urgency := draft["urgency"]
	if urgency == "" {
		urgency = "3"
	}

	redactedShort := Redact(shortDescription)
	redactedDescription := Redact(description)

	tag := Tag(opts.Caller, redactedShort)
	redactedDescription += fmt.Sprintf("\n\n[idempotency:%s]", tag)

	payload := &servicenow.IncidentPayload{
		ShortDescription: redactedShort,
		Description:      redactedDescription,
		Urgency:          urgency,
		Impact:           impact,
		CallerID:         opts.Caller,
		AssignmentGroup:  opts.AssignmentGroup,
		Category:         opts.Category,
	}

	var lastErr error
	for attempt := 1; attempt <= h.config.MaxAttempts; attempt++ {
		record, err := h.client.CreateIncident(ctx, payload)
		if err == nil {
			metrics.TicketsSubmitted.WithLabelValues("success").Inc()
			metrics.SubmissionAttempts.Observe(float64(attempt))

			h.logger.Info("incident created", map[string]interface{}{
				"number":  record.Number,
				"sysId":   record.SysID,
				"attempt": attempt,
			})

			return &Incident{
				Number:         record.Number,
				SysID:          record.SysID,
				URL:            h.client.IncidentURL(record.SysID),
				IdempotencyTag: tag,
			}, nil
		}

		lastErr = err
		h.logger.Warn("incident creation attempt failed", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})

		if attempt < h.config.MaxAttempts {
			h.sleep(h.backoff(err, attempt))
		}
	}

	metrics.TicketsSubmitted.WithLabelValues("failure").Inc()
	metrics.SubmissionAttempts.Observe(float64(h.config.MaxAttempts))

	return nil, errors.NewTicketSubmitFailedError(lastErr)
}

// backoff scales linearly with the attempt number. Transient server-side
// statuses wait longer than other failures before the next try.
func (h *Handler) backoff(err error, attempt int) time.Duration {
	factor := 1.0
	var statusErr *servicenow.StatusError
	if stderrors.As(err, &statusErr) && statusErr.Transient() {
		factor = 1.5
	}
	return time.Duration(factor * float64(attempt) * float64(h.config.BackoffUnit))
}
