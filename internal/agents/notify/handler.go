package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config    *Config
	sesClient SESService
	snsClient SNSService
	logger    Logger
}

func NewHandler(config *Config, sesClient SESService, snsClient SNSService, log Logger) *Handler {
	return &Handler{
		config:    config,
		sesClient: sesClient,
		snsClient: snsClient,
		logger: log.With(map[string]interface{}{
			"agent": "notify",
		}),
	}
}

// Execute sends a confirmation email for a created ticket and, when the
// urgency meets the configured threshold, an SMS alert. Send failures are
// reported in the output status, never as errors; notifications are
// best-effort and must not fail the ticket flow.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	sentAt := time.Now().UTC().Format(time.RFC3339)
	notificationID := uuid.New().String()

	emailSent := false
	smsSent := false

	if h.config.EmailEnabled && input.RecipientEmail != "" {
		if err := h.sendEmail(ctx, input); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":  err.Error(),
				"ticket": input.TicketNumber,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}
		}
		emailSent = true
	}

	if h.config.SMSEnabled && input.RecipientPhone != "" && h.isUrgent(input.Urgency) {
		if err := h.sendSMS(ctx, input); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":  err.Error(),
				"ticket": input.TicketNumber,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}
		}
		smsSent = true
	}

	status := StatusDisabled
	if emailSent || smsSent {
		status = StatusSent
	}

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		SentAt:         sentAt,
	}
}

// isUrgent compares level strings; "1" is the most urgent so lower-or-equal
// means at least as urgent as the threshold.
func (h *Handler) isUrgent(urgency string) bool {
	return urgency != "" && urgency <= h.config.UrgencyThreshold
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) error {
	subject := fmt.Sprintf("Ticket %s created: %s", input.TicketNumber, input.ShortDescription)
	body := fmt.Sprintf("Your support ticket %s has been created.\n\nSummary: %s\nTrack it here: %s",
		input.TicketNumber, input.ShortDescription, input.TicketURL)

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{input.RecipientEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, input *Input) error {
	message := fmt.Sprintf("Urgent ticket %s created: %s", input.TicketNumber, input.ShortDescription)
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(input.RecipientPhone),
		Message:     aws.String(message),
	})
	return err
}
