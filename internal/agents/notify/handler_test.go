package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helpers
// ==========================

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO: %s %v", msg, fields) }
func (l *TestLogger) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN: %s %v", msg, fields) }
func (l *TestLogger) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR: %s %v", msg, fields) }
func (l *TestLogger) With(fields map[string]interface{}) Logger       { return l }

type fakeSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	return &ses.SendEmailOutput{}, f.err
}

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sns.PublishOutput{}, f.err
}

func testInput() *Input {
	return &Input{
		TicketNumber:     "INC0010042",
		TicketURL:        "https://dev12345.service-now.com/nav_to.do?uri=incident.do?sys_id=abc",
		ShortDescription: "VPN down",
		Urgency:          "2",
		RecipientEmail:   "jdoe@example.com",
		RecipientPhone:   "+447700900123",
	}
}

func testConfig() *Config {
	return &Config{
		EmailEnabled:     true,
		SMSEnabled:       true,
		FromEmail:        "helpdesk@example.com",
		UrgencyThreshold: "1",
	}
}

// ==========================
// Execute Tests
// ==========================

func TestExecuteSendsConfirmationEmail(t *testing.T) {
	sesFake := &fakeSES{}
	snsFake := &fakeSNS{}
	handler := NewHandler(testConfig(), sesFake, snsFake, &TestLogger{t})

	output := handler.Execute(context.Background(), testInput())

	assert.Equal(t, StatusSent, output.Status)
	assert.NotEmpty(t, output.NotificationID)
	assert.Len(t, sesFake.inputs, 1)

	email := sesFake.inputs[0]
	assert.Equal(t, "helpdesk@example.com", *email.Source)
	assert.Equal(t, []string{"jdoe@example.com"}, email.Destination.ToAddresses)
	assert.Contains(t, *email.Message.Subject.Data, "INC0010042")
	assert.Contains(t, *email.Message.Body.Text.Data, "nav_to.do")
}

func TestExecuteSkipsSMSBelowThreshold(t *testing.T) {
	sesFake := &fakeSES{}
	snsFake := &fakeSNS{}
	handler := NewHandler(testConfig(), sesFake, snsFake, &TestLogger{t})

	input := testInput()
	input.Urgency = "2"
	handler.Execute(context.Background(), input)

	assert.Empty(t, snsFake.inputs)
}

func TestExecuteSendsSMSForUrgentTicket(t *testing.T) {
	sesFake := &fakeSES{}
	snsFake := &fakeSNS{}
	handler := NewHandler(testConfig(), sesFake, snsFake, &TestLogger{t})

	input := testInput()
	input.Urgency = "1"
	output := handler.Execute(context.Background(), input)

	assert.Equal(t, StatusSent, output.Status)
	assert.Len(t, snsFake.inputs, 1)
	assert.Equal(t, "+447700900123", *snsFake.inputs[0].PhoneNumber)
	assert.Contains(t, *snsFake.inputs[0].Message, "Urgent ticket INC0010042")
}

func TestExecuteReportsFailureStatus(t *testing.T) {
	sesFake := &fakeSES{err: errors.New("ses throttled")}
	handler := NewHandler(testConfig(), sesFake, &fakeSNS{}, &TestLogger{t})

	output := handler.Execute(context.Background(), testInput())

	assert.Equal(t, StatusFailed, output.Status)
}

func TestExecuteDisabledChannels(t *testing.T) {
	sesFake := &fakeSES{}
	snsFake := &fakeSNS{}
	handler := NewHandler(&Config{}, sesFake, snsFake, &TestLogger{t})

	output := handler.Execute(context.Background(), testInput())

	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, sesFake.inputs)
	assert.Empty(t, snsFake.inputs)
}

func TestExecuteNoRecipientEmail(t *testing.T) {
	sesFake := &fakeSES{}
	handler := NewHandler(testConfig(), sesFake, &fakeSNS{}, &TestLogger{t})

	input := testInput()
	input.RecipientEmail = ""
	input.Urgency = "1"
	output := handler.Execute(context.Background(), input)

	assert.Empty(t, sesFake.inputs)
	assert.Equal(t, StatusSent, output.Status)
}
