package notify

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

type Input struct {
	TicketNumber     string `json:"ticketNumber"`
	TicketURL        string `json:"ticketUrl"`
	ShortDescription string `json:"shortDescription"`
	Urgency          string `json:"urgency"`
	RecipientEmail   string `json:"recipientEmail"`
	RecipientPhone   string `json:"recipientPhone"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	SentAt         string `json:"sentAt"`
}
