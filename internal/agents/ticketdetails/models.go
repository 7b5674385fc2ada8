package ticketdetails

// Field names of the ticket draft.
const (
	FieldShortDescription = "short_description"
	FieldDescription      = "description"
	FieldImpact           = "impact"
	FieldUrgency          = "urgency"
)

// RequiredFields in prompt order.
var RequiredFields = []string{
	FieldShortDescription,
	FieldDescription,
	FieldImpact,
	FieldUrgency,
}
