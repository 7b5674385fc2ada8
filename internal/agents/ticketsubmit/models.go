package ticketsubmit

// Incident references the record created in the external ticketing system.
type Incident struct {
	Number         string `json:"number"`
	SysID          string `json:"sysId"`
	URL            string `json:"url"`
	IdempotencyTag string `json:"idempotencyTag"`
}

// SubmitOptions carries the optional routing fields of a submission.
type SubmitOptions struct {
	Caller          string
	AssignmentGroup string
	Category        string
}
