package standingsevents

// FailureCode classifies a failure payload so transports can map it.
type FailureCode string

const (
	FailureInvalid  FailureCode = "invalid"
	FailureNotFound FailureCode = "not_found"
)
