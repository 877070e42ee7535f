package synth

import "medrag/internal/providers"

// Outcome is the result of one LLM enhancement attempt. A SoftFailure is not
// an error: the caller falls back to the structured rendering.
type Outcome struct {
	OK         bool
	Text       string
	Reason     string
	ErrorClass providers.ErrorType
	Provider   providers.ProviderInfo
	StatusCode int
}

func Success(text string, info providers.ProviderInfo) Outcome {
	return Outcome{OK: true, Text: text, Provider: info, StatusCode: 200}
}

func SoftFailure(reason string) Outcome {
	return Outcome{Reason: reason}
}

func (o Outcome) Label() string {
	if o.OK {
		return "success"
	}
	return o.Reason
}
