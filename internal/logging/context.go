package logging

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every record logged with the carrying context.
type LogFields struct {
	RequestID string
	QueryHash string
	RunID     string // ingestion run
	Component string // e.g. "rag.orchestrator"
}

// WithLogFields merges fields into ctx; non-empty new values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := GetLogFields(ctx)
	if fields.RequestID != "" {
		merged.RequestID = fields.RequestID
	}
	if fields.QueryHash != "" {
		merged.QueryHash = fields.QueryHash
	}
	if fields.RunID != "" {
		merged.RunID = fields.RunID
	}
	if fields.Component != "" {
		merged.Component = fields.Component
	}
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}
