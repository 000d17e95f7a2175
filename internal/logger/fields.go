package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the LLM provider name.
	FieldProvider = "llm_provider"
	// FieldModel is the structured log field key for the LLM model identifier.
	FieldModel = "llm_model"
	// FieldJobID is the structured log field key for a job identifier.
	FieldJobID = "job_id"
	// FieldJobTitle is the structured log field key for a job title.
	FieldJobTitle = "job_title"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CandidateFields describes one provider/model candidate of the enhancer chain.
// Empty values are ignored to keep log entries compact when information is missing.
func CandidateFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCandidateFields attaches the candidate fields to the provided logger.
func WithCandidateFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CandidateFields(provider, model)...)
}

// JobFields identifies a job in log entries, followed by any extra fields.
func JobFields(id, title string, extra ...zap.Field) []zap.Field {
	fields := StringFields(
		StringField{Key: FieldJobID, Value: id},
		StringField{Key: FieldJobTitle, Value: title},
	)
	return append(fields, extra...)
}
