package log

import "sort"

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
	FieldReport     = "report"
	FieldCurrency   = "currency"
	FieldDate       = "date"
	FieldCard       = "card"
	FieldCategory   = "category"
	FieldRows       = "rows"
	FieldSkipped    = "skipped"
	FieldFile       = "file"
	FieldURL        = "url"
	FieldBackend    = "backend"
	FieldFetches    = "fetches"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentRates     = "rates"
	ComponentConverter = "converter"
	ComponentAggregate = "aggregate"
	ComponentReport    = "report"
	ComponentWriter    = "writer"
	ComponentSheets    = "sheets"
	ComponentStorage   = "storage"
	ComponentStocks    = "stocks"
	ComponentSettings  = "settings"
	ComponentAMQP      = "amqp"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpFetch    = "fetch"
	OpExchange = "exchange"
	OpFilter   = "filter"
	OpRead     = "read"
	OpWrite    = "write"
	OpPublish  = "publish"
	OpParse    = "parse"
	OpAssemble = "assemble"
	OpImport   = "import"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeIO            = "io_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errorType string) LogFields {
	if errorType != "" {
		f[FieldErrorType] = errorType
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	if op != "" {
		f[FieldOperation] = op
	}
	return f
}

// WithReport adds the report name
func (f LogFields) WithReport(name string) LogFields {
	f[FieldReport] = name
	return f
}

// WithRate adds the currency and date of a rate lookup
func (f LogFields) WithRate(currency, date string) LogFields {
	f[FieldCurrency] = currency
	f[FieldDate] = date
	return f
}

// With adds an arbitrary field
func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

// ToSlice converts LogFields to a slice for slog. Keys are sorted so the
// output is stable between runs.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
