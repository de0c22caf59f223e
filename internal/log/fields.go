package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldSessionID     = "session_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldHTMX          = "htmx"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldASICID        = "asic_id"
	FieldASICCount     = "asic_count"
	FieldStart         = "timestamp_start"
	FieldEnd           = "timestamp_end"
	FieldUnit          = "unit"
	FieldPoints        = "points"
	FieldTotal         = "total"
	FieldGeneration    = "generation"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAPI       = "api"
	ComponentForm      = "form"
	ComponentSession   = "session"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpListASICs  = "list_asics"
	OpFetch      = "fetch_revenue"
	OpChangeASIC = "change_asic"
	OpToggleUnit = "toggle_unit"
	OpSubmit     = "submit"
	OpRender     = "render"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithQuery adds the fields identifying a revenue query
func (f LogFields) WithQuery(asicID, start, end string) LogFields {
	f[FieldASICID] = asicID
	f[FieldStart] = start
	f[FieldEnd] = end
	return f
}

// WithSeries adds the size, unit and total of a derived series
func (f LogFields) WithSeries(unit string, points int, total float64) LogFields {
	f[FieldUnit] = unit
	f[FieldPoints] = points
	f[FieldTotal] = total
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
