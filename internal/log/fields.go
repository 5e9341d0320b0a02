package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldOperation     = "operation"
	FieldInvoiceID     = "invoice_id"
	FieldInvoiceNumber = "invoice_number"
	FieldClientID      = "client_id"
	FieldStatus        = "status"
	FieldTotal         = "total"
	FieldFrom          = "from"
	FieldTo            = "to"
)

const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentInvoice = "invoice"
	ComponentClient  = "client"
	ComponentReport  = "report"
	ComponentCompany = "company"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentExport  = "export"
	ComponentTrace   = "trace"
)

const (
	OpCreate       = "create"
	OpRead         = "read"
	OpUpdate       = "update"
	OpDelete       = "delete"
	OpList         = "list"
	OpSearch       = "search"
	OpSetStatus    = "set_status"
	OpNextNumber   = "next_number"
	OpPeriodReport = "period_report"
	OpDashboard    = "dashboard"
	OpChart        = "chart"
	OpExport       = "export"
	OpPublish      = "publish"
	OpStartup      = "startup"
	OpShutdown     = "shutdown"
)

const (
	ErrorTypeValidation = "validation_error"
	ErrorTypeNotFound   = "not_found_error"
	ErrorTypeConflict   = "conflict_error"
	ErrorTypeInternal   = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(t string) LogFields {
	f[FieldErrorType] = t
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithInvoice(id int64, number string) LogFields {
	if id != 0 {
		f[FieldInvoiceID] = id
	}
	if number != "" {
		f[FieldInvoiceNumber] = number
	}
	return f
}

func (f LogFields) WithClient(id int64) LogFields {
	f[FieldClientID] = id
	return f
}

func (f LogFields) WithPeriod(from, to string) LogFields {
	f[FieldFrom] = from
	f[FieldTo] = to
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to slog key/value arguments.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
