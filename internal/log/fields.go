package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldChatID     = "chat_id"
	FieldChatKind   = "chat_kind"
	FieldState      = "state"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldTotal      = "total"
	FieldIndex      = "index"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentBot      = "bot"
	ComponentLedger   = "ledger"
	ComponentStorage  = "storage"
	ComponentNotify   = "notify"
	ComponentAMQP     = "amqp"
	ComponentTTS      = "tts"
	ComponentTelegram = "telegram"
	ComponentHTTP     = "http"
	ComponentBackend  = "backend"
	ComponentSession  = "session"
)

// Operations defines standard operation names
const (
	OpAddEntry       = "add_entry"
	OpDeleteEntry    = "delete_entry"
	OpEditEntry      = "edit_entry"
	OpReset          = "reset"
	OpAddCategory    = "add_category"
	OpDeleteCategory = "delete_category"
	OpReport         = "report"
	OpBroadcast      = "broadcast"
	OpSynthesize     = "synthesize"
	OpSend           = "send"
	OpStartup        = "startup"
	OpShutdown       = "shutdown"
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

// WithChat adds the chat a message came from
func (f LogFields) WithChat(chatID int64, kind string) LogFields {
	f[FieldChatID] = chatID
	if kind != "" {
		f[FieldChatKind] = kind
	}
	return f
}

// WithState adds the dialog state
func (f LogFields) WithState(state string) LogFields {
	f[FieldState] = state
	return f
}

// WithEntry adds expense fields; amounts are pre-formatted decimals
func (f LogFields) WithEntry(category, amount, total string) LogFields {
	f[FieldCategory] = category
	f[FieldAmount] = amount
	f[FieldTotal] = total
	return f
}

// WithHTTP adds HTTP request/response fields
func (f LogFields) WithHTTP(method, path string, statusCode int, durationMs int64) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
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
