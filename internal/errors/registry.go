package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Engine Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryEngine,
		Message:  "Runner work function failed",
		Detail:   "A runner's work function returned an error during a triggered re-run. The runner stays subscribed and will run again on the next change.",
		DocURL:   "https://github.com/vango-dev/reactive/blob/main/docs/errors.md#E001",
	},
	"E002": {
		Category: CategoryEngine,
		Message:  "Scheduler panicked",
		Detail:   "A custom scheduler passed to WithScheduler panicked while handling a wake-up.",
		DocURL:   "https://github.com/vango-dev/reactive/blob/main/docs/errors.md#E002",
	},

	// ============================================
	// Timeline Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryTimeline,
		Message:  "Snapshot encoding failed",
		Detail:   "The recorder's snapshot could not be serialized to JSON. This usually means a subject label or key produced an unencodable value.",
		DocURL:   "https://github.com/vango-dev/reactive/blob/main/docs/errors.md#E020",
	},
	"E021": {
		Category: CategoryTimeline,
		Message:  "Timeline export failed",
		Detail:   "The store rejected the snapshot. Check the store's location and credentials.",
		DocURL:   "https://github.com/vango-dev/reactive/blob/main/docs/errors.md#E021",
	},

	// ============================================
	// Devtools Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryDevtools,
		Message:  "WebSocket upgrade failed",
		Detail:   "The devtools stream endpoint could not upgrade the HTTP connection. The client may not speak WebSocket, or the origin check rejected it.",
		DocURL:   "https://github.com/vango-dev/reactive/blob/main/docs/errors.md#E040",
	},
	"E041": {
		Category: CategoryDevtools,
		Message:  "Stream client too slow",
		Detail:   "A connected devtools client could not keep up with the entry stream and was disconnected to avoid stalling the engine.",
		DocURL:   "https://github.com/vango-dev/reactive/blob/main/docs/errors.md#E041",
	},

	// ============================================
	// Config Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryConfig,
		Message:  "Invalid observer configuration",
		Detail:   "An observer was configured with conflicting or out-of-range options.",
		DocURL:   "https://github.com/vango-dev/reactive/blob/main/docs/errors.md#E060",
	},
}
