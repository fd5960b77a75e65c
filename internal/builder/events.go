package builder

// Lifecycle event names published by the coordinator and consumed by
// external progress UIs.
const (
	EventSetupStart = "setup_start"
	EventSetupDone  = "setup_done"
	EventRefreshing = "refreshing"
	EventParsing    = "parsing"
	EventBuilding   = "building"
	EventBuilt      = "built"
	EventError      = "error"
)

// Event is one lifecycle notification.
type Event struct {
	Name    string `json:"name"`
	BuildID string `json:"build_id,omitempty"`

	// PageCount and ErrorCount are populated on the built event.
	PageCount  int `json:"page_count,omitempty"`
	ErrorCount int `json:"error_count,omitempty"`

	// Err is populated on the error event.
	Err error `json:"-"`
}
