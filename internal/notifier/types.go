package notifier

// DefaultTopic namespaces outward deliveries when none is configured.
const DefaultTopic = "minewatch/events"

// DefaultImportantKinds is the initial importance set: kinds that are
// delivered even at info/success severity.
var DefaultImportantKinds = []string{"connection", "death", "error"}

// Config controls notification selection and delivery.
type Config struct {
	// Enabled gates all outward delivery. Disabled means important events
	// are classified and dropped silently.
	Enabled bool
	// Topic is passed to every transport strategy.
	// Default: DefaultTopic.
	Topic string
	// Important seeds the importance kind set.
	// Default: DefaultImportantKinds.
	Important []string
}

// Stats is a point-in-time snapshot for observability output.
type Stats struct {
	Enabled   bool     `json:"enabled"`
	Topic     string   `json:"topic"`
	Important []string `json:"important"`
	// Delivered counts notifications accepted by a transport strategy.
	Delivered uint64 `json:"delivered"`
	// Sunk counts notifications that ended in the local log sink.
	Sunk uint64 `json:"sunk"`
}
