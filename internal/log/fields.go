package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldUserID    = "user_id"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStore     = "store"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentAuth      = "auth"
	ComponentChallenge = "challenge"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentWS        = "websocket"
)
