package constants

// Centralized constants for env keys, routes, JSON keys and log fields.
const (
	// Environment variable keys
	EnvConfigPath    = "ARENA_CONFIG"
	EnvDBPath        = "ARENA_DB"
	EnvServerAddress = "ARENA_ADDR"
	EnvSessionSecret = "SESSION_SECRET"
	EnvLogLevel      = "ARENA_LOG_LEVEL"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderRetryAfter    = "Retry-After"
	BearerPrefix        = "Bearer "

	// Session / Cookie names
	CookieSessionName = "ph_session"

	// Context keys set by the auth middleware
	ContextUserID   = "userID"
	ContextUserName = "userName"
)

// Routes used by the backend router
const (
	RouteAPIPrefix   = "/api"
	RouteHealth      = "/health"
	RouteVersion     = "/version"
	RoutePvPQueue    = "/pvp/queue"
	RouteBattleByID  = "/battles/:matchID"
	RouteBattleReady = "/battles/:matchID/ready"
	RouteBattleAct   = "/battles/:matchID/action"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyCode    = "code"
	JSONKeyMessage = "message"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest    = "Invalid request"
	ErrInvalidMatchID    = "Invalid match ID"
	ErrBattleNotFound    = "Battle not found"
	ErrAuthRequired      = "Authentication required"
	ErrInvalidSession    = "Invalid session"
	ErrStoreUnavailable  = "Battle store unavailable, retry shortly"
	ErrInternal          = "Internal error"
	ErrAvatarIDRequired  = "avatar_id is required"
	ErrTurnNumberMissing = "turn_number is required"
)

// Logging field names
const (
	LogFieldMatchID     = "match_id"
	LogFieldUserID      = "user_id"
	LogFieldAvatarID    = "avatar_id"
	LogFieldTurn        = "turn_number"
	LogFieldSlot        = "slot"
	LogFieldAction      = "action"
	LogFieldStatus      = "status"
	LogFieldReason      = "reason"
	LogFieldPower       = "power_rating"
	LogFieldPersonality = "personality"
	LogFieldAddr        = "addr"
	LogFieldCount       = "count"
)
