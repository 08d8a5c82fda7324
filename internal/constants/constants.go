package constants

// Context keys
const (
	ContextKeyActor     = "actor"
	ContextKeyRequestID = "request_id"
)

// Headers
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	TokenType           = "Bearer"
)

// Field limits
const (
	MaxUsernameLength    = 50
	MinUsernameLength    = 3
	MinPasswordLength    = 6
	MaxTitleLength       = 255
	MaxDescriptionLength = 1000
	MaxNicknameLength    = 50
	MaxAvatarLength      = 255
)

// AI
const (
	MaxAISuggestedTasks = 10
	MaxAIInputLength    = 8000
)

// Rate limiting
const (
	RateLimitKeyPrefix = "devboard:ratelimit:"
)
