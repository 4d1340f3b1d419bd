package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidDateRange     ErrorCode = 103

	// Data/Resource errors (200-299)
	ErrCodeNoData       ErrorCode = 200
	ErrCodeDataNotFound ErrorCode = 201

	// Cache errors (300-399)
	ErrCodeCacheOpenFailed  ErrorCode = 300
	ErrCodeCacheReadFailed  ErrorCode = 301
	ErrCodeCacheWriteFailed ErrorCode = 302

	// Provider errors (700-799)
	ErrCodeProviderFetchFailed ErrorCode = 700
	ErrCodeProviderParseFailed ErrorCode = 701
	ErrCodeProviderStatus      ErrorCode = 702
	ErrCodeProviderTimeout     ErrorCode = 703
	ErrCodeInvalidProvider     ErrorCode = 704
)
