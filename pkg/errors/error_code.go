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
	ErrCodeInvalidVersion       ErrorCode = 103
	ErrCodeInvalidWeekStart     ErrorCode = 104
	ErrCodeInvalidTimezone      ErrorCode = 105
	ErrCodeInvalidSourceType    ErrorCode = 106
	ErrCodeInvalidBroker        ErrorCode = 107

	// Store errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeStoreNotInitialized   ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeRecordNotFound        ErrorCode = 203
	ErrCodePersistFailed         ErrorCode = 204
	ErrCodeImportFailed          ErrorCode = 205
	ErrCodeDataSourceUnavailable ErrorCode = 206

	// Source errors (300-399)
	ErrCodeSubscriptionFailed ErrorCode = 300
	ErrCodeSourceFetchFailed  ErrorCode = 301
	ErrCodeSourceClosed       ErrorCode = 302

	// Output errors (400-499)
	ErrCodePresentFailed ErrorCode = 400
	ErrCodeWriteFailed   ErrorCode = 401
	ErrCodePublishFailed ErrorCode = 402

	// Tracker errors (500-599)
	ErrCodeTrackerAlreadyStarted ErrorCode = 500
	ErrCodeScheduleFailed        ErrorCode = 501
)
