package errcode

// Coarse API error codes surfaced alongside HTTP statuses. The parent
// application matches on these strings, so the casing never changes.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodePaymentRequired = "PAYMENT_REQUIRED"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)
