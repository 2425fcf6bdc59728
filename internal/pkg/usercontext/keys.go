package usercontext

// Locals keys set by the user context middleware.
const (
	KeyUserContext   = "USER_CONTEXT"
	KeyFromProtected = "FROM_PROTECTED"
	KeyUserID        = "USER_ID"
	KeyUserName      = "USER_NAME"
	KeyIsAdmin       = "USER_IS_ADMIN"
)
