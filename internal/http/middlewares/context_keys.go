package middlewares

// gin.Context keys. Identity is also copied onto the request context via
// actorctx for code that only sees a context.Context.
const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
	CtxRole      = "auth.role"
	CtxEmail     = "auth.email"
)
