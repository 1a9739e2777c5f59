package common

// Keys under which session state is persisted in the local store.
const (
	StorageKeyToken = "session_token"
	StorageKeyUser  = "session_user"
)

// AuthorizationHeader carries the bearer token on outbound requests.
const AuthorizationHeader = "Authorization"

// RequestIDHeader carries a per-call correlation id.
const RequestIDHeader = "X-Request-Id"
