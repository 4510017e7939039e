package common

// AuthorizationHeaderName is the HTTP header that carries the bearer access
// token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// TokenExpiredCode is the machine-readable error code the server returns with
// a 401 when the access token is valid but expired. Clients use it to decide
// whether a refresh-and-retry is worth attempting.
const TokenExpiredCode = "token_expired"
