package models

// TokenPair is the credential pair issued by the backend: a short-lived JWT
// access token and a long-lived opaque refresh token. ExpiresIn is the access
// token lifetime in seconds at the moment of issue.
//
// The pair is kept in memory by the session store and durably (encrypted) by
// the credential store; both copies are equal after any successful login,
// registration, refresh, or startup restore.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
