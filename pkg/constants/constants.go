package constants

const (
	// Token is the gin context key set by the auth middleware.
	Token = "token"

	// Claims is the gin context key holding the decoded session claims.
	Claims = "claims"
)
