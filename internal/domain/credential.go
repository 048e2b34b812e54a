package domain

const (
	// UsernameMaxLen is the longest username the target service accepts, in bytes.
	UsernameMaxLen = 64
	// PasswordMaxLen is the longest password the target service accepts, in bytes.
	PasswordMaxLen = 64
)

// Credential is a username/password pair registered with the target service.
// Uniqueness of the username is enforced by the service, not by us.
type Credential struct {
	Username string
	Password string
}
