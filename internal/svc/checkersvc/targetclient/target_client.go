package targetclient

import "context"

// Client defines the stateless HTTP operations against the target service.
// Every failure surfaces as a classified error; implementations never retry,
// severity decisions belong to the caller.
type Client interface {
	// Register creates an account with the given credentials.
	// Returns domain.ErrUsernameTaken when the service reports a name
	// collision (the only recoverable signal) and domain.ErrServiceFailure
	// for any other non-success shape.
	Register(ctx context.Context, username, password string) error

	// Login authenticates and returns a session bound to exactly this
	// credential. A session must not be reused across unrelated credentials.
	Login(ctx context.Context, username, password string) (*Session, error)

	// GetAccount fetches the raw account page body for the session.
	GetAccount(ctx context.Context, sess *Session) ([]byte, error)

	// UploadFile uploads data under fileName into destUser's account.
	// destUser may be a username or a numeric user ID string; the service
	// accepts both forms identically.
	UploadFile(ctx context.Context, sess *Session, destUser, fileName string, data []byte) error

	// DownloadFile fetches the raw bytes of the file with the given ID.
	DownloadFile(ctx context.Context, sess *Session, fileID int64) ([]byte, error)

	// Logout performs an unauthenticated logout request and verifies the
	// service redirects to the root path with the expected status.
	Logout(ctx context.Context) error
}
