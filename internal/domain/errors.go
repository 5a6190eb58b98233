package domain

import "errors"

// Error kinds surfaced at the API boundary. Each sentinel below belongs to
// exactly one kind; handlers map kinds to status codes.
var (
	// ErrConflict is the kind of duplicate registration errors
	ErrConflict = errors.New("conflict")
	// ErrAuthentication is the kind of bad credentials and bad tokens
	ErrAuthentication = errors.New("authentication failed")
	// ErrForbidden is the kind of ownership failures
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is the kind of missing resources
	ErrNotFound = errors.New("not found")
)

var (
	// ErrUserExists is returned by registration for a taken email
	ErrUserExists = &Error{Kind: ErrConflict, Message: "User already exists"}

	// ErrInvalidCredentials is the only error login returns for a failed
	// credential check, whether the email is unknown or the password wrong.
	ErrInvalidCredentials = &Error{Kind: ErrAuthentication, Message: "Incorrect email or password"}

	// ErrUnauthenticated is the only error identity resolution returns,
	// whether the token is bad or its user no longer exists.
	ErrUnauthenticated = &Error{Kind: ErrAuthentication, Message: "Could not validate credentials"}

	// ErrArticleNotFound is returned when no article has the given id
	ErrArticleNotFound = &Error{Kind: ErrNotFound, Message: "Article not found"}

	// ErrNotOwner is returned when the caller is not the article's author
	ErrNotOwner = &Error{Kind: ErrForbidden, Message: "Not authorized to modify this article"}

	// ErrInvalidToken is returned by token verification. It never reaches
	// clients directly.
	ErrInvalidToken = errors.New("invalid token")
)

// Error is a tagged error carrying a client-safe message
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind so errors.Is matches it
func (e *Error) Unwrap() error {
	return e.Kind
}
