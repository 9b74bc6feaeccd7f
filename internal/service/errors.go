package service

// Domain errors carry a kind discriminator so the transport layer can map
// them onto HTTP responses without string matching.  Deeper layers return
// these unchanged; only the transport translates them.

// Kind classifies a domain failure.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindNotFound
	KindConflict
	KindInternal
)

// Error is the single domain error type.  Message is safe to show to
// clients; infrastructure details stay in logs.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func BadRequest(msg string) *Error   { return &Error{Kind: KindBadRequest, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func Internal(msg string) *Error     { return &Error{Kind: KindInternal, Message: msg} }
