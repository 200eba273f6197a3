package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// Timeout is returned when a ledger gateway call exceeds its deadline.
	Timeout = ErrorKind("timeout")

	// InvalidArgument is returned when a caller supplies malformed input or configuration.
	InvalidArgument = ErrorKind("invalid argument")

	// Unsupported is returned when a requested option is not supported.
	Unsupported = ErrorKind("unsupported")

	// ConflictSetting is returned when persisted state conflicts with the current configuration.
	ConflictSetting = ErrorKind("conflict setting")

	// InsufficientBalance is returned when an account balance cannot cover a requested amount.
	InsufficientBalance = ErrorKind("insufficient balance")

	// Transport is returned when the ledger gateway is unreachable or a submission fails to confirm.
	Transport = ErrorKind("transport error")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
