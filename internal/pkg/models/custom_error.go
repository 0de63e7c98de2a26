package models

// ErrorKind groups error codes by how callers should react to them.
type ErrorKind string

const (
	KindInvalidRequest     ErrorKind = "InvalidRequest"
	KindUnauthorized       ErrorKind = "Unauthorized"
	KindNotFound           ErrorKind = "NotFound"
	KindInvalidState       ErrorKind = "InvalidState"
	KindInvalidAmount      ErrorKind = "InvalidAmount"
	KindAlreadyPending     ErrorKind = "AlreadyPending"
	KindNoPendingRepayment ErrorKind = "NoPendingRepayment"
	KindConcurrentUpdate   ErrorKind = "ConcurrentUpdate"
	KindDependencyFailure  ErrorKind = "DependencyFailure"
)

type CustomError struct {
	Code    string
	Message string
	Kind    ErrorKind
}

func (e CustomError) Error() string {
	return e.Message
}

func (e CustomError) ErrorCode() string {
	return e.Code
}

func (e CustomError) ErrorKind() ErrorKind {
	return e.Kind
}
