package dbconn

import "errors"

// ErrNotStarted is the cause of Query, Exec and Ping failures on a Conn
// that has not been started (or has been stopped).
var ErrNotStarted = errors.New("dbconn: connection not started")

const (
	msgConnect      = "An error occurred while trying to connect to database : "
	msgQuery        = "An error occurred while querying from the database : "
	msgExecute      = "An error occurred while executing the query : "
	msgQueryNotUp   = "Please start the connection before querying data."
	msgExecuteNotUp = "Please start the connection before executing queries."
)

// ConnectionError reports a failure to open (or verify) the connection.
type ConnectionError struct {
	msg   string
	cause error
}

func (e *ConnectionError) Error() string { return e.msg }
func (e *ConnectionError) Unwrap() error { return e.cause }

// QueryError reports a failed read: the connection was not started, or the
// statement could not be prepared, executed or read back.
type QueryError struct {
	msg   string
	cause error
}

func (e *QueryError) Error() string { return e.msg }
func (e *QueryError) Unwrap() error { return e.cause }

// ExecuteError reports a failed write: the connection was not started, or
// the statement could not be prepared or executed.
type ExecuteError struct {
	msg   string
	cause error
}

func (e *ExecuteError) Error() string { return e.msg }
func (e *ExecuteError) Unwrap() error { return e.cause }

func connectionError(cause error) error {
	return &ConnectionError{msg: msgConnect + cause.Error(), cause: cause}
}

func queryError(cause error) error {
	return &QueryError{msg: msgQuery + cause.Error(), cause: cause}
}

func executeError(cause error) error {
	return &ExecuteError{msg: msgExecute + cause.Error(), cause: cause}
}
