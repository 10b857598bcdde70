package errors

import "fmt"

// Kind identifies the category of a NodeError, matching the error kinds
// raised by the node manager and its collaborators.
type Kind int

const (
	InternalError Kind = iota
	MetadataUnavailable
	LogUnavailable
	StorageUnavailable
	DDLError
	InvalidStatement
	NoSuchTableSpace
	StatementExecutionError
	InvalidConfiguration
)

func NewInternalError(seq int64) NodeError {
	return NewNodeErrorf(InternalError, "internal error - sequence %d please consult server logs for details", seq)
}

func NewMetadataUnavailableError(cause error) NodeError {
	return NewNodeErrorf(MetadataUnavailable, "metadata store unavailable: %v", cause)
}

func NewLogUnavailableError(tableSpace string, cause error) NodeError {
	return NewNodeErrorf(LogUnavailable, "log unavailable for tablespace %s: %v", tableSpace, cause)
}

func NewStorageUnavailableError(cause error) NodeError {
	return NewNodeErrorf(StorageUnavailable, "page store unavailable: %v", cause)
}

func NewDDLError(msg string) NodeError {
	return NewNodeErrorf(DDLError, msg)
}

func NewInvalidStatementError(msg string) NodeError {
	return NewNodeErrorf(InvalidStatement, msg)
}

func NewNoSuchTableSpaceError(name string) NodeError {
	return NewNodeErrorf(NoSuchTableSpace, "no such tablespace %s on this node", name)
}

func NewStatementExecutionError(msg string) NodeError {
	return NewNodeErrorf(StatementExecutionError, msg)
}

func NewInvalidConfigurationError(msg string) NodeError {
	return NewNodeErrorf(InvalidConfiguration, "invalid configuration: %s", msg)
}

func NewNodeErrorf(kind Kind, msgFormat string, args ...interface{}) NodeError {
	return NodeError{Kind: kind, Msg: fmt.Sprintf(msgFormat, args...)}
}

func NewNodeError(kind Kind, msg string) NodeError {
	return NodeError{Kind: kind, Msg: msg}
}

// NodeError is any error that crosses the node manager's external boundary.
// Callers switch on Kind rather than match error strings.
type NodeError struct {
	Kind Kind
	Msg  string
}

func (e NodeError) Error() string {
	return e.Msg
}

// KindOf returns the Kind of err if it is, or wraps, a NodeError, and
// InternalError otherwise.
func KindOf(err error) Kind {
	var ne NodeError
	if As(err, &ne) {
		return ne.Kind
	}
	return InternalError
}
