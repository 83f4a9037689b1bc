package message

// Ok acknowledges that a request was processed successfully with no
// further information to report.
type Ok struct {
	id
	Unvalidated
}

// NewOk returns an Ok reply to the given request id.
func NewOk(requestID uint32) Ok {
	return Ok{id: id{Id: requestID}}
}

func (Ok) clientMessage() {}
func (Ok) serverMessage() {}

// Error signals that the previous message sent by the client caused a
// parsing or processing error on the server.
type Error struct {
	id
	Unvalidated
	ErrorMessage string
	ErrorCode    int
}

func (Error) serverMessage() {}

// ErrorV0 is the v0/v1 wire projection of Error: no ErrorCode field.
type ErrorV0 struct {
	id
	Unvalidated
	ErrorMessage string
}

func (ErrorV0) serverMessage() {}

// Test is used for development and testing: the server echoes TestString
// back, or an error if it equals "Error".
type Test struct {
	id
	Unvalidated
	TestString string
}

func (Test) clientMessage() {}
func (Test) serverMessage() {}

// RequestLog asks the server to start streaming Log messages up to the
// given level.
type RequestLog struct {
	id
	Unvalidated
	LogLevel string
}

func (RequestLog) clientMessage() {}

// Log level names, as used by RequestLog.LogLevel and Log.LogLevel.
const (
	LogLevelOff   = "Off"
	LogLevelFatal = "Fatal"
	LogLevelError = "Error"
	LogLevelWarn  = "Warn"
	LogLevelInfo  = "Info"
	LogLevelDebug = "Debug"
	LogLevelTrace = "Trace"
)

// Log is a server log message forwarded to a client that requested them.
type Log struct {
	id
	Unvalidated
	LogLevel   string
	LogMessage string
}

func (Log) serverMessage() {}
