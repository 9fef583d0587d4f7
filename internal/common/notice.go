package common

// Level is the severity of a user-facing notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a message for the user. Message text is shown verbatim.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}
