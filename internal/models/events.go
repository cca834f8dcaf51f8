package models

// Frame is the wire envelope for every realtime event, both directions.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Inbound event types.
const (
	EventJoin       = "join"
	EventCodeChange = "code-change"
	EventCursorMove = "cursor-move"
	EventChat       = "chat-message"
	EventFileOp     = "file-operation"
)

// Outbound event types. EventChat and EventFileOp are reused as-is on
// the way out.
const (
	EventSessionState  = "session-state"
	EventUserJoined    = "user-joined"
	EventUserLeft      = "user-left"
	EventCodeUpdated   = "code-updated"
	EventCursorUpdated = "cursor-updated"
	EventError         = "error"
)

type JoinRequest struct {
	SessionID string `json:"sessionId"`
	User      User   `json:"user"`
}

type CodeChange struct {
	SessionID string         `json:"sessionId"`
	FileID    string         `json:"fileId"`
	Content   string         `json:"content"`
	Cursor    CursorPosition `json:"cursor"`
}

type CursorMove struct {
	SessionID string         `json:"sessionId"`
	FileID    string         `json:"fileId"`
	Cursor    CursorPosition `json:"cursor"`
}

type ChatSend struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type FileOperation struct {
	SessionID string   `json:"sessionId"`
	Operation string   `json:"operation"`
	FileData  FileData `json:"fileData"`
}

// UserCursor tags a cursor with its owner for broadcast payloads.
type UserCursor struct {
	UserID string `json:"userId"`
	CursorPosition
}

type CodeUpdated struct {
	FileID  string     `json:"fileId"`
	Content string     `json:"content"`
	Cursor  UserCursor `json:"cursor"`
}

type CursorUpdated struct {
	FileID string     `json:"fileId"`
	Cursor UserCursor `json:"cursor"`
}

type FileOpBroadcast struct {
	Operation string   `json:"operation"`
	FileData  FileData `json:"fileData"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// REST shapes.
type CreateSessionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
