package models

import "time"

// User identifies a collaborator. Identity is supplied by the client at
// join time and is not independently verified.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Avatar string `json:"avatar,omitempty"`
}

// TextPoint is a (line, column) position inside a file.
type TextPoint struct {
	LineNumber int `json:"lineNumber"`
	Column     int `json:"column"`
}

// CursorPosition is advisory; the last write per (file, user) wins.
type CursorPosition struct {
	LineNumber     int        `json:"lineNumber"`
	Column         int        `json:"column"`
	SelectionStart *TextPoint `json:"selectionStart,omitempty"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// FileState is the persisted state of one shared file: its full content
// and the last known cursor of every user who touched it.
type FileState struct {
	Content string                    `json:"content"`
	Cursors map[string]CursorPosition `json:"cursors"`
}

// MaxMessages bounds the chat history kept on a session so the snapshot
// sent to new joiners stays small. Eviction is strict FIFO.
const MaxMessages = 100

// DefaultSessionName is used when the creator supplies no name.
const DefaultSessionName = "Untitled Session"

// Session is the persisted unit of collaboration: shared files, the set
// of currently-joined users, and bounded chat history.
type Session struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	CreatedAt     time.Time             `json:"createdAt"`
	Files         map[string]*FileState `json:"files"`
	Collaborators []User                `json:"collaborators"`
	Messages      []ChatMessage         `json:"messages,omitempty"`
}

func NewSession(id, name, description string) *Session {
	if name == "" {
		name = DefaultSessionName
	}
	return &Session{
		ID:            id,
		Name:          name,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
		Files:         make(map[string]*FileState),
		Collaborators: []User{},
	}
}

// AddCollaborator appends u unless a collaborator with the same id is
// already present. Reports whether the list changed.
func (s *Session) AddCollaborator(u User) bool {
	for _, c := range s.Collaborators {
		if c.ID == u.ID {
			return false
		}
	}
	s.Collaborators = append(s.Collaborators, u)
	return true
}

// RemoveCollaborator drops the collaborator with the given id, if any.
func (s *Session) RemoveCollaborator(userID string) bool {
	for i, c := range s.Collaborators {
		if c.ID == userID {
			s.Collaborators = append(s.Collaborators[:i], s.Collaborators[i+1:]...)
			return true
		}
	}
	return false
}

// TouchFile returns the entry for fileID, lazily creating an empty one
// if the file has never been written in this session.
func (s *Session) TouchFile(fileID string) *FileState {
	if s.Files == nil {
		s.Files = make(map[string]*FileState)
	}
	f, ok := s.Files[fileID]
	if !ok {
		f = &FileState{Cursors: make(map[string]CursorPosition)}
		s.Files[fileID] = f
	}
	if f.Cursors == nil {
		f.Cursors = make(map[string]CursorPosition)
	}
	return f
}

// AppendMessage appends m, evicting the oldest entries once the history
// exceeds MaxMessages.
func (s *Session) AppendMessage(m ChatMessage) {
	s.Messages = append(s.Messages, m)
	if len(s.Messages) > MaxMessages {
		s.Messages = s.Messages[len(s.Messages)-MaxMessages:]
	}
}

// File operations carried by the file-operation event.
const (
	FileOpCreate = "create"
	FileOpDelete = "delete"
	FileOpRename = "rename"
)

// FileData identifies the file an operation targets. Create and delete
// use ID; rename uses OldID/NewID. Name is display-only and passed
// through to peers untouched.
type FileData struct {
	ID    string `json:"id,omitempty"`
	OldID string `json:"oldId,omitempty"`
	NewID string `json:"newId,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ApplyFileOperation mutates the file tree. Rename is a copy under the
// new id followed by a delete of the old. Unknown operations and renames
// of absent files leave the tree untouched and report false.
func (s *Session) ApplyFileOperation(op string, data FileData) bool {
	if s.Files == nil {
		s.Files = make(map[string]*FileState)
	}
	switch op {
	case FileOpCreate:
		s.Files[data.ID] = &FileState{Cursors: make(map[string]CursorPosition)}
	case FileOpDelete:
		delete(s.Files, data.ID)
	case FileOpRename:
		f, ok := s.Files[data.OldID]
		if !ok {
			return false
		}
		s.Files[data.NewID] = f
		delete(s.Files, data.OldID)
	default:
		return false
	}
	return true
}

// Clone returns a deep copy so store callers never alias live state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Files = make(map[string]*FileState, len(s.Files))
	for id, f := range s.Files {
		fc := &FileState{Content: f.Content, Cursors: make(map[string]CursorPosition, len(f.Cursors))}
		for uid, cur := range f.Cursors {
			fc.Cursors[uid] = cur
		}
		out.Files[id] = fc
	}
	out.Collaborators = append([]User(nil), s.Collaborators...)
	out.Messages = append([]ChatMessage(nil), s.Messages...)
	return &out
}
