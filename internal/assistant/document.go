// Package assistant implements the conversational task assistant:
// retrieval over indexed tasks and chats, prompt assembly, and
// single-tool-call dispatch.
package assistant

// Kind distinguishes the two document views the retriever serves.
type Kind string

const (
	KindTask Kind = "task"
	KindChat Kind = "chat"
)

// Document is one retrieved context item.
type Document struct {
	Content        string
	Kind           Kind
	TaskID         int64 // set for task documents
	ConversationID int64 // set for chat documents
	Score          float32
}
