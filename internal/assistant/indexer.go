package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emotitask/emotitask/internal/core"
	"github.com/emotitask/emotitask/internal/vectors"
)

// Upserter writes points into the vector index. Satisfied by
// vectors.Store.
type Upserter interface {
	Upsert(ctx context.Context, collection string, points []vectors.Point) error
	Delete(ctx context.Context, collection string, ids []string) error
}

// Indexer pushes task and chat content into the shared retrieval
// index.
type Indexer struct {
	embedder Embedder
	store    Upserter
}

// NewIndexer creates an indexer over the given embedder and store.
func NewIndexer(embedder Embedder, store Upserter) *Indexer {
	return &Indexer{embedder: embedder, store: store}
}

// pointNamespace keeps point IDs stable across re-indexing: the same
// document always maps to the same UUID, so upserts overwrite.
var pointNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func taskPointID(taskID int64) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("task:%d", taskID))).String()
}

func chatPointID(conversationID int64, seq int) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("chat:%d:%d", conversationID, seq))).String()
}

// taskStatus tags a task for retrieval filtering. A task is lagging
// when it is open and its start time has passed (or was never set).
func taskStatus(task *core.Task, now time.Time) string {
	if task.IsCompleted {
		return "done"
	}
	if task.StartTime == nil || task.StartTime.Before(now) {
		return "lagging"
	}
	return "open"
}

// IndexTask embeds and upserts one task document.
func (ix *Indexer) IndexTask(ctx context.Context, task *core.Task) error {
	content := task.Name
	if task.Description != "" {
		content += "\n" + task.Description
	}

	vector, err := ix.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed task %d: %w", task.ID, err)
	}

	point := vectors.Point{
		ID:     taskPointID(task.ID),
		Vector: vector,
		Payload: map[string]interface{}{
			"type":    string(KindTask),
			"status":  taskStatus(task, time.Now()),
			"user_id": task.UserID,
			"task_id": task.ID,
			"content": content,
		},
	}
	return ix.store.Upsert(ctx, vectors.CollectionDocuments, []vectors.Point{point})
}

// RemoveTask drops a task document from the index.
func (ix *Indexer) RemoveTask(ctx context.Context, taskID int64) error {
	return ix.store.Delete(ctx, vectors.CollectionDocuments, []string{taskPointID(taskID)})
}

// IndexChat embeds and upserts one chat snippet. seq orders snippets
// within a conversation.
func (ix *Indexer) IndexChat(ctx context.Context, userID, conversationID int64, seq int, content string) error {
	vector, err := ix.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed chat %d: %w", conversationID, err)
	}

	point := vectors.Point{
		ID:     chatPointID(conversationID, seq),
		Vector: vector,
		Payload: map[string]interface{}{
			"type":            string(KindChat),
			"user_id":         userID,
			"conversation_id": conversationID,
			"content":         content,
		},
	}
	return ix.store.Upsert(ctx, vectors.CollectionDocuments, []vectors.Point{point})
}
