package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/emotitask/emotitask/internal/vectors"
)

var (
	// ErrUnknownKind is returned for a retrieval kind the router does
	// not recognize.
	ErrUnknownKind = errors.New("unknown retrieval kind")

	// ErrUnavailable is returned when the vector backend cannot serve
	// a query.
	ErrUnavailable = errors.New("retrieval unavailable")
)

// Embedder turns text into a vector. Satisfied by embeddings.Service.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs filtered vector search. Satisfied by vectors.Store.
type Searcher interface {
	Search(ctx context.Context, collection string, vector []float32, limit uint64, filter map[string]interface{}) ([]vectors.SearchResult, error)
}

const (
	taskRetrievalLimit = 5
	chatRetrievalLimit = 10
)

// Retriever serves one document view over the shared index.
type Retriever struct {
	embedder Embedder
	searcher Searcher
	kind     Kind
	limit    uint64
	filter   map[string]interface{}
}

// NewTaskRetriever retrieves open lagging tasks, at most 5 per query.
func NewTaskRetriever(embedder Embedder, searcher Searcher) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		kind:     KindTask,
		limit:    taskRetrievalLimit,
		filter: map[string]interface{}{
			"type":   string(KindTask),
			"status": "lagging",
		},
	}
}

// NewChatRetriever retrieves recent chat snippets, at most 10 per query.
func NewChatRetriever(embedder Embedder, searcher Searcher) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		kind:     KindChat,
		limit:    chatRetrievalLimit,
		filter: map[string]interface{}{
			"type": string(KindChat),
		},
	}
}

// Retrieve embeds the query and returns matching documents for the
// given user, best first.
func (r *Retriever) Retrieve(ctx context.Context, userID int64, query string) ([]Document, error) {
	if r.searcher == nil {
		return nil, fmt.Errorf("%w: no vector backend attached", ErrUnavailable)
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrUnavailable, err)
	}

	filter := make(map[string]interface{}, len(r.filter)+1)
	for k, v := range r.filter {
		filter[k] = v
	}
	filter["user_id"] = userID

	results, err := r.searcher.Search(ctx, vectors.CollectionDocuments, vector, r.limit, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	docs := make([]Document, 0, len(results))
	for _, res := range results {
		doc := Document{
			Kind:  r.kind,
			Score: res.Score,
		}
		if content, ok := res.Payload["content"].(string); ok {
			doc.Content = content
		}
		if taskID, ok := res.Payload["task_id"].(int64); ok {
			doc.TaskID = taskID
		}
		if convID, ok := res.Payload["conversation_id"].(int64); ok {
			doc.ConversationID = convID
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Router dispatches retrieval requests to the view-specific retrievers.
type Router struct {
	retrievers map[Kind]*Retriever
}

// NewRouter builds a router over task and chat views sharing one
// embedder and searcher.
func NewRouter(embedder Embedder, searcher Searcher) *Router {
	return &Router{
		retrievers: map[Kind]*Retriever{
			KindTask: NewTaskRetriever(embedder, searcher),
			KindChat: NewChatRetriever(embedder, searcher),
		},
	}
}

// Retrieve routes the query to the retriever for kind.
func (r *Router) Retrieve(ctx context.Context, kind Kind, userID int64, query string) ([]Document, error) {
	retriever, ok := r.retrievers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return retriever.Retrieve(ctx, userID, query)
}
