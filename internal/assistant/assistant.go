package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emotitask/emotitask/internal/core"
	"github.com/emotitask/emotitask/internal/llm"
	"github.com/emotitask/emotitask/internal/logging"
)

// Completer produces one chat completion. Satisfied by llm.Client.
type Completer interface {
	Chat(ctx context.Context, system, userMessage string, temperature float64) (*llm.Result, error)
	Model() string
}

// UserReader resolves users by ID. Satisfied by storage.UserStore.
type UserReader interface {
	Get(id int64) (*core.User, error)
}

// StyleReader resolves per-user chat styles. Satisfied by
// storage.StyleStore.
type StyleReader interface {
	GetChatStyleForUser(userID int64) (*core.ChatStyle, error)
	GetUserMBTIType(userID int64) (*core.MBTIType, error)
}

// ChatWriter persists conversation logs. Satisfied by
// storage.ChatHistoryStore.
type ChatWriter interface {
	Get(id int64) (*core.ChatHistory, error)
	Create(ch *core.ChatHistory) error
	UpdateMessages(id int64, messages, modelUsed string, tokensUsed int) error
}

// Broadcaster pushes events to connected clients. Satisfied by
// api.WebSocketHub. Optional.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// Assistant runs the full conversational pipeline: retrieval, prompt
// assembly, completion, tool dispatch, and history persistence. All
// collaborators are injected.
type Assistant struct {
	router     *Router
	dispatcher *Dispatcher
	completer  Completer
	users      UserReader
	styles     StyleReader
	chats      ChatWriter
	indexer    *Indexer    // nil when the vector backend is down
	broadcast  Broadcaster // nil when no hub is attached
	log        *logging.Logger
}

// Config wires an Assistant. Router, Dispatcher, Completer, Users,
// Styles and Chats are required; Indexer and Broadcast are optional.
type Config struct {
	Router     *Router
	Dispatcher *Dispatcher
	Completer  Completer
	Users      UserReader
	Styles     StyleReader
	Chats      ChatWriter
	Indexer    *Indexer
	Broadcast  Broadcaster
}

// New creates an Assistant from its collaborators.
func New(cfg Config) *Assistant {
	return &Assistant{
		router:     cfg.Router,
		dispatcher: cfg.Dispatcher,
		completer:  cfg.Completer,
		users:      cfg.Users,
		styles:     cfg.Styles,
		chats:      cfg.Chats,
		indexer:    cfg.Indexer,
		broadcast:  cfg.Broadcast,
		log:        logging.WithField("component", "assistant"),
	}
}

// SetBroadcaster attaches an event sink after construction. The API
// server calls this once its hub exists.
func (a *Assistant) SetBroadcaster(b Broadcaster) {
	a.broadcast = b
}

// Turn is the outcome of one conversational exchange.
type Turn struct {
	Reply          string      `json:"reply"`
	ConversationID int64       `json:"conversation_id"`
	Model          string      `json:"model"`
	Usage          llm.Usage   `json:"usage"`
	Degraded       bool        `json:"degraded"` // retrieval was unavailable
	UpdatedTask    *core.Task  `json:"updated_task,omitempty"`
	ToolError      string      `json:"tool_error,omitempty"`
}

// chatMessage is one entry in the persisted message log.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Converse runs one turn for the user. conversationID of 0 starts a
// new chat history. Tool-call failures never suppress the reply;
// completion failures abort the turn.
func (a *Assistant) Converse(ctx context.Context, userID, conversationID int64, message string) (*Turn, error) {
	user, err := a.users.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", userID, err)
	}

	style, err := a.styles.GetChatStyleForUser(userID)
	if err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			return nil, ErrMissingStyle
		}
		return nil, fmt.Errorf("resolve chat style: %w", err)
	}

	pc := PromptContext{
		UserName: user.Name,
		Style:    style,
		Now:      time.Now(),
	}
	if persona, err := a.styles.GetUserMBTIType(userID); err == nil {
		pc.PersonaID = persona.PersonaID
	}

	pc.Tasks, pc.Chats, pc.Degraded = a.retrieve(ctx, userID, message)

	prompt, err := BuildPrompt(pc)
	if err != nil {
		return nil, err
	}

	result, err := a.completer.Chat(ctx, prompt, message, style.Temperature)
	if err != nil {
		return nil, err
	}

	turn := &Turn{
		Model:    result.Model,
		Usage:    result.Usage,
		Degraded: pc.Degraded,
	}

	tc, extras := ExtractToolCall(result.Text)
	if extras > 0 {
		a.log.WithField("extras", extras).Warn("model emitted multiple tool calls, applying only the first")
	}
	if tc != nil {
		task, err := a.dispatcher.Dispatch(tc)
		if err != nil {
			a.log.WithField("task_id", tc.TaskID).Warn("tool call rejected: %v", err)
			turn.ToolError = err.Error()
		} else {
			turn.UpdatedTask = task
			if a.broadcast != nil {
				a.broadcast.Broadcast("task.updated", task)
			}
			if a.indexer != nil {
				if err := a.indexer.IndexTask(ctx, task); err != nil {
					a.log.Warn("reindex task %d: %v", task.ID, err)
				}
			}
		}
	}

	// When the model replied with nothing but tool JSON, substitute a
	// confirmation line; the raw payload never reaches the user.
	turn.Reply = StripToolCalls(result.Text)
	if turn.Reply == "" {
		if turn.UpdatedTask != nil {
			turn.Reply = fmt.Sprintf("I've updated %q for you.", turn.UpdatedTask.Name)
		} else {
			turn.Reply = "Got it."
		}
	}

	convID, err := a.appendHistory(userID, conversationID, message, turn.Reply, result)
	if err != nil {
		a.log.Error("persist chat history: %v", err)
	} else {
		turn.ConversationID = convID
	}

	if a.indexer != nil && turn.ConversationID != 0 {
		snippet := fmt.Sprintf("user: %s\nassistant: %s", message, turn.Reply)
		if err := a.indexer.IndexChat(ctx, userID, turn.ConversationID, int(time.Now().UnixNano()), snippet); err != nil {
			a.log.Warn("index chat %d: %v", turn.ConversationID, err)
		}
	}

	return turn, nil
}

// retrieve gathers both context views. An outage in either marks the
// turn degraded; the prompt then carries explicit empty markers.
func (a *Assistant) retrieve(ctx context.Context, userID int64, query string) (tasks, chats []Document, degraded bool) {
	tasks, err := a.router.Retrieve(ctx, KindTask, userID, query)
	if err != nil {
		a.log.Warn("task retrieval: %v", err)
		degraded = true
	}
	chats, err = a.router.Retrieve(ctx, KindChat, userID, query)
	if err != nil {
		a.log.Warn("chat retrieval: %v", err)
		degraded = true
	}
	return tasks, chats, degraded
}

// appendHistory appends the exchange to the conversation log, creating
// the chat history when conversationID is 0.
func (a *Assistant) appendHistory(userID, conversationID int64, userMessage, reply string, result *llm.Result) (int64, error) {
	var history *core.ChatHistory

	if conversationID == 0 {
		history = &core.ChatHistory{
			UserID: userID,
			Name:   firstLine(userMessage),
		}
		if err := a.chats.Create(history); err != nil {
			return 0, err
		}
		if a.broadcast != nil {
			a.broadcast.Broadcast("chat.created", history)
		}
	} else {
		var err error
		history, err = a.chats.Get(conversationID)
		if err != nil {
			return 0, err
		}
	}

	var messages []chatMessage
	if history.Messages != "" {
		if err := json.Unmarshal([]byte(history.Messages), &messages); err != nil {
			a.log.Warn("chat %d has an unreadable message log, starting fresh", history.ID)
			messages = nil
		}
	}
	messages = append(messages,
		chatMessage{Role: "user", Content: userMessage},
		chatMessage{Role: "assistant", Content: reply},
	)

	encoded, err := json.Marshal(messages)
	if err != nil {
		return 0, err
	}

	tokens := history.TokensUsed + result.Usage.TotalTokens
	if err := a.chats.UpdateMessages(history.ID, string(encoded), result.Model, tokens); err != nil {
		return 0, err
	}
	return history.ID, nil
}
