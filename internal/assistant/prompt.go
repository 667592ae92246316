package assistant

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emotitask/emotitask/internal/core"
)

// ErrMissingStyle is returned when the user has no chat style assigned.
// Styles are never defaulted.
var ErrMissingStyle = errors.New("no chat style assigned")

// PromptContext carries everything the prompt assembler needs for one
// turn.
type PromptContext struct {
	UserName  string
	PersonaID string // MBTI code, e.g. "INTJ"
	Style     *core.ChatStyle
	Tasks     []Document
	Chats     []Document
	Now       time.Time
	Degraded  bool // retrieval failed, context blocks are best-effort
}

const (
	openTasksHeader  = "### OPEN TASKS"
	recentChatHeader = "### RECENT CHAT"
	noOpenTasks      = "(no open tasks)"
	noRecentChat     = "(no recent chat)"
)

// activeListening is the fixed persona framework: listening
// techniques, step-by-step guidance, and the emotion-word heuristic.
const activeListening = `**Active Listening Techniques:**
1. Paraphrasing: Rephrase what the user said to show understanding.
2. Verbalizing Emotions: Directly express and acknowledge the user's emotions.
3. Summarizing: Write a short and concise summary of the conversation so far.
4. Encouraging: Praise the user when they share personal issues, especially difficult ones.

**Chain of Thought Guidance:**
When the user mentions an issue they're struggling with, guide them step by step:
- First, ask which aspect causes the most stress (fear of unpreparedness, performance pressure, and so on).
- Then, once the source is identified, brainstorm concrete strategies to address it.

**Heuristic for Emotion Words:**
When you detect words like "sad", "frustrated", "anxious", "depressed", or "disappointed", always do all of the following:
1. Paraphrase their sentence to confirm you've understood.
2. Verbalize your own empathetic response ("I can see this must feel...").
3. Summarize the main point to show clarity.
4. Encourage them to open up, praise their bravery, or offer comfort.
`

// BuildPrompt assembles the system prompt for one conversational turn.
// The chat style keywords are embedded verbatim, in order.
func BuildPrompt(pc PromptContext) (string, error) {
	if pc.Style == nil || len(pc.Style.Keywords) == 0 {
		return "", ErrMissingStyle
	}

	var b strings.Builder

	b.WriteString("You are EmotiTask, an intelligent AI emotional supporter that helps the user manage their tasks while adapting to their personality and caring for their emotional well-being.\n")
	fmt.Fprintf(&b, "Always use these tone keywords: %s\n", strings.Join(pc.Style.Keywords, ", "))
	if pc.PersonaID != "" {
		fmt.Fprintf(&b, "User's MBTI profile: %s\n", pc.PersonaID)
	}
	fmt.Fprintf(&b, "User's name: %s\n", pc.UserName)
	if !pc.Now.IsZero() {
		fmt.Fprintf(&b, "Current time: %s\n", pc.Now.Format(time.RFC3339))
	}

	b.WriteString("\n" + activeListening)

	b.WriteString("\n" + openTasksHeader + "\n")
	if len(pc.Tasks) == 0 {
		b.WriteString(noOpenTasks + "\n")
	} else {
		for _, doc := range pc.Tasks {
			fmt.Fprintf(&b, "- %s (task %d)\n", firstLine(doc.Content), doc.TaskID)
		}
	}

	b.WriteString("\n" + recentChatHeader + "\n")
	if len(pc.Chats) == 0 {
		b.WriteString(noRecentChat + "\n")
	} else {
		for _, doc := range pc.Chats {
			fmt.Fprintf(&b, "- %s\n", doc.Content)
		}
	}

	b.WriteString("\n")
	b.WriteString("When a task is overdue or starting within 15 minutes, start with a friendly check-in using active listening.\n")
	b.WriteString("If, and only if, the user asks to change a task, suggest exactly one adjustment by emitting exactly one JSON object of the form ")
	b.WriteString(`{"task_id":123,"field":"start_time","value":"2025-06-21T15:00:00"}`)
	b.WriteString(" alongside your reply. Valid fields: name, description, priority, is_completed, start_time. ")
	b.WriteString("Never emit more than one such object per reply.\n")
	b.WriteString("Always finish with an empathic, encouraging closer that matches the active listening style.\n")

	return b.String(), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
