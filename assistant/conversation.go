package assistant

import (
	"github.com/tmc/langchaingo/llms"
)

// Conversation is the message history of one assistant connection. It is
// owned by a single reader and is not safe for concurrent use.
type Conversation struct {
	messages []llms.MessageContent
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []llms.MessageContent {
	out := make([]llms.MessageContent, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// Reset drops the whole history.
func (c *Conversation) Reset() {
	c.messages = nil
}

func (c *Conversation) append(msg llms.MessageContent) {
	c.messages = append(c.messages, msg)
}

func (c *Conversation) last() (llms.MessageContent, bool) {
	if len(c.messages) == 0 {
		return llms.MessageContent{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// lastHumanText returns the text of the most recent user message.
func (c *Conversation) lastHumanText() string {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == llms.ChatMessageTypeHuman {
			return textOf(c.messages[i])
		}
	}
	return ""
}

// prompt prepends the system instructions to the stored history.
func (c *Conversation) prompt(system string) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(c.messages)+1)
	out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, system))
	return append(out, c.messages...)
}

func textOf(msg llms.MessageContent) string {
	var text string
	for _, part := range msg.Parts {
		if t, ok := part.(llms.TextContent); ok {
			text += t.Text
		}
	}
	return text
}
