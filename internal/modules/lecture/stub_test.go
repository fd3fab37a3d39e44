package lecture

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/studytree-backend/internal/platform/openai"
)

type scriptedReply struct {
	text string
	err  error
}

// scriptedClient answers Complete calls in order and records every prompt.
type scriptedClient struct {
	mu      sync.Mutex
	replies []scriptedReply
	prompts []string
	tokens  []int
}

func (c *scriptedClient) Complete(_ context.Context, messages []openai.Message, maxTokens int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	last := ""
	if len(messages) > 0 {
		last = messages[len(messages)-1].Content
	}
	c.prompts = append(c.prompts, last)
	c.tokens = append(c.tokens, maxTokens)
	if len(c.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r.text, r.err
}

func reply(text string) scriptedReply { return scriptedReply{text: text} }

func failure(err error) scriptedReply { return scriptedReply{err: err} }
