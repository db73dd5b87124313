package gin

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/genbridge/internal/domain/generation"
)

// chatCompletionRequest is POST /v1/chat/completions' body, reduced to the
// fields this gateway consumes.
type chatCompletionRequest struct {
	Model        string        `json:"model"`
	Messages     []chatMessage `json:"messages" binding:"required"`
	SessionToken string        `json:"session_token"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// chatChunk is one SSE "data:" payload, OpenAI chat-completions-chunk
// shaped.
type chatChunk struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Index        int       `json:"index"`
	Delta        chatDelta `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

type chatDelta struct {
	Content string `json:"content,omitempty"`
}

// ChatCompletions handles POST /v1/chat/completions, always streaming via
// SSE (the gateway's generation pipeline has no non-streaming shortcut).
func (h *Handler) ChatCompletions(c *gin.Context) {
	var req chatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: errorDetail{Message: err.Error(), Type: "validation", Code: "validation"}})
		return
	}

	lastContent := lastUserContent(req.Messages)

	chunks, errs := h.orchestrator.ChatStream(c.Request.Context(), generation.ChatCompletionRequest{
		SessionToken: sessionTokenFrom(c, req.SessionToken),
		Model:        req.Model,
		Content:      lastContent,
	})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for chunk := range chunks {
		finish := (*string)(nil)
		if chunk.Done {
			reason := chunk.FinishReason
			finish = &reason
		}
		body := chatChunk{
			ID:     chunk.ID,
			Object: "chat.completion.chunk",
			Choices: []chatChoice{{
				Delta:        chatDelta{Content: chunk.Content},
				FinishReason: finish,
			}},
		}
		data, err := json.Marshal(body)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", data)
		c.Writer.Flush()

		select {
		case <-c.Request.Context().Done():
			return
		default:
		}
	}

	if err := <-errs; err != nil {
		handleError(c, err)
		return
	}

	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}

// lastUserContent returns the last user message's content, the only part
// of the conversation this gateway's stateless pipeline consumes.
func lastUserContent(messages []chatMessage) any {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}
