// ABOUTME: Question answering against POST /chat
// ABOUTME: Returns the answer text and the source documents it was drawn from

package client

import (
	"context"
	"net/http"
)

type chatRequest struct {
	Text string `json:"text"`
}

// ChatResponse is the backend's answer to a question.
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Chat sends text to the backend and returns its answer.
func (c *Client) Chat(ctx context.Context, text string) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chat", chatRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
