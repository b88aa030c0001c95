package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Message is the content shared by every device in one dispatch.
type Message struct {
	Title string
	Body  string
	Data  map[string]any
}

// Result aggregates the gateway's per-message statuses.
type Result struct {
	Success     bool `json:"success"`
	SentCount   int  `json:"sentCount"`
	FailedCount int  `json:"failedCount"`
}

// SingleResult is the outcome of a one-token send.
type SingleResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type gatewayMessage struct {
	To       string         `json:"to"`
	Sound    string         `json:"sound"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Data     map[string]any `json:"data"`
	Priority string         `json:"priority"`
}

type ticket struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// gatewayResponse.Data is either one ticket or an array of tickets.
type gatewayResponse struct {
	Data json.RawMessage `json:"data"`
}

func (r gatewayResponse) tickets() ([]ticket, error) {
	raw := bytes.TrimSpace(r.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var many []ticket
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	}
	var one ticket
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []ticket{one}, nil
}

// Gateway posts messages to an Expo-compatible push endpoint.
type Gateway struct {
	url    string
	client *http.Client
}

// NewGateway creates a gateway client. A zero timeout leaves requests without a deadline.
func NewGateway(url string, timeout time.Duration) *Gateway {
	return &Gateway{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// SendBulk sends one message per token in a single request. Any transport failure
// counts every token as failed; nothing is retried.
func (g *Gateway) SendBulk(ctx context.Context, tokens []string, msg Message) Result {
	if len(tokens) == 0 {
		return Result{Success: true}
	}

	messages := make([]gatewayMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, newGatewayMessage(token, msg))
	}

	resp, err := g.post(ctx, messages)
	if err != nil {
		log.Printf("Push gateway bulk send of %d messages failed: %v", len(tokens), err)
		return Result{Success: false, FailedCount: len(tokens)}
	}
	tickets, err := resp.tickets()
	if err != nil {
		log.Printf("Push gateway returned malformed tickets: %v", err)
		return Result{Success: false, FailedCount: len(tokens)}
	}

	result := Result{Success: true}
	for _, t := range tickets {
		if t.Status == "ok" {
			result.SentCount++
		} else {
			result.FailedCount++
		}
	}
	return result
}

// Send delivers a single message and reports the gateway's error text on failure.
func (g *Gateway) Send(ctx context.Context, token string, msg Message) SingleResult {
	resp, err := g.post(ctx, newGatewayMessage(token, msg))
	if err != nil {
		return SingleResult{Success: false, Error: err.Error()}
	}
	tickets, err := resp.tickets()
	if err != nil {
		return SingleResult{Success: false, Error: err.Error()}
	}
	for _, t := range tickets {
		if t.Status == "error" {
			return SingleResult{Success: false, Error: t.Message}
		}
	}
	return SingleResult{Success: true}
}

func newGatewayMessage(token string, msg Message) gatewayMessage {
	data := msg.Data
	if data == nil {
		data = map[string]any{}
	}
	return gatewayMessage{
		To:       token,
		Sound:    "default",
		Title:    msg.Title,
		Body:     msg.Body,
		Data:     data,
		Priority: "high",
	}
}

func (g *Gateway) post(ctx context.Context, body any) (*gatewayResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("received non-2xx status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var out gatewayResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gateway response: %w", err)
	}
	return &out, nil
}
