// Package matrix is a minimal Matrix client-server API wrapper covering
// what page delivery needs: sending m.room.message events with both a
// plain body and an HTML formatted_body, and validating credentials.
package matrix

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to one homeserver with one access token.
type Client struct {
	homeserverURL string
	accessToken   string
	httpClient    *http.Client
}

// NewClient builds a client for the given homeserver base URL (e.g.
// "https://matrix.example.org") and access token.
func NewClient(homeserverURL, accessToken string) *Client {
	return &Client{
		homeserverURL: homeserverURL,
		accessToken:   accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type messageContent struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format,omitempty"`
	FormattedBody string `json:"formatted_body,omitempty"`
}

// SendMessage posts one m.room.message event carrying body (plain text)
// and formattedBody (HTML) and returns the event ID. This is the
// production send callback for render.Paged: one call per page.
func (c *Client) SendMessage(ctx context.Context, roomID, body, formattedBody string) (string, error) {
	txnID, err := generateTxnID()
	if err != nil {
		return "", fmt.Errorf("generating transaction ID: %w", err)
	}

	content := messageContent{
		MsgType: "m.text",
		Body:    body,
	}
	if formattedBody != "" {
		content.Format = "org.matrix.custom.html"
		content.FormattedBody = formattedBody
	}

	// URLs are built by concatenation to avoid double-encoding path
	// segments that already contain URL-encoded characters.
	path := c.homeserverURL + "/_matrix/client/v3/rooms/" + url.PathEscape(roomID) +
		"/send/m.room.message/" + txnID

	var response struct {
		EventID string `json:"event_id"`
	}
	if err := c.do(ctx, http.MethodPut, path, content, &response); err != nil {
		return "", err
	}
	return response.EventID, nil
}

// WhoAmI validates the access token and returns the user ID.
func (c *Client) WhoAmI(ctx context.Context) (string, error) {
	var response struct {
		UserID string `json:"user_id"`
	}
	path := c.homeserverURL + "/_matrix/client/v3/account/whoami"
	if err := c.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return "", err
	}
	return response.UserID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		matrixErr := &Error{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, matrixErr); jsonErr != nil || matrixErr.Code == "" {
			return fmt.Errorf("matrix: HTTP %d: %s", resp.StatusCode, string(data))
		}
		return matrixErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// generateTxnID returns a unique transaction ID for event idempotency.
func generateTxnID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}
