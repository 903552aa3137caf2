// Go client for the starlit chat backend: submits queries over HTTP, keeps
// the local transcript reconciled, and listens for room notifications on a
// websocket so every open session of the same user sees each answer.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"starlit/starlit/types"
	httputils "starlit/starlit/utils/http"

	"github.com/coder/websocket"
)

type ChatClient struct {
	baseURL    string
	token      string
	httpClient *http.Client

	transcript *Transcript

	// Notify, when set before Connect, is invoked for every room
	// notification after it has been merged into the transcript.
	Notify func(types.Notification)

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
}

func NewChatClient(baseURL, token string) *ChatClient {
	return &ChatClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: http.DefaultClient,
		transcript: NewTranscript(),
	}
}

// Login exchanges a username for a token at the auth boundary.
func Login(ctx context.Context, baseURL, username string) (string, error) {
	var resp types.LoginResponse
	err := httputils.PostJSON(ctx, nil, baseURL+"/auth/login",
		types.LoginRequest{Username: username}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *ChatClient) Transcript() *Transcript {
	return c.transcript
}

// Send submits one query. The placeholder goes into the transcript before
// the request leaves; the direct reply only tags it with the correlation id
// and the answer itself arrives through the notification path. On a failed
// request the placeholder is marked failed rather than left pending.
func (c *ChatClient) Send(ctx context.Context, query, modelName string) (string, error) {
	idx, err := c.transcript.Submit(query)
	if err != nil {
		return "", err
	}

	var resp types.ChatResponse
	err = httputils.PostJSONWithAuth(ctx, c.httpClient, c.baseURL+"/chat/add_chat", c.token,
		types.ChatRequest{Query: query, ModelName: modelName}, &resp)
	if err != nil {
		c.transcript.Fail(idx)
		return "", err
	}
	c.transcript.Tag(idx, resp.CorrelationID)
	return resp.Answer, nil
}

// LoadHistory replaces the transcript with the durable history. Call on
// session start and after reconnect; stale pending rows are discarded.
func (c *ChatClient) LoadHistory(ctx context.Context) error {
	var views []types.ExchangeView
	err := httputils.GetJSON(ctx, c.httpClient, c.baseURL+"/chat/history", c.token, &views)
	if err != nil {
		return err
	}
	entries := make([]Entry, 0, len(views))
	for _, v := range views {
		answer := v.Answer
		entries = append(entries, Entry{Query: v.Query, Answer: &answer})
	}
	c.transcript.Replace(entries)
	return nil
}

// Connect dials the notification socket, joins the user's room, and starts
// the listener. The server derives the room from the token.
func (c *ChatClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	conn, _, err := websocket.Dial(ctx, c.baseURL+"/chat/ws?token="+c.token, nil)
	if err != nil {
		return err
	}
	join, _ := json.Marshal(types.JoinMessage{Type: types.JoinType})
	if err := conn.Write(ctx, websocket.MessageText, join); err != nil {
		conn.Close(websocket.StatusInternalError, "join failed")
		return err
	}

	c.conn = conn
	c.done = make(chan struct{})
	go c.listen(conn, c.done)
	return nil
}

func (c *ChatClient) listen(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	// a server-side drop must leave the client reconnectable: forget the
	// dead conn so the next Connect dials again
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn, c.done = nil, nil
		}
		c.mu.Unlock()
	}()
	ctx := context.Background()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var note types.Notification
		if err := json.Unmarshal(data, &note); err != nil || note.Type != types.NotificationType {
			continue
		}
		c.transcript.Resolve(note.Query, note.Answer, note.CorrelationID)
		if c.Notify != nil {
			c.Notify(note)
		}
	}
}

// Close tears down the notification socket and waits for the listener.
func (c *ChatClient) Close() {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.conn, c.done = nil, nil
	c.mu.Unlock()
	if conn == nil {
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}
