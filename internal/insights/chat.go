package insights

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/MarcoMadridG27/Thesaurus/internal/apiclient"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

var (
	schemePrefix = regexp.MustCompile(`^(?i)(https?|wss?)://`)
	localhostRE  = regexp.MustCompile(`localhost:\d+`)
	sessionPath  = regexp.MustCompile(`/chat/ws/(.+)$`)
)

type createSessionRequest struct {
	Context *model.ChatContext `json:"context"`
}

// CreateSession opens a chat session and resolves its stream endpoint.
func (c *Client) CreateSession(ctx context.Context, chatCtx *model.ChatContext) (*model.ChatSession, error) {
	req := apiclient.Request{
		Method: http.MethodPost,
		Path:   "chat/sessions",
		Op:     "create-session",
	}
	if chatCtx != nil {
		req.Body = createSessionRequest{Context: chatCtx}
	}

	var session model.ChatSession
	if err := c.api.Do(ctx, req, &session); err != nil {
		return nil, err
	}

	session.WebsocketURL = WebsocketURL(c.api.Base(), session)
	slog.Debug("Chat session created", "session_id", session.SessionID, "websocket_url", session.WebsocketURL)
	return &session, nil
}

// WebsocketURL derives the stream endpoint of a session. The insights base
// is trusted over whatever host the service reports: a session id is always
// mounted under the base, and a localhost URL is only kept when the base is
// local too.
func WebsocketURL(base string, s model.ChatSession) string {
	wsScheme := "ws://"
	if strings.HasPrefix(strings.ToLower(base), "https") {
		wsScheme = "wss://"
	}
	hostPath := schemePrefix.ReplaceAllString(base, "")
	fromSession := func(id string) string {
		return wsScheme + hostPath + "chat/ws/" + id
	}

	if s.SessionID != "" {
		return fromSession(url.PathEscape(s.SessionID))
	}
	if s.WebsocketURL == "" {
		return ""
	}

	trimmed := schemePrefix.ReplaceAllString(s.WebsocketURL, "")
	normalized := wsScheme + trimmed

	if localhostRE.MatchString(normalized) && !strings.Contains(base, "localhost") {
		if m := sessionPath.FindStringSubmatch(trimmed); m != nil {
			return fromSession(m[1])
		}
		slog.Warn("Chat service returned a localhost stream URL without a session id", "url", normalized)
	}
	return normalized
}

// History returns the server-side log of a session.
func (c *Client) History(ctx context.Context, sessionID string) (*model.ChatHistory, error) {
	var history model.ChatHistory
	err := c.get(ctx, "chat/sessions/"+url.PathEscape(sessionID)+"/history", "history", &history)
	if err != nil {
		return nil, err
	}
	if history.SessionID == "" {
		history.SessionID = sessionID
	}
	return &history, nil
}

// UpdateContext replaces the aggregate context of a session.
func (c *Client) UpdateContext(ctx context.Context, sessionID string, chatCtx model.ChatContext) error {
	return c.api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "chat/sessions/" + url.PathEscape(sessionID) + "/context",
		Op:     "update-context",
		Body:   chatCtx,
	}, nil)
}

// DeleteSession ends a session on the server.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.api.Do(ctx, apiclient.Request{
		Method: http.MethodDelete,
		Path:   "chat/sessions/" + url.PathEscape(sessionID),
		Op:     "delete-session",
	}, nil)
}

// ListSessions returns the active sessions. The service answers either with
// a bare array or with an object holding a sessions array.
func (c *Client) ListSessions(ctx context.Context) ([]model.ChatSession, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "chat/sessions", "list-sessions", &raw); err != nil {
		return nil, err
	}

	var sessions []model.ChatSession
	if err := json.Unmarshal(raw, &sessions); err == nil {
		return sessions, nil
	}

	var wrapped struct {
		Sessions []model.ChatSession `json:"sessions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Sessions == nil {
		wrapped.Sessions = []model.ChatSession{}
	}
	return wrapped.Sessions, nil
}
