package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zaqqye/salon_backoffice/internal/apierr"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

// Watch subscribes to the change feed and calls fn for every event until
// ctx is done or the connection drops. resources narrows the feed.
func (c *Client) Watch(ctx context.Context, fn func(models.ChangeEvent), resources ...string) error {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/admin/events"
	if len(resources) > 0 {
		q := u.Query()
		q.Set("resources", strings.Join(resources, ","))
		u.RawQuery = q.Encode()
	}
	header := http.Header{}
	if tok := c.tokens.Token(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return &apierr.ServerError{Status: resp.StatusCode, Message: "change feed refused"}
		}
		return &apierr.NetworkError{Op: "watch", Err: err}
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c.log.Debug("watching change feed", "url", u.String())
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "read change event")
		}
		var ev models.ChangeEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.log.Warn("skipping malformed change event", "err", err)
			continue
		}
		fn(ev)
	}
}
