package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"feastfox/internal/models"
)

// WatchChanges subscribes to the server's change feed. The channel is closed
// when ctx is done or the connection drops.
func (c *Client) WatchChanges(ctx context.Context) (<-chan models.ChangeEvent, error) {
	wsURL := c.baseURL + "/ws/meals"
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, newRequestFailed(resp)
		}
		return nil, fmt.Errorf("failed to dial change feed: %w", err)
	}

	events := make(chan models.ChangeEvent)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(events)
		for {
			var ev models.ChangeEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil {
					log.Debug().Err(err).Msg("change feed closed")
				}
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
