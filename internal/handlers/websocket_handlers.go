package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
)

// OrderFeed attaches a websocket client to an organization's live order feed
type OrderFeed interface {
	ServeClient(w http.ResponseWriter, r *http.Request, orgID string) error
}

// WebsocketHandlers serves the kitchen display feed
type WebsocketHandlers struct {
	feed OrderFeed
}

func NewWebsocketHandlers(feed OrderFeed) *WebsocketHandlers {
	return &WebsocketHandlers{feed: feed}
}

// OrdersFeed handles GET /ws/orders
func (h *WebsocketHandlers) OrdersFeed(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	// the upgrader has already written the failure response
	_ = h.feed.ServeClient(c.Response(), c.Request(), orgID)
	return nil
}
