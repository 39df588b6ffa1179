package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"foodcart_back_end/internal/events"
	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	livePingInterval = 30 * time.Second
	liveWriteTimeout = 10 * time.Second
)

type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// LiveHandler streams order status changes to connected clients. Customers
// receive their own orders; restaurant owners also receive every order of
// their restaurant.
type LiveHandler struct {
	feed        Subscriber
	restaurants services.RestaurantService
	upgrader    websocket.Upgrader
	logger      zerolog.Logger
}

func NewLiveHandler(feed Subscriber, restaurants services.RestaurantService, allowedOrigins []string, logger zerolog.Logger) *LiveHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &LiveHandler{
		feed:        feed,
		restaurants: restaurants,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(origins) == 0 || origins[origin]
			},
		},
		logger: logger.With().Str("handler", "live").Logger(),
	}
}

func (h *LiveHandler) channels(ctx context.Context, actor models.Actor) ([]string, error) {
	channels := []string{events.UserChannel(actor.UserID.Hex())}

	restaurant, err := h.restaurants.Mine(ctx, actor)
	switch {
	case err == nil:
		channels = append(channels, events.RestaurantChannel(restaurant.ID.Hex()))
	case !errors.Is(err, models.ErrRestaurantNotFound):
		return nil, err
	}
	return channels, nil
}

// GET /orders/live
func (h *LiveHandler) Stream(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	channels, err := h.channels(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := h.feed.Subscribe(ctx, channels...)
	defer pubsub.Close()
	// Wait for the subscription so no event published after the handshake is lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		h.logger.Error().Err(err).Msg("live feed subscribe failed")
		return
	}

	// The read loop only exists to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	log := h.logger.With().Str("user_id", actor.UserID.Hex()).Logger()
	log.Debug().Strs("channels", channels).Msg("live feed connected")

	if err := h.write(conn, func() error {
		return conn.WriteJSON(gin.H{"type": "connected", "channels": channels})
	}); err != nil {
		return
	}

	ticker := time.NewTicker(livePingInterval)
	defer ticker.Stop()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("live feed disconnected")
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := h.write(conn, func() error {
				return conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload))
			}); err != nil {
				return
			}
		case <-ticker.C:
			if err := h.write(conn, func() error {
				return conn.WriteMessage(websocket.PingMessage, nil)
			}); err != nil {
				return
			}
		}
	}
}

func (h *LiveHandler) write(conn *websocket.Conn, fn func() error) error {
	conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return fn()
}
