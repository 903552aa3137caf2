package controllers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"starlit/starlit/sources/psql/models"
	"starlit/starlit/types"
	"starlit/starlit/utils/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InferenceGateway is the boundary to the external inference service.
type InferenceGateway interface {
	Infer(ctx context.Context, query, modelName, correlationID string) (string, error)
}

// ExchangeStore is the durable per-user log of (query, answer) pairs.
type ExchangeStore interface {
	Append(ctx context.Context, userID int, query, answer string) (*models.Exchange, error)
	ListByUser(ctx context.Context, userID int) ([]models.Exchange, error)
}

// Publisher fans one payload out to the user's live connections.
type Publisher interface {
	Publish(ctx context.Context, userID int, payload interface{}) int
}

type ChatController struct {
	gateway   InferenceGateway
	exchanges ExchangeStore
	rooms     Publisher
}

func NewChatController(gateway InferenceGateway, exchanges ExchangeStore, rooms Publisher) *ChatController {
	return &ChatController{
		gateway:   gateway,
		exchanges: exchanges,
		rooms:     rooms,
	}
}

// AddChat runs one submission end-to-end: validate, infer, persist, fan out.
//
// Persistence is the source of truth; the room publication is a second,
// best-effort delivery of the same answer for the user's other live
// connections. A publication failure therefore never fails the request,
// while anything up to and including the append does.
func (c *ChatController) AddChat(ctx context.Context, userID int, req types.ChatRequest) (*types.ChatResponse, error) {
	defer logging.LogDuration(ctx, "chat_add_chat")()

	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: user query is required", types.ErrValidation)
	}
	if strings.TrimSpace(req.ModelName) == "" {
		return nil, fmt.Errorf("%w: model_name is required", types.ErrValidation)
	}

	correlationID := uuid.New().String()

	answer, err := c.gateway.Infer(ctx, req.Query, req.ModelName, correlationID)
	if err != nil {
		// nothing persisted, nothing published
		return nil, err
	}

	_, err = c.exchanges.Append(ctx, userID, req.Query, answer)
	if err != nil {
		// the inference succeeded but the exchange is not stored; the
		// answer is discarded and the caller sees a failure
		return nil, fmt.Errorf("%w: %v", types.ErrPersistence, err)
	}

	delivered := c.rooms.Publish(ctx, userID, types.Notification{
		Type:          types.NotificationType,
		Query:         req.Query,
		Answer:        answer,
		CorrelationID: correlationID,
	})
	logging.AppLogger.Info("exchange published",
		zap.Int("user_id", userID),
		zap.String("correlation_id", correlationID),
		zap.Int("delivered", delivered),
	)

	return &types.ChatResponse{Answer: answer, CorrelationID: correlationID}, nil
}

// GetHistory returns the user's exchanges oldest-first. An empty history is
// an empty slice with no error.
func (c *ChatController) GetHistory(ctx context.Context, userID int) ([]types.ExchangeView, error) {
	exchanges, err := c.exchanges.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrPersistence, err)
	}
	views := make([]types.ExchangeView, 0, len(exchanges))
	for _, e := range exchanges {
		views = append(views, types.ExchangeView{
			Query:     e.UserMessage,
			Answer:    e.AIMessage,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return views, nil
}
