package controllers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"starlit/starlit/sources/psql/models"
	"starlit/starlit/types"
	"starlit/starlit/utils/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logging.InitTestLogger()
}

type fakeGateway struct {
	answer string
	err    error
	calls  int
}

func (g *fakeGateway) Infer(_ context.Context, query, modelName, correlationID string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

type fakeStore struct {
	appendErr error
	listErr   error
	appended  []models.Exchange
}

func (s *fakeStore) Append(_ context.Context, userID int, query, answer string) (*models.Exchange, error) {
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	e := models.Exchange{
		UserID:      userID,
		UserMessage: query,
		AIMessage:   answer,
		CreatedAt:   time.Now(),
	}
	s.appended = append(s.appended, e)
	return &e, nil
}

func (s *fakeStore) ListByUser(_ context.Context, userID int) ([]models.Exchange, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []models.Exchange{}
	for _, e := range s.appended {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakePublisher struct {
	payloads []interface{}
	users    []int
}

func (p *fakePublisher) Publish(_ context.Context, userID int, payload interface{}) int {
	p.users = append(p.users, userID)
	p.payloads = append(p.payloads, payload)
	return 1
}

func TestAddChatHappyPath(t *testing.T) {
	gateway := &fakeGateway{answer: "4"}
	store := &fakeStore{}
	rooms := &fakePublisher{}
	ctrl := NewChatController(gateway, store, rooms)

	resp, err := ctrl.AddChat(context.Background(), 7, types.ChatRequest{Query: "2+2?", ModelName: "m1"})

	require.NoError(t, err)
	assert.Equal(t, "4", resp.Answer)
	assert.NotEmpty(t, resp.CorrelationID)

	require.Len(t, store.appended, 1, "exactly one exchange persisted")
	assert.Equal(t, "2+2?", store.appended[0].UserMessage)
	assert.Equal(t, "4", store.appended[0].AIMessage)

	require.Len(t, rooms.payloads, 1, "exactly one notification published")
	assert.Equal(t, []int{7}, rooms.users)
	note := rooms.payloads[0].(types.Notification)
	assert.Equal(t, types.NotificationType, note.Type)
	assert.Equal(t, "2+2?", note.Query)
	assert.Equal(t, "4", note.Answer)
	assert.Equal(t, resp.CorrelationID, note.CorrelationID,
		"direct reply and notification must carry the same correlation id")
}

func TestAddChatBlankQuery(t *testing.T) {
	for _, query := range []string{"", "   ", "\t\n"} {
		gateway := &fakeGateway{answer: "4"}
		store := &fakeStore{}
		rooms := &fakePublisher{}
		ctrl := NewChatController(gateway, store, rooms)

		_, err := ctrl.AddChat(context.Background(), 7, types.ChatRequest{Query: query, ModelName: "m1"})

		assert.ErrorIs(t, err, types.ErrValidation)
		assert.Zero(t, gateway.calls, "no inference call for blank query")
		assert.Empty(t, store.appended)
		assert.Empty(t, rooms.payloads)
	}
}

func TestAddChatBlankModel(t *testing.T) {
	ctrl := NewChatController(&fakeGateway{}, &fakeStore{}, &fakePublisher{})

	_, err := ctrl.AddChat(context.Background(), 7, types.ChatRequest{Query: "hi", ModelName: " "})

	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestAddChatInferenceFailure(t *testing.T) {
	for _, sentinel := range []error{types.ErrInferenceUnavailable, types.ErrInferenceRejected} {
		gateway := &fakeGateway{err: fmt.Errorf("%w: boom", sentinel)}
		store := &fakeStore{}
		rooms := &fakePublisher{}
		ctrl := NewChatController(gateway, store, rooms)

		_, err := ctrl.AddChat(context.Background(), 7, types.ChatRequest{Query: "hi", ModelName: "m1"})

		assert.ErrorIs(t, err, sentinel)
		assert.Empty(t, store.appended, "nothing persisted on inference failure")
		assert.Empty(t, rooms.payloads, "nothing published on inference failure")
	}
}

func TestAddChatPersistenceFailure(t *testing.T) {
	gateway := &fakeGateway{answer: "4"}
	store := &fakeStore{appendErr: errors.New("connection reset")}
	rooms := &fakePublisher{}
	ctrl := NewChatController(gateway, store, rooms)

	_, err := ctrl.AddChat(context.Background(), 7, types.ChatRequest{Query: "hi", ModelName: "m1"})

	assert.ErrorIs(t, err, types.ErrPersistence)
	assert.Empty(t, rooms.payloads, "no publication after a failed append")
}

func TestGetHistoryRoundTrip(t *testing.T) {
	gateway := &fakeGateway{answer: "a"}
	store := &fakeStore{}
	ctrl := NewChatController(gateway, store, &fakePublisher{})

	queries := []string{"q1", "q2", "q3"}
	for _, q := range queries {
		_, err := ctrl.AddChat(context.Background(), 7, types.ChatRequest{Query: q, ModelName: "m1"})
		require.NoError(t, err)
	}

	history, err := ctrl.GetHistory(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, q := range queries {
		assert.Equal(t, q, history[i].Query, "history must preserve append order")
		assert.Equal(t, "a", history[i].Answer)
	}
}

func TestGetHistoryEmptyIsNotAnError(t *testing.T) {
	ctrl := NewChatController(&fakeGateway{}, &fakeStore{}, &fakePublisher{})

	history, err := ctrl.GetHistory(context.Background(), 99)

	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
