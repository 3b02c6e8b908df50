package http_clients

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
)

// MessageServiceClient talks to the messages microservice.
type MessageServiceClient struct {
	serviceClient
}

func NewMessageServiceClient(baseURL string, timeout time.Duration, doer HTTPDoer, logger *slog.Logger) *MessageServiceClient {
	return &MessageServiceClient{serviceClient: newServiceClient("messages", baseURL, timeout, doer, logger)}
}

// CreateMessage stores msg on behalf of its sender and returns the stored copy.
func (c *MessageServiceClient) CreateMessage(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	return c.writeMessage(ctx, http.MethodPost, http.StatusCreated, msg)
}

// UpdateMessage overwrites the stored message with the same id.
func (c *MessageServiceClient) UpdateMessage(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	return c.writeMessage(ctx, http.MethodPut, http.StatusOK, msg)
}

func (c *MessageServiceClient) writeMessage(ctx context.Context, method string, want int, msg domain.Message) (*domain.Message, error) {
	rt := newRoute("/message/{sender}", msg.Sender)
	resp, err := c.do(ctx, method, rt, msg)
	if err != nil {
		return nil, err
	}
	if resp.status != want {
		return nil, c.unexpected(method, rt, resp.status)
	}
	var stored domain.Message
	if err := c.decode(method, rt, resp, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (c *MessageServiceClient) GetMessageByID(ctx context.Context, id int64) (*domain.Message, error) {
	rt := newRoute("/message/{id}", id)
	resp, err := c.do(ctx, http.MethodGet, rt, nil)
	if err != nil {
		return nil, err
	}
	switch resp.status {
	case http.StatusOK:
		var msg domain.Message
		if err := c.decode(http.MethodGet, rt, resp, &msg); err != nil {
			return nil, err
		}
		return &msg, nil
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		return nil, c.unexpected(http.MethodGet, rt, resp.status)
	}
}

func (c *MessageServiceClient) DeleteMessage(ctx context.Context, id int64) error {
	rt := newRoute("/message/{id}", id)
	resp, err := c.do(ctx, http.MethodDelete, rt, nil)
	if err != nil {
		return err
	}
	switch resp.status {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return c.unexpected(http.MethodDelete, rt, resp.status)
	}
}

// GetFolder lists one mailbox folder of the given user.
func (c *MessageServiceClient) GetFolder(ctx context.Context, folder domain.Folder, email string) ([]domain.Message, error) {
	rt := newRoute("/"+string(folder)+"/{email}", email)
	resp, err := c.do(ctx, http.MethodGet, rt, nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, c.unexpected(http.MethodGet, rt, resp.status)
	}
	var msgs []domain.Message
	if err := c.decode(http.MethodGet, rt, resp, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Search filters the inbox, sent and scheduled folders of the given user.
func (c *MessageServiceClient) Search(ctx context.Context, email string, filter domain.SearchFilter) (*domain.SearchResult, error) {
	rt := newRoute("/search/{email}", email)
	resp, err := c.do(ctx, http.MethodPost, rt, filter)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, c.unexpected(http.MethodPost, rt, resp.status)
	}
	var result domain.SearchResult
	if err := c.decode(http.MethodPost, rt, resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *MessageServiceClient) GetNotifications(ctx context.Context, email string) (*domain.Notifications, error) {
	rt := newRoute("/notifications/{email}", email)
	resp, err := c.do(ctx, http.MethodGet, rt, nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, c.unexpected(http.MethodGet, rt, resp.status)
	}
	var n domain.Notifications
	if err := c.decode(http.MethodGet, rt, resp, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
