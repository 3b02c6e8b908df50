package http_clients

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
)

// LotteryServiceClient talks to the lottery microservice.
type LotteryServiceClient struct {
	serviceClient
}

func NewLotteryServiceClient(baseURL string, timeout time.Duration, doer HTTPDoer, logger *slog.Logger) *LotteryServiceClient {
	return &LotteryServiceClient{serviceClient: newServiceClient("lottery", baseURL, timeout, doer, logger)}
}

type lotteryPlay struct {
	UserID int64 `json:"id"`
	Number int   `json:"lottery_number"`
}

// Play records the user's pick for the current draw.
// A 200 answer means the number was refused.
func (c *LotteryServiceClient) Play(ctx context.Context, userID int64, number int) error {
	rt := newRoute("/lottery")
	resp, err := c.do(ctx, http.MethodPost, rt, lotteryPlay{UserID: userID, Number: number})
	if err != nil {
		return err
	}
	switch resp.status {
	case http.StatusCreated:
		return nil
	case http.StatusOK:
		return domain.ErrNumberNotAllowed
	default:
		return c.unexpected(http.MethodPost, rt, resp.status)
	}
}

// HasPlayed reports whether the user already picked a number for the current draw.
func (c *LotteryServiceClient) HasPlayed(ctx context.Context, userID int64) (bool, error) {
	rt := newRoute("/lottery/exist/{id}", userID)
	resp, err := c.do(ctx, http.MethodGet, rt, nil)
	if err != nil {
		return false, err
	}
	switch resp.status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, c.unexpected(http.MethodGet, rt, resp.status)
	}
}
