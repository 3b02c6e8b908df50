package http_clients

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
)

// UserServiceClient talks to the users microservice.
type UserServiceClient struct {
	serviceClient
}

func NewUserServiceClient(baseURL string, timeout time.Duration, doer HTTPDoer, logger *slog.Logger) *UserServiceClient {
	return &UserServiceClient{serviceClient: newServiceClient("users", baseURL, timeout, doer, logger)}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUser registers a user. A 200 answer means the e-mail is already taken.
func (c *UserServiceClient) CreateUser(ctx context.Context, u domain.NewUser) (*domain.User, error) {
	rt := newRoute("/user")
	resp, err := c.do(ctx, http.MethodPost, rt, u)
	if err != nil {
		return nil, err
	}
	switch resp.status {
	case http.StatusCreated:
		var created domain.User
		if err := c.decode(http.MethodPost, rt, resp, &created); err != nil {
			return nil, err
		}
		return &created, nil
	case http.StatusOK:
		return nil, domain.ErrEmailTaken
	default:
		return nil, c.unexpected(http.MethodPost, rt, resp.status)
	}
}

func (c *UserServiceClient) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return c.getUser(ctx, newRoute("/user/{id}", id))
}

func (c *UserServiceClient) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return c.getUser(ctx, newRoute("/user_email/{email}", email))
}

func (c *UserServiceClient) getUser(ctx context.Context, rt route) (*domain.User, error) {
	resp, err := c.do(ctx, http.MethodGet, rt, nil)
	if err != nil {
		return nil, err
	}
	switch resp.status {
	case http.StatusOK:
		var u domain.User
		if err := c.decode(http.MethodGet, rt, resp, &u); err != nil {
			return nil, err
		}
		return &u, nil
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		return nil, c.unexpected(http.MethodGet, rt, resp.status)
	}
}

// GetAllUsers lists every registered user.
func (c *UserServiceClient) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return c.listUsers(ctx, http.MethodGet, newRoute("/users"))
}

// SearchUsers lists users whose e-mail or name matches input.
func (c *UserServiceClient) SearchUsers(ctx context.Context, input string) ([]domain.User, error) {
	return c.listUsers(ctx, http.MethodPost, newRoute("/search_users/{input}", input))
}

func (c *UserServiceClient) listUsers(ctx context.Context, method string, rt route) ([]domain.User, error) {
	resp, err := c.do(ctx, method, rt, nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, c.unexpected(method, rt, resp.status)
	}
	var users []domain.User
	if err := c.decode(method, rt, resp, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetBadwords returns the words the user refuses to receive.
func (c *UserServiceClient) GetBadwords(ctx context.Context, userID int64) ([]string, error) {
	rt := newRoute("/badwords/{id}", userID)
	resp, err := c.do(ctx, http.MethodGet, rt, nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, c.unexpected(http.MethodGet, rt, resp.status)
	}
	var words []string
	if err := c.decode(http.MethodGet, rt, resp, &words); err != nil {
		return nil, err
	}
	return words, nil
}

// GetBlacklist returns the e-mails of the senders the user has blocked.
func (c *UserServiceClient) GetBlacklist(ctx context.Context, userID int64) ([]string, error) {
	rt := newRoute("/blacklist/{id}", userID)
	resp, err := c.do(ctx, http.MethodGet, rt, nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, c.unexpected(http.MethodGet, rt, resp.status)
	}
	var blocked []domain.User
	if err := c.decode(http.MethodGet, rt, resp, &blocked); err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(blocked))
	for _, u := range blocked {
		emails = append(emails, u.Email)
	}
	return emails, nil
}

// Authenticate checks credentials. 401 and 404 both mean ErrInvalidCredentials.
func (c *UserServiceClient) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	rt := newRoute("/authenticate")
	resp, err := c.do(ctx, http.MethodPost, rt, credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	switch resp.status {
	case http.StatusOK:
		var u domain.User
		if err := c.decode(http.MethodPost, rt, resp, &u); err != nil {
			return nil, err
		}
		return &u, nil
	case http.StatusUnauthorized, http.StatusNotFound:
		return nil, domain.ErrInvalidCredentials
	case http.StatusForbidden:
		return nil, domain.ErrUserBlocked
	default:
		return nil, c.unexpected(http.MethodPost, rt, resp.status)
	}
}

func (c *UserServiceClient) UpdateUser(ctx context.Context, id int64, upd domain.UserUpdate) (*domain.User, error) {
	rt := newRoute("/user/{id}", id)
	resp, err := c.do(ctx, http.MethodPut, rt, upd)
	if err != nil {
		return nil, err
	}
	switch resp.status {
	case http.StatusOK:
		var u domain.User
		if err := c.decode(http.MethodPut, rt, resp, &u); err != nil {
			return nil, err
		}
		return &u, nil
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		return nil, c.unexpected(http.MethodPut, rt, resp.status)
	}
}

// DeleteUser removes the account. Callers end the local session first.
func (c *UserServiceClient) DeleteUser(ctx context.Context, id int64) error {
	rt := newRoute("/user/{id}", id)
	resp, err := c.do(ctx, http.MethodDelete, rt, nil)
	if err != nil {
		return err
	}
	switch resp.status {
	case http.StatusAccepted:
		return nil
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return c.unexpected(http.MethodDelete, rt, resp.status)
	}
}

// ReportUser flags the account with the given e-mail for review.
func (c *UserServiceClient) ReportUser(ctx context.Context, email string) (*domain.User, error) {
	rt := newRoute("/report/{email}", email)
	resp, err := c.do(ctx, http.MethodPost, rt, nil)
	if err != nil {
		return nil, err
	}
	switch resp.status {
	case http.StatusOK:
		var u domain.User
		if err := c.decode(http.MethodPost, rt, resp, &u); err != nil {
			return nil, err
		}
		return &u, nil
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		return nil, c.unexpected(http.MethodPost, rt, resp.status)
	}
}
