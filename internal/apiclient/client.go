// Package apiclient is the Go client for the taskhub REST API. The
// session rides in the cookie jar, so callers never touch tokens.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/idrissbado/taskhub/internal/domain/task"
	"github.com/idrissbado/taskhub/internal/domain/user"
)

// RequestFailed is the single error shape callers see for any
// non-success response. Message is the server-supplied string when the
// error envelope decodes, otherwise a generic fallback.
type RequestFailed struct {
	Status  int
	Message string
}

func (e *RequestFailed) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)

	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		httpc: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (user.User, error) {
	var u user.User

	err := c.do(ctx, http.MethodPost, "/api/users/register", registerPayload{Name: name, Email: email, Password: password}, &u)

	return u, err
}

func (c *Client) Login(ctx context.Context, email, password string) (user.User, error) {
	var u user.User

	err := c.do(ctx, http.MethodPost, "/api/users/login", loginPayload{Email: email, Password: password}, &u)

	return u, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/users/logout", nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (user.User, error) {
	var u user.User

	err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &u)

	return u, err
}

func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task

	err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks)

	return tasks, err
}

func (c *Client) GetTask(ctx context.Context, id string) (task.Task, error) {
	var t task.Task

	err := c.do(ctx, http.MethodGet, "/api/tasks/"+id, nil, &t)

	return t, err
}

func (c *Client) CreateTask(ctx context.Context, req task.CreateTaskRequest) (task.Task, error) {
	var t task.Task

	err := c.do(ctx, http.MethodPost, "/api/tasks", req, &t)

	return t, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, req task.UpdateTaskRequest) (task.Task, error) {
	var t task.Task

	err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, req, &t)

	return t, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

// do runs one round trip. No retries: every failure is terminal for
// the call.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader

	if body != nil {
		raw, err := json.Marshal(body)

		if err != nil {
			return err
		}

		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)

	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpc.Do(req)

	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &RequestFailed{
			Status:  res.StatusCode,
			Message: errorMessage(res),
		}
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}

func errorMessage(res *http.Response) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.NewDecoder(res.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}

	return http.StatusText(res.StatusCode)
}
