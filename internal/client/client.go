package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/weekplan/weekplan/internal/board"
	"github.com/weekplan/weekplan/internal/domain"
)

// taskBody is the wire form of a task create / partial update. Pointer fields
// are omitted when unset so a PUT only touches what the mutation changed.
// There is deliberately no userId field: ownership is server-derived.
type taskBody struct {
	Title     *string           `json:"title,omitempty"`
	ColumnID  *domain.ColumnID  `json:"columnId,omitempty"`
	Workspace *domain.Workspace `json:"type,omitempty"`
	Completed *bool             `json:"completed,omitempty"`
	Position  *float64          `json:"position,omitempty"`
	Subtasks  *[]domain.Subtask `json:"subtasks,omitempty"`
}

// Client is the persistence gateway speaking the REST task API for one
// authenticated session. It satisfies board.Gateway.
type Client struct {
	baseURL string
	http    *http.Client
	session board.Session
	cipher  Cipher
}

// New creates a gateway bound to a session. cipher may be nil, in which case
// titles travel in the clear.
func New(baseURL string, session board.Session, cipher Cipher) *Client {
	if cipher == nil {
		cipher = NoopCipher{}
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
		cipher:  cipher,
	}
}

// FetchTasks loads the caller's tasks, sorted by position server-side, and
// reverses the title cipher before handing them to the store.
func (c *Client) FetchTasks(ctx context.Context) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks", nil, &tasks); err != nil {
		return nil, fmt.Errorf("client.FetchTasks: %w", err)
	}
	for _, t := range tasks {
		title, err := c.cipher.Decrypt(t.Title)
		if err != nil {
			return nil, fmt.Errorf("client.FetchTasks: decrypt: %w", err)
		}
		t.Title = title
		for i := range t.Subtasks {
			st, err := c.cipher.Decrypt(t.Subtasks[i].Title)
			if err != nil {
				return nil, fmt.Errorf("client.FetchTasks: decrypt subtask: %w", err)
			}
			t.Subtasks[i].Title = st
		}
	}
	return tasks, nil
}

// Persist serializes one mutation as a request. For Create the returned task
// is the server-assigned record with the plaintext title restored; for every
// other mutation kind it is nil.
func (c *Client) Persist(ctx context.Context, m board.Mutation) (*domain.Task, error) {
	switch m := m.(type) {
	case board.Create:
		return c.create(ctx, m)
	case board.Toggle:
		return nil, c.update(ctx, m.TaskID, taskBody{Completed: &m.Completed})
	case board.Rename:
		title, err := c.cipher.Encrypt(m.Title)
		if err != nil {
			return nil, fmt.Errorf("client.Persist: encrypt: %w", err)
		}
		return nil, c.update(ctx, m.TaskID, taskBody{Title: &title})
	case board.Move:
		return nil, c.update(ctx, m.TaskID, taskBody{ColumnID: &m.ColumnID, Position: &m.Position})
	case board.ReplaceSubtasks:
		subtasks, err := c.encryptSubtasks(m.Subtasks)
		if err != nil {
			return nil, fmt.Errorf("client.Persist: %w", err)
		}
		return nil, c.update(ctx, m.TaskID, taskBody{Subtasks: &subtasks})
	case board.Delete:
		return nil, c.delete(ctx, m.TaskID)
	case board.BulkClear:
		for _, id := range m.TaskIDs {
			if err := c.delete(ctx, id); err != nil {
				return nil, err
			}
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("client.Persist: unknown mutation %T", m)
	}
}

func (c *Client) create(ctx context.Context, m board.Create) (*domain.Task, error) {
	t := m.Task
	title, err := c.cipher.Encrypt(t.Title)
	if err != nil {
		return nil, fmt.Errorf("client.create: encrypt: %w", err)
	}
	subtasks, err := c.encryptSubtasks(t.Subtasks)
	if err != nil {
		return nil, fmt.Errorf("client.create: %w", err)
	}

	body := taskBody{
		Title:     &title,
		ColumnID:  &t.ColumnID,
		Workspace: &t.Workspace,
		Position:  &t.Position,
		Subtasks:  &subtasks,
	}

	var saved domain.Task
	if err := c.do(ctx, http.MethodPost, "/api/v1/tasks", body, &saved); err != nil {
		return nil, fmt.Errorf("client.create: %w", err)
	}

	// The server stores the wire form; hand the plaintext record back.
	saved.Title = t.Title
	saved.Subtasks = t.Subtasks
	return &saved, nil
}

func (c *Client) update(ctx context.Context, id uuid.UUID, body taskBody) error {
	if err := c.do(ctx, http.MethodPut, "/api/v1/tasks/"+id.String(), body, nil); err != nil {
		return fmt.Errorf("client.update: task %s: %w", id, err)
	}
	return nil
}

func (c *Client) delete(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, "/api/v1/tasks/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("client.delete: task %s: %w", id, err)
	}
	return nil
}

func (c *Client) encryptSubtasks(subtasks []domain.Subtask) ([]domain.Subtask, error) {
	out := make([]domain.Subtask, len(subtasks))
	for i, st := range subtasks {
		title, err := c.cipher.Encrypt(st.Title)
		if err != nil {
			return nil, fmt.Errorf("encrypt subtask: %w", err)
		}
		out[i] = domain.Subtask{ID: st.ID, Title: title, Completed: st.Completed}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.session.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
