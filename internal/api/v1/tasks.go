package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/weekplan/weekplan/internal/api/ws"
	"github.com/weekplan/weekplan/internal/domain"
	"github.com/weekplan/weekplan/internal/server/middleware"
	redisstore "github.com/weekplan/weekplan/internal/store/redis"
)

// forbiddenDetail is the single answer for both "doesn't exist" and "exists
// but isn't yours" on id-addressed task routes, so a probing caller learns
// nothing about foreign ids.
const forbiddenDetail = "forbidden or not found"

type ListTasksOutput struct {
	Body []*domain.Task
}

type CreateTaskInput struct {
	Body struct {
		Title     string           `json:"title" minLength:"1" maxLength:"2000" doc:"Task title (wire form; may be ciphertext)"`
		ColumnID  domain.ColumnID  `json:"columnId,omitempty" doc:"Board lane, defaults to today"`
		Workspace domain.Workspace `json:"type,omitempty" doc:"Workspace tag, defaults to pro"`
		Position  float64          `json:"position,omitempty" doc:"Fractional sort key, defaults to creation time"`
		Subtasks  []domain.Subtask `json:"subtasks,omitempty" doc:"Initial subtask list"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Title     *string           `json:"title,omitempty" doc:"Task title"`
		ColumnID  *domain.ColumnID  `json:"columnId,omitempty" doc:"Board lane"`
		Workspace *domain.Workspace `json:"type,omitempty" doc:"Workspace tag"`
		Completed *bool             `json:"completed,omitempty" doc:"Completion flag"`
		Position  *float64          `json:"position,omitempty" doc:"Fractional sort key"`
		Subtasks  *[]domain.Subtask `json:"subtasks,omitempty" doc:"Full subtask list replacement"`
	}
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

// RegisterTaskRoutes wires the task CRUD surface. Any ownership mismatch on
// id-addressed routes answers 403 with a generic body; the repository runs
// under row-level security so the check holds even if a handler forgets it.
// events may be nil (no live updates configured).
func RegisterTaskRoutes(api huma.API, store DataStore, events EventPublisher) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List the caller's tasks sorted by position",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, _ *struct{}) (*ListTasksOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing session")
		}

		tasks, err := store.Tasks().ListByUser(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}
		if tasks == nil {
			tasks = []*domain.Task{}
		}

		return &ListTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Fetch a single task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing session")
		}

		t, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error403Forbidden(forbiddenDetail)
			}
			return nil, huma.Error500InternalServerError("failed to fetch task", err)
		}

		return &GetTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing session")
		}

		col := input.Body.ColumnID
		if col == "" {
			col = domain.ColumnToday
		}
		if !col.Valid() {
			return nil, huma.Error400BadRequest("unknown column: " + string(col))
		}

		workspace := input.Body.Workspace
		if workspace == "" {
			workspace = domain.WorkspacePro
		}
		if !workspace.Valid() {
			return nil, huma.Error400BadRequest("unknown workspace: " + string(workspace))
		}

		position := input.Body.Position
		if position <= 0 {
			position = float64(time.Now().UnixMilli())
		}

		subtasks := input.Body.Subtasks
		if subtasks == nil {
			subtasks = []domain.Subtask{}
		}

		// The server owns identity: a fresh id replaces whatever temporary
		// id the client rendered with, and userId always comes from the
		// session, never the body.
		now := time.Now()
		t := &domain.Task{
			ID:        uuid.New(),
			UserID:    userID,
			Title:     input.Body.Title,
			ColumnID:  col,
			Workspace: workspace,
			Position:  position,
			Subtasks:  subtasks,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := store.Tasks().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		publishEvent(ctx, events, userID, ws.BoardEvent{Type: ws.EventTaskCreated, TaskID: t.ID, Data: t})

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Partially update a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing session")
		}

		if input.Body.ColumnID != nil && !input.Body.ColumnID.Valid() {
			return nil, huma.Error400BadRequest("unknown column: " + string(*input.Body.ColumnID))
		}
		if input.Body.Workspace != nil && !input.Body.Workspace.Valid() {
			return nil, huma.Error400BadRequest("unknown workspace: " + string(*input.Body.Workspace))
		}

		patch := domain.TaskPatch{
			Title:     input.Body.Title,
			ColumnID:  input.Body.ColumnID,
			Workspace: input.Body.Workspace,
			Completed: input.Body.Completed,
			Position:  input.Body.Position,
			Subtasks:  input.Body.Subtasks,
		}
		if patch == (domain.TaskPatch{}) {
			return nil, huma.Error400BadRequest("empty update")
		}

		t, err := store.Tasks().Update(ctx, userID, input.ID, patch)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error403Forbidden(forbiddenDetail)
			}
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		eventType := ws.EventTaskUpdated
		if patch.ColumnID != nil || patch.Position != nil {
			eventType = ws.EventTaskMoved
		}
		publishEvent(ctx, events, userID, ws.BoardEvent{Type: eventType, TaskID: t.ID, Data: t})

		return &UpdateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing session")
		}

		if err := store.Tasks().Delete(ctx, userID, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error403Forbidden(forbiddenDetail)
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		publishEvent(ctx, events, userID, ws.BoardEvent{Type: ws.EventTaskDeleted, TaskID: input.ID})

		return nil, nil
	})
}

// publishEvent pushes a board event to the owner's live channel. Event
// delivery is best effort; a publish failure never fails the request.
func publishEvent(ctx context.Context, events EventPublisher, userID uuid.UUID, event ws.BoardEvent) {
	if events == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event", event.Type).Msg("marshal board event")
		return
	}
	if err := events.Publish(ctx, redisstore.BoardChannel(userID), payload); err != nil {
		log.Warn().Err(err).Str("event", event.Type).Msg("publish board event")
	}
}
