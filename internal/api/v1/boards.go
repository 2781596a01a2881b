package v1

import (
	"context"
	"net/http"
	"sort"

	"github.com/danielgtaylor/huma/v2"

	"github.com/weekplan/weekplan/internal/domain"
	"github.com/weekplan/weekplan/internal/server/middleware"
)

type GetBoardInput struct {
	Workspace domain.Workspace `query:"type" doc:"Workspace tag, defaults to pro"`
}

// BoardColumns groups the caller's active tasks per lane, each lane sorted by
// position. Completed tasks are excluded from the lanes but stay addressable
// through the flat list endpoint.
type BoardColumns struct {
	Today    []*domain.Task `json:"today"`
	Tomorrow []*domain.Task `json:"tomorrow"`
	Week     []*domain.Task `json:"week"`
	Month    []*domain.Task `json:"month"`
	Later    []*domain.Task `json:"later"`
}

type GetBoardOutput struct {
	Body *BoardColumns
}

func RegisterBoardRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/board",
		Summary:     "Get the caller's board grouped by lane",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *GetBoardInput) (*GetBoardOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing session")
		}

		workspace := input.Workspace
		if workspace == "" {
			workspace = domain.WorkspacePro
		}
		if !workspace.Valid() {
			return nil, huma.Error400BadRequest("unknown workspace: " + string(workspace))
		}

		tasks, err := store.Tasks().ListByUser(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks for board", err)
		}

		board := &BoardColumns{
			Today:    make([]*domain.Task, 0),
			Tomorrow: make([]*domain.Task, 0),
			Week:     make([]*domain.Task, 0),
			Month:    make([]*domain.Task, 0),
			Later:    make([]*domain.Task, 0),
		}

		for _, t := range tasks {
			ws := t.Workspace
			if ws == "" {
				ws = domain.WorkspacePro
			}
			if ws != workspace || t.Completed {
				continue
			}
			switch t.ColumnID {
			case domain.ColumnToday:
				board.Today = append(board.Today, t)
			case domain.ColumnTomorrow:
				board.Tomorrow = append(board.Tomorrow, t)
			case domain.ColumnWeek:
				board.Week = append(board.Week, t)
			case domain.ColumnMonth:
				board.Month = append(board.Month, t)
			case domain.ColumnLater:
				board.Later = append(board.Later, t)
			}
		}

		for _, lane := range [][]*domain.Task{board.Today, board.Tomorrow, board.Week, board.Month, board.Later} {
			sort.SliceStable(lane, func(i, j int) bool { return lane[i].Position < lane[j].Position })
		}

		return &GetBoardOutput{Body: board}, nil
	})
}
