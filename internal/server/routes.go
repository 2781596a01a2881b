package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/weekplan/weekplan/internal/api/v1"
	"github.com/weekplan/weekplan/internal/api/ws"
	"github.com/weekplan/weekplan/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, authSvc v1.AuthService) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, events v1.EventPublisher) {
	v1.RegisterTaskRoutes(api, store, events)
	v1.RegisterBoardRoutes(api, store)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/board", hub.ServeBoard)
}
