package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"agenda-service/api"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"
)

type TemplateUpdater interface {
	UpdateAvailabilityTemplate(ctx context.Context, id string, req *api.AvailabilityTemplateRequest) (*api.AvailabilityTemplateResponse, error)
}

func New(log *slog.Logger, updater TemplateUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.update.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		var req api.AvailabilityTemplateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
			return
		}

		resp, err := updater.UpdateAvailabilityTemplate(r.Context(), id, &req)
		if err != nil {
			switch {
			case errors.Is(err, response.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.NOT_FOUND, "template not found"))
			case errors.Is(err, response.ErrValidation):
				log.Info("invalid template", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.VALIDATION, err.Error()))
			default:
				log.Error("failed to update template", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to update template"))
			}
			return
		}

		log.Info("template updated", slog.String("id", id))

		render.JSON(w, r, resp)
	}
}
