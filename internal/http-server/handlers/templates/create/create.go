package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"agenda-service/api"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"
)

type TemplateCreator interface {
	CreateAvailabilityTemplate(ctx context.Context, req *api.AvailabilityTemplateRequest) (*api.AvailabilityTemplateResponse, error)
}

func New(log *slog.Logger, creator TemplateCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.AvailabilityTemplateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
			return
		}

		resp, err := creator.CreateAvailabilityTemplate(r.Context(), &req)
		if err != nil {
			if errors.Is(err, response.ErrValidation) {
				log.Info("invalid template", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.VALIDATION, err.Error()))
				return
			}
			log.Error("failed to create template", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to create template"))
			return
		}

		log.Info("template created", slog.String("id", resp.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp)
	}
}
