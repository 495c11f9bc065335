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

type ClosureCreator interface {
	CreateClosure(ctx context.Context, req *api.ClosureRequest) (*api.ClosureResponse, error)
}

func New(log *slog.Logger, creator ClosureCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.closures.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.ClosureRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
			return
		}

		resp, err := creator.CreateClosure(r.Context(), &req)
		if err != nil {
			if errors.Is(err, response.ErrValidation) {
				log.Info("invalid closure", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.VALIDATION, err.Error()))
				return
			}
			log.Error("failed to create closure", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to create closure"))
			return
		}

		log.Info("closure created", slog.String("id", resp.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp)
	}
}
