package get

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

type ClosureGetter interface {
	GetClosure(ctx context.Context, id string) (*api.ClosureResponse, error)
	ListClosures(ctx context.Context, doctorID, from, to string) ([]*api.ClosureResponse, error)
}

func New(log *slog.Logger, getter ClosureGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.closures.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		resp, err := getter.GetClosure(r.Context(), id)
		if err != nil {
			if errors.Is(err, response.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.NOT_FOUND, "closure not found"))
				return
			}
			log.Error("failed to get closure", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to get closure"))
			return
		}

		render.JSON(w, r, resp)
	}
}

func NewList(log *slog.Logger, getter ClosureGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.closures.get.NewList"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		doctorID := q.Get("doctor_id")
		if doctorID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "doctor_id is required"))
			return
		}

		resp, err := getter.ListClosures(r.Context(), doctorID, q.Get("from"), q.Get("to"))
		if err != nil {
			if errors.Is(err, response.ErrBadRequest) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.BAD_REQUEST, err.Error()))
				return
			}
			log.Error("failed to list closures", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to list closures"))
			return
		}

		render.JSON(w, r, resp)
	}
}
