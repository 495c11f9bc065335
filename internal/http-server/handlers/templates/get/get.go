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

type TemplateGetter interface {
	GetAvailabilityTemplate(ctx context.Context, id string) (*api.AvailabilityTemplateResponse, error)
	ListAvailabilityTemplates(ctx context.Context, doctorID string) ([]*api.AvailabilityTemplateResponse, error)
}

func New(log *slog.Logger, getter TemplateGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		resp, err := getter.GetAvailabilityTemplate(r.Context(), id)
		if err != nil {
			if errors.Is(err, response.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.NOT_FOUND, "template not found"))
				return
			}
			log.Error("failed to get template", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to get template"))
			return
		}

		render.JSON(w, r, resp)
	}
}

// NewList serves a doctor's full weekly template set.
func NewList(log *slog.Logger, getter TemplateGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.get.NewList"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		doctorID := r.URL.Query().Get("doctor_id")
		if doctorID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "doctor_id is required"))
			return
		}

		resp, err := getter.ListAvailabilityTemplates(r.Context(), doctorID)
		if err != nil {
			log.Error("failed to list templates", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to list templates"))
			return
		}

		render.JSON(w, r, resp)
	}
}
