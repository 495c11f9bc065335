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

type AttendanceRecorder interface {
	CreateAttendance(ctx context.Context, req *api.AttendanceRequest) (*api.AttendanceResponse, error)
}

func New(log *slog.Logger, recorder AttendanceRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.AttendanceRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
			return
		}

		resp, err := recorder.CreateAttendance(r.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, response.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.NOT_FOUND, "appointment not found"))
			case errors.Is(err, response.ErrValidation):
				log.Info("invalid attendance record", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.VALIDATION, err.Error()))
			default:
				log.Error("failed to record attendance", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to record attendance"))
			}
			return
		}

		log.Info("attendance recorded", slog.String("id", resp.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp)
	}
}
