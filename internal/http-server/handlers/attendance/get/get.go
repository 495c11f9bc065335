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

type AttendanceGetter interface {
	GetAttendance(ctx context.Context, id string) (*api.AttendanceResponse, error)
	ListAttendance(ctx context.Context, doctorID, from, to string) ([]*api.AttendanceResponse, error)
}

func New(log *slog.Logger, getter AttendanceGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		resp, err := getter.GetAttendance(r.Context(), id)
		if err != nil {
			if errors.Is(err, response.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.NOT_FOUND, "attendance record not found"))
				return
			}
			log.Error("failed to get attendance", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to get attendance"))
			return
		}

		render.JSON(w, r, resp)
	}
}

func NewList(log *slog.Logger, getter AttendanceGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.get.NewList"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()

		resp, err := getter.ListAttendance(r.Context(), q.Get("doctor_id"), q.Get("from"), q.Get("to"))
		if err != nil {
			if errors.Is(err, response.ErrBadRequest) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.BAD_REQUEST, err.Error()))
				return
			}
			log.Error("failed to list attendance", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to list attendance"))
			return
		}

		render.JSON(w, r, resp)
	}
}
