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
	"agenda-service/internal/service"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"
)

type BookingGetter interface {
	GetBooking(ctx context.Context, id string) (*api.BookingResponse, error)
	ListBookings(ctx context.Context, filters service.BookingFilters) ([]*api.BookingResponse, error)
}

func New(log *slog.Logger, getter BookingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		resp, err := getter.GetBooking(r.Context(), id)
		if err != nil {
			if errors.Is(err, response.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.NOT_FOUND, "booking not found"))
				return
			}
			log.Error("failed to get booking", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to get booking"))
			return
		}

		render.JSON(w, r, resp)
	}
}

func NewList(log *slog.Logger, getter BookingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.get.NewList"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		filters := service.BookingFilters{
			DoctorID:  q.Get("doctor_id"),
			PatientID: q.Get("patient_id"),
			From:      q.Get("from"),
			To:        q.Get("to"),
			Status:    q.Get("status"),
		}

		resp, err := getter.ListBookings(r.Context(), filters)
		if err != nil {
			if errors.Is(err, response.ErrBadRequest) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.BAD_REQUEST, err.Error()))
				return
			}
			log.Error("failed to list bookings", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to list bookings"))
			return
		}

		render.JSON(w, r, resp)
	}
}
