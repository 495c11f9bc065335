package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"
)

type BookingCanceller interface {
	CancelBooking(ctx context.Context, id string) error
}

// New cancels a booking; the slot frees immediately.
func New(log *slog.Logger, canceller BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.cancel.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if err := canceller.CancelBooking(r.Context(), id); err != nil {
			if errors.Is(err, response.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.NOT_FOUND, "booking not found"))
				return
			}
			log.Error("failed to cancel booking", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to cancel booking"))
			return
		}

		log.Info("booking cancelled", slog.String("id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}
