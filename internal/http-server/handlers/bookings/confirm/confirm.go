package confirm

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

type BookingConfirmer interface {
	ConfirmBooking(ctx context.Context, id string) error
}

func New(log *slog.Logger, confirmer BookingConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.confirm.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if err := confirmer.ConfirmBooking(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, response.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.NOT_FOUND, "booking not found"))
			case errors.Is(err, response.ErrConflict):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(response.CONFLICT, "cancelled booking cannot be confirmed"))
			default:
				log.Error("failed to confirm booking", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to confirm booking"))
			}
			return
		}

		log.Info("booking confirmed", slog.String("id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}
