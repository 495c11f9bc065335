package delete

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

type BookingDeleter interface {
	DeleteBooking(ctx context.Context, id string) error
}

func New(log *slog.Logger, deleter BookingDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if err := deleter.DeleteBooking(r.Context(), id); err != nil {
			if errors.Is(err, response.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.NOT_FOUND, "booking not found"))
				return
			}
			log.Error("failed to delete booking", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to delete booking"))
			return
		}

		log.Info("booking deleted", slog.String("id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}
