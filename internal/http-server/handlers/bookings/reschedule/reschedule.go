package reschedule

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"agenda-service/api"
	"agenda-service/internal/schedule"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"
)

type BookingRescheduler interface {
	RescheduleBooking(ctx context.Context, req *api.RescheduleRequest) (*api.BookingCommitResponse, error)
}

// New moves a booking to a new slot. The new slot is evaluated like a
// fresh booking; denials answer 422 with the decision payload.
func New(log *slog.Logger, rescheduler BookingRescheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.reschedule.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.RescheduleRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
			return
		}
		req.BookingID = chi.URLParam(r, "id")

		resp, err := rescheduler.RescheduleBooking(r.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, response.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.NOT_FOUND, "booking not found"))
			case errors.Is(err, response.ErrBadRequest):
				log.Info("invalid reschedule request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.BAD_REQUEST, err.Error()))
			case errors.Is(err, response.ErrConflict):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(response.CONFLICT, "cancelled booking cannot be rescheduled"))
			case errors.Is(err, response.ErrLocked):
				render.Status(r, http.StatusLocked)
				render.JSON(w, r, response.Error(response.LOCKED, "slot is being booked by another request"))
			default:
				log.Error("failed to reschedule booking", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to reschedule booking"))
			}
			return
		}

		if resp.Decision.Outcome == string(schedule.OutcomeDeny) {
			log.Info("reschedule denied", slog.String("reason", resp.Decision.Reason))
			if resp.Decision.Reason == string(schedule.ReasonSlotOccupied) {
				render.Status(r, http.StatusConflict)
			} else {
				render.Status(r, http.StatusUnprocessableEntity)
			}
			render.JSON(w, r, resp)
			return
		}

		log.Info("booking rescheduled", slog.String("id", req.BookingID))

		render.JSON(w, r, resp)
	}
}
