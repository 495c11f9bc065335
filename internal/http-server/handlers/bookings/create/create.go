package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"agenda-service/api"
	"agenda-service/internal/schedule"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"
)

type BookingCreator interface {
	CreateBooking(ctx context.Context, req *api.BookingRequest) (*api.BookingCommitResponse, error)
}

// New commits a booking. Denials are not errors: they answer 422 with
// the decision payload, except an exact-slot conflict discovered at
// commit time, which answers 409.
func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.BookingRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
			return
		}

		resp, err := creator.CreateBooking(r.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, response.ErrBadRequest):
				log.Info("invalid booking request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.BAD_REQUEST, err.Error()))
			case errors.Is(err, response.ErrLocked):
				log.Info("slot is locked by a concurrent commit")
				render.Status(r, http.StatusLocked)
				render.JSON(w, r, response.Error(response.LOCKED, "slot is being booked by another request"))
			default:
				log.Error("failed to create booking", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to create booking"))
			}
			return
		}

		if resp.Decision.Outcome == string(schedule.OutcomeDeny) {
			log.Info("booking denied",
				slog.String("reason", resp.Decision.Reason),
				slog.String("doctor_id", req.DoctorID),
			)
			if resp.Decision.Reason == string(schedule.ReasonSlotOccupied) {
				render.Status(r, http.StatusConflict)
			} else {
				render.Status(r, http.StatusUnprocessableEntity)
			}
			render.JSON(w, r, resp)
			return
		}

		log.Info("booking created",
			slog.String("doctor_id", req.DoctorID),
			slog.Int("appointments", len(resp.Bookings)),
		)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp)
	}
}
