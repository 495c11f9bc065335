package evaluate

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

type BookingEvaluator interface {
	EvaluateBooking(ctx context.Context, req *api.BookingRequest) (*api.DecisionResponse, error)
}

// New is the dry-run endpoint: it always answers 200 with the decision,
// denied or not, so front-ends can explain a denial before the patient
// commits.
func New(log *slog.Logger, evaluator BookingEvaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.evaluate.New"

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

		decision, err := evaluator.EvaluateBooking(r.Context(), &req)
		if err != nil {
			if errors.Is(err, response.ErrBadRequest) {
				log.Info("invalid booking request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.BAD_REQUEST, err.Error()))
				return
			}
			log.Error("failed to evaluate booking", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to evaluate booking"))
			return
		}

		render.JSON(w, r, decision)
	}
}
