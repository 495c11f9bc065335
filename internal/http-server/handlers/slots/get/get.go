package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"agenda-service/api"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"
)

type AvailabilityLister interface {
	ListAvailability(ctx context.Context, query *api.AvailabilityQuery) ([]*api.SlotResponse, error)
}

// New serves the reconciled availability view: every candidate slot in
// the range with its resolved free/booked/closed state.
func New(log *slog.Logger, lister AvailabilityLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()

		query := &api.AvailabilityQuery{
			DoctorID: q.Get("doctor_id"),
			Service:  q.Get("service"),
			From:     q.Get("from"),
			To:       q.Get("to"),
		}
		if query.DoctorID == "" || query.From == "" || query.To == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "doctor_id, from and to are required"))
			return
		}
		if preview := q.Get("preview"); preview != "" {
			n, err := strconv.Atoi(preview)
			if err != nil || n < 1 {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.BAD_REQUEST, "preview must be a positive integer"))
				return
			}
			query.Preview = n
		}

		slots, err := lister.ListAvailability(r.Context(), query)
		if err != nil {
			if errors.Is(err, response.ErrValidation) {
				log.Info("invalid availability query", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.VALIDATION, err.Error()))
				return
			}
			log.Error("failed to list availability", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to list availability"))
			return
		}

		render.JSON(w, r, slots)
	}
}
