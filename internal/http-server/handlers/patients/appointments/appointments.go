package appointments

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"agenda-service/api"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"
)

type HistoryLister interface {
	ListPatientAppointments(ctx context.Context, patientID, doctorID string) ([]*api.BookingResponse, error)
}

// New serves a patient's appointment history, optionally narrowed to
// one doctor. Interval denials are explained against this view.
func New(log *slog.Logger, lister HistoryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.patients.appointments.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		patientID := chi.URLParam(r, "patientID")
		doctorID := r.URL.Query().Get("doctor_id")

		resp, err := lister.ListPatientAppointments(r.Context(), patientID, doctorID)
		if err != nil {
			log.Error("failed to list patient appointments", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to list patient appointments"))
			return
		}

		render.JSON(w, r, resp)
	}
}
