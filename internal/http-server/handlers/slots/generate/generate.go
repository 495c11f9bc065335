package generate

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

type SlotGenerator interface {
	GenerateSlots(ctx context.Context, req *api.SlotGenerateRequest) (string, error)
}

// New materializes a doctor's slots over a date range and answers with
// the generation job id.
func New(log *slog.Logger, generator SlotGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.generate.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.SlotGenerateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
			return
		}

		jobID, err := generator.GenerateSlots(r.Context(), &req)
		if err != nil {
			if errors.Is(err, response.ErrValidation) {
				log.Info("invalid generation request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.VALIDATION, err.Error()))
				return
			}
			log.Error("failed to generate slots", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to generate slots"))
			return
		}

		log.Info("slots generated",
			slog.String("doctor_id", req.DoctorID),
			slog.String("job_id", jobID),
		)

		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, map[string]string{"job_id": jobID})
	}
}
