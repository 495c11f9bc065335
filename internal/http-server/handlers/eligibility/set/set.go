package set

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"agenda-service/api"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"
)

type EligibilitySetter interface {
	SetAgeEligibility(ctx context.Context, doctorID string, req *api.AgeEligibilityDTO) (*api.AgeEligibilityDTO, error)
}

func New(log *slog.Logger, setter EligibilitySetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.eligibility.set.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		doctorID := chi.URLParam(r, "doctorID")

		var req api.AgeEligibilityDTO
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
			return
		}

		resp, err := setter.SetAgeEligibility(r.Context(), doctorID, &req)
		if err != nil {
			if errors.Is(err, response.ErrValidation) {
				log.Info("invalid age eligibility", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.VALIDATION, err.Error()))
				return
			}
			log.Error("failed to set age eligibility", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to set age eligibility"))
			return
		}

		log.Info("age eligibility updated", slog.String("doctor_id", doctorID))

		render.JSON(w, r, resp)
	}
}
