package get

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

type EligibilityGetter interface {
	GetAgeEligibility(ctx context.Context, doctorID string) (*api.AgeEligibilityDTO, error)
}

func New(log *slog.Logger, getter EligibilityGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.eligibility.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		doctorID := chi.URLParam(r, "doctorID")

		resp, err := getter.GetAgeEligibility(r.Context(), doctorID)
		if err != nil {
			log.Error("failed to get age eligibility", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to get age eligibility"))
			return
		}

		render.JSON(w, r, resp)
	}
}
