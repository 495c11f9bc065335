package update

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

type RuleSetReplacer interface {
	ReplaceRuleSet(ctx context.Context, doctorID string, req *api.RuleSetRequest) (*api.RuleSetResponse, error)
}

// New replaces a doctor's whole rule set. Invalid configurations,
// including capacity-graph cycles, reject with a validation error and
// leave the stored rules untouched.
func New(log *slog.Logger, replacer RuleSetReplacer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rules.update.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		doctorID := chi.URLParam(r, "doctorID")

		var req api.RuleSetRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
			return
		}

		resp, err := replacer.ReplaceRuleSet(r.Context(), doctorID, &req)
		if err != nil {
			if errors.Is(err, response.ErrValidation) {
				log.Info("rule set rejected", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(response.VALIDATION, err.Error()))
				return
			}
			log.Error("failed to replace rule set", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to replace rule set"))
			return
		}

		log.Info("rule set replaced", slog.String("doctor_id", doctorID))

		render.JSON(w, r, resp)
	}
}
