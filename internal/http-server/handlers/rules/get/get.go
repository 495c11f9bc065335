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

type RuleSetGetter interface {
	GetRuleSet(ctx context.Context, doctorID string) (*api.RuleSetResponse, error)
}

func New(log *slog.Logger, getter RuleSetGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rules.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		doctorID := chi.URLParam(r, "doctorID")

		resp, err := getter.GetRuleSet(r.Context(), doctorID)
		if err != nil {
			log.Error("failed to get rule set", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to get rule set"))
			return
		}

		render.JSON(w, r, resp)
	}
}
