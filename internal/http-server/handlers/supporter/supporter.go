package supporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"apoiasync/entity"
	"apoiasync/impl/roster"
	"apoiasync/lib/api/response"
	"apoiasync/lib/sl"
)

type Core interface {
	LinkSupporter(ctx context.Context, params *entity.LinkParams) (*entity.LinkResult, error)
	CheckSupporter(ctx context.Context, params *entity.CheckParams) (*entity.CheckResult, error)
}

func Link(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.supporter"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var params entity.LinkParams
		if err := render.Bind(r, &params); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}
		logger = logger.With(
			slog.Int64("campaign_id", params.CampaignId),
			slog.Int64("supporter_id", params.SupporterId),
		)

		result, err := handler.LinkSupporter(r.Context(), &params)
		if err != nil {
			switch {
			case errors.Is(err, roster.ErrSupporterNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Supporter not found for campaign"))
			case errors.Is(err, roster.ErrSupporterNotActive):
				render.Status(r, http.StatusPreconditionFailed)
				render.JSON(w, r, response.Error("Supporter is not active"))
			default:
				logger.Error("link supporter", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to link supporter"))
			}
			return
		}
		logger.Debug("supporter linked")

		render.JSON(w, r, response.Ok(result))
	}
}

func Check(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.supporter"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var params entity.CheckParams
		if err := render.Bind(r, &params); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}
		logger = logger.With(slog.Int64("campaign_id", params.CampaignId))

		result, err := handler.CheckSupporter(r.Context(), &params)
		if err != nil {
			logger.Error("check supporter", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to check supporter"))
			return
		}
		logger.Debug("supporter checked", slog.Bool("active", result.Active))

		render.JSON(w, r, response.Ok(result))
	}
}
