package campaign

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"apoiasync/entity"
	"apoiasync/impl/core"
	"apoiasync/lib/api/response"
	"apoiasync/lib/sl"
)

type Core interface {
	Campaigns(ctx context.Context) ([]*entity.Campaign, error)
	CampaignSupporters(ctx context.Context, campaignId int64) ([]*entity.Supporter, error)
}

func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.campaign"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		campaigns, err := handler.Campaigns(r.Context())
		if err != nil {
			logger.Error("list campaigns", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list campaigns"))
			return
		}
		logger.Debug("campaigns listed", slog.Int("count", len(campaigns)))

		render.JSON(w, r, response.Ok(campaigns))
	}
}

func Supporters(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.campaign"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		campaignId, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid campaign id"))
			return
		}
		logger = logger.With(slog.Int64("campaign_id", campaignId))

		supporters, err := handler.CampaignSupporters(r.Context(), campaignId)
		if err != nil {
			if errors.Is(err, core.ErrCampaignNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Campaign not found"))
				return
			}
			logger.Error("list supporters", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list supporters"))
			return
		}
		logger.Debug("supporters listed", slog.Int("count", len(supporters)))

		render.JSON(w, r, response.Ok(supporters))
	}
}
