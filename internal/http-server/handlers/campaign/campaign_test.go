package campaign

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"apoiasync/entity"
	"apoiasync/impl/core"
)

type fakeCore struct {
	campaigns     []*entity.Campaign
	campaignsErr  error
	supporters    []*entity.Supporter
	supportersErr error
}

func (f *fakeCore) Campaigns(_ context.Context) ([]*entity.Campaign, error) {
	return f.campaigns, f.campaignsErr
}

func (f *fakeCore) CampaignSupporters(_ context.Context, _ int64) ([]*entity.Supporter, error) {
	return f.supporters, f.supportersErr
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func newRouter(handler Core) *chi.Mux {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	router.Get("/v1/campaigns", List(log, handler))
	router.Get("/v1/campaigns/{id}/supporters", Supporters(log, handler))
	return router
}

func get(router *chi.Mux, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListCampaigns(t *testing.T) {
	router := newRouter(&fakeCore{campaigns: []*entity.Campaign{
		{Id: 1, Name: "Campanha 1", GroupLink: "https://t.me/joinchat/AAAAA1"},
		{Id: 2, Name: "Campanha 2", GroupLink: "https://t.me/joinchat/AAAAA2"},
	}})

	w := get(router, "/v1/campaigns")
	assert.Equal(t, http.StatusOK, w.Code)

	var env envelope
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)

	var campaigns []entity.Campaign
	assert.Equal(t, nil, json.Unmarshal(env.Data, &campaigns))
	assert.Equal(t, 2, len(campaigns))
}

func TestListSupporters(t *testing.T) {
	router := newRouter(&fakeCore{supporters: []*entity.Supporter{
		{CampaignId: 1, Id: 101, Name: "Apoiador 1", Status: entity.StatusActive},
	}})

	w := get(router, "/v1/campaigns/1/supporters")
	assert.Equal(t, http.StatusOK, w.Code)

	var env envelope
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &env))

	var supporters []entity.Supporter
	assert.Equal(t, nil, json.Unmarshal(env.Data, &supporters))
	assert.Equal(t, 1, len(supporters))
	assert.Equal(t, entity.StatusActive, supporters[0].Status)
}

func TestListSupportersUnknownCampaign(t *testing.T) {
	router := newRouter(&fakeCore{supportersErr: core.ErrCampaignNotFound})

	w := get(router, "/v1/campaigns/42/supporters")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSupportersInvalidId(t *testing.T) {
	router := newRouter(&fakeCore{})

	w := get(router, "/v1/campaigns/abc/supporters")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
