package supporter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"apoiasync/entity"
	"apoiasync/impl/roster"
)

type fakeCore struct {
	linkResult  *entity.LinkResult
	linkErr     error
	checkResult *entity.CheckResult
	checkErr    error
}

func (f *fakeCore) LinkSupporter(_ context.Context, _ *entity.LinkParams) (*entity.LinkResult, error) {
	return f.linkResult, f.linkErr
}

func (f *fakeCore) CheckSupporter(_ context.Context, _ *entity.CheckParams) (*entity.CheckResult, error) {
	return f.checkResult, f.checkErr
}

type envelope struct {
	Success       bool            `json:"success"`
	StatusMessage string          `json:"status_message"`
	Data          json.RawMessage `json:"data"`
}

func doPost(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	var env envelope
	err := json.Unmarshal(w.Body.Bytes(), &env)
	assert.Equal(t, nil, err)
	return env
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLinkSuccess(t *testing.T) {
	core := &fakeCore{linkResult: &entity.LinkResult{
		CampaignId:  1,
		SupporterId: 101,
		TelegramId:  "555",
		Message:     "supporter 101 linked to telegram id 555 in campaign 1",
	}}

	w := doPost(Link(testLogger(), core),
		`{"campaign_id":1,"supporter_id":101,"telegram_id":"555"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	assert.True(t, env.Success)

	var result entity.LinkResult
	assert.Equal(t, nil, json.Unmarshal(env.Data, &result))
	assert.Equal(t, int64(101), result.SupporterId)
}

func TestLinkSupporterNotFound(t *testing.T) {
	core := &fakeCore{linkErr: roster.ErrSupporterNotFound}

	w := doPost(Link(testLogger(), core),
		`{"campaign_id":1,"supporter_id":9999,"telegram_id":"555"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestLinkSupporterNotActive(t *testing.T) {
	core := &fakeCore{linkErr: roster.ErrSupporterNotActive}

	w := doPost(Link(testLogger(), core),
		`{"campaign_id":1,"supporter_id":102,"telegram_id":"555"}`)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestLinkInvalidRequest(t *testing.T) {
	core := &fakeCore{}

	w := doPost(Link(testLogger(), core), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinkStoreFailure(t *testing.T) {
	core := &fakeCore{linkErr: errors.New("connection refused")}

	w := doPost(Link(testLogger(), core),
		`{"campaign_id":1,"supporter_id":101,"telegram_id":"555"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCheckActive(t *testing.T) {
	core := &fakeCore{checkResult: &entity.CheckResult{Active: true, Reason: "active supporter"}}

	w := doPost(Check(testLogger(), core),
		`{"campaign_id":1,"telegram_id":"555"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var result entity.CheckResult
	assert.Equal(t, nil, json.Unmarshal(decode(t, w).Data, &result))
	assert.True(t, result.Active)
	assert.Equal(t, "active supporter", result.Reason)
}

func TestCheckNotLinked(t *testing.T) {
	core := &fakeCore{checkResult: &entity.CheckResult{Active: false, Reason: "not linked to any supporter"}}

	w := doPost(Check(testLogger(), core),
		`{"campaign_id":1,"telegram_id":"unknown-token"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var result entity.CheckResult
	assert.Equal(t, nil, json.Unmarshal(decode(t, w).Data, &result))
	assert.False(t, result.Active)
	assert.Equal(t, "not linked to any supporter", result.Reason)
}

func TestCheckStoreFailure(t *testing.T) {
	core := &fakeCore{checkErr: errors.New("connection refused")}

	w := doPost(Check(testLogger(), core),
		`{"campaign_id":1,"telegram_id":"555"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
