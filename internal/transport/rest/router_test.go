package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reviewpilot/internal/model"
	"reviewpilot/internal/service"
	"reviewpilot/internal/transport/rest/middleware"
	"reviewpilot/internal/transport/ws"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type nopSuggester struct{}

func (nopSuggester) Fetch(context.Context, string, string) (*model.FetchResult, error) {
	return &model.FetchResult{Reviews: []*model.CandidateReview{}, Source: model.PoolSourceCached}, nil
}

func (nopSuggester) Consume(context.Context, string) (*model.ConsumeResult, error) {
	return &model.ConsumeResult{Reviews: []*model.CandidateReview{}}, nil
}

func (nopSuggester) Stats(context.Context, string, string) (*model.PoolStats, error) {
	return &model.PoolStats{Threshold: 14}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *service.AuthService) {
	t.Helper()
	auth := service.NewAuthService("router-secret")
	hub := ws.NewHub(nil)
	t.Cleanup(hub.Close)
	return NewRouter(&Container{
		ReviewPool:         nopSuggester{},
		AuthService:        auth,
		WSHub:              hub,
		CORSAllowedOrigins: "https://app.example.com",
	}), auth
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)
	biz := primitive.NewObjectID().Hex()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/businesses/"+biz+"/review-suggestions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RequestID(t *testing.T) {
	router, _ := newTestRouter(t)
	biz := primitive.NewObjectID().Hex()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/businesses/"+biz+"/review-suggestions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(middleware.RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/v1/businesses/"+biz+"/review-suggestions", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_ConsumeRoute(t *testing.T) {
	router, _ := newTestRouter(t)
	id := primitive.NewObjectID().Hex()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/review-suggestions/"+id+"/consume", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/review-suggestions/"+id+"/consume", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_StatsRequiresOwnerToken(t *testing.T) {
	router, auth := newTestRouter(t)
	biz := primitive.NewObjectID().Hex()
	path := "/v1/businesses/" + biz + "/review-pool/stats"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := auth.IssueOwnerToken(primitive.NewObjectID().Hex())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+other)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	token, err := auth.IssueOwnerToken(biz)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"strategy":"","fingerprint":"","total":0,"consumed":0,"unconsumed":0,"threshold":14}`, rec.Body.String())
}

func TestRouter_WebSocketUpgradeThroughMiddleware(t *testing.T) {
	router, auth := newTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	biz := primitive.NewObjectID().Hex()
	token, err := auth.IssueOwnerToken(biz)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/businesses/" + biz + "?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var hello ws.Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, ws.MsgConnected, hello.Type)
}
