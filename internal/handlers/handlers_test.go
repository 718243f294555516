package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KmSasikumar/EcommProductRecommender2/internal/config"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/middleware"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/ml"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/services"
	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		Recommend: config.RecommendConfig{DefaultCount: 10, MaxCount: 100},
	}
}

// testEnv builds a router around an in-memory service graph. A real trainer
// runs in-process so /v1/train issues working models without any backends.
type testEnv struct {
	router   *gin.Engine
	services *services.Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := testLogger()
	cfg := testConfig()

	registry := services.NewModelRegistry(logger)
	trainer := ml.NewFactorizationTrainer(ml.FactorizationConfig{
		Factors: 4,
		Epochs:  3,
		Seed:    1,
	}, logger)

	tenants := services.NewTenantService(registry, trainer, nil, logger)
	ranker := services.NewHybridRanker(&staticCatalog{}, nil, logger)
	recommendation := services.NewRecommendationService(registry, ranker, cfg.Recommend.DefaultCount, nil, logger)
	scheduler := services.NewRetrainScheduler(&staticRetrainer{}, registry, nil, nil, time.Minute, logger)
	auth := services.NewAuthService("test-secret", time.Hour, logger)

	svcs := &services.Services{
		Auth:           auth,
		Tenants:        tenants,
		Recommendation: recommendation,
		Ranker:         ranker,
		Registry:       registry,
		Scheduler:      scheduler,
	}

	h, err := New(cfg, svcs, logger)
	require.NoError(t, err)

	router := gin.New()
	v1 := router.Group("/v1")
	v1.POST("/train", h.TrainModel)

	tenant := v1.Group("")
	tenant.Use(middleware.APIKeyAuth(tenants, logger))
	tenant.POST("/recommendations", h.GetRecommendations)
	tenant.POST("/retrain", h.RequestRetrain)
	tenant.GET("/retrain/status", h.RetrainStatus)

	return &testEnv{router: router, services: svcs}
}

type staticCatalog struct{}

func (staticCatalog) Find(ctx context.Context, query string) ([]models.Product, error) {
	return nil, nil
}

type staticRetrainer struct{}

func (staticRetrainer) Retrain(ctx context.Context, tenantKey string) (*services.RetrainResult, error) {
	return &services.RetrainResult{Status: "completed", Generation: 2}, nil
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// trainTenant uploads a small CSV and returns the issued API key.
func (e *testEnv) trainTenant(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "dataset.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("user_id,item_id,interaction_score\nu1,i1,1.0\nu1,i2,2.5\nu2,i1,1.0\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/train", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.TrainResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.APIKey)
	assert.Equal(t, 2, resp.Users)
	assert.Equal(t, 2, resp.Items)
	return resp.APIKey
}

func TestTrainModel_IssuesAPIKey(t *testing.T) {
	env := newTestEnv(t)
	env.trainTenant(t)
}

func TestTrainModel_MissingFile(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/v1/train", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_FILE")
}

func TestGetRecommendations(t *testing.T) {
	env := newTestEnv(t)
	apiKey := env.trainTenant(t)

	body, _ := json.Marshal(models.RecommendationRequest{UserID: "u1", Count: 2})
	w := env.do(t, http.MethodPost, "/v1/recommendations", body, map[string]string{"X-API-Key": apiKey})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.RecommendationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	assert.Len(t, resp.Recommendations, 2)
}

func TestGetRecommendations_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	apiKey := env.trainTenant(t)

	body, _ := json.Marshal(models.RecommendationRequest{UserID: "stranger"})
	w := env.do(t, http.MethodPost, "/v1/recommendations", body, map[string]string{"X-API-Key": apiKey})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "USER_NOT_FOUND")
}

func TestGetRecommendations_MissingAPIKey(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(models.RecommendationRequest{UserID: "u1"})
	w := env.do(t, http.MethodPost, "/v1/recommendations", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetRecommendations_InvalidAPIKey(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(models.RecommendationRequest{UserID: "u1"})
	w := env.do(t, http.MethodPost, "/v1/recommendations", body, map[string]string{"X-API-Key": "bogus"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetRecommendations_ValidationError(t *testing.T) {
	env := newTestEnv(t)
	apiKey := env.trainTenant(t)

	w := env.do(t, http.MethodPost, "/v1/recommendations", []byte(`{"count": 5}`), map[string]string{"X-API-Key": apiKey})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestRetrain_Accepted(t *testing.T) {
	env := newTestEnv(t)
	apiKey := env.trainTenant(t)

	w := env.do(t, http.MethodPost, "/v1/retrain", nil, map[string]string{"X-API-Key": apiKey})
	assert.Equal(t, http.StatusAccepted, w.Code)

	env.services.Scheduler.Stop()

	w = env.do(t, http.MethodGet, "/v1/retrain/status", nil, map[string]string{"X-API-Key": apiKey})
	require.Equal(t, http.StatusOK, w.Code)

	var status models.TenantStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.RetrainStateIdle, status.State)
}
