package httphandler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treasury-network/treasury-engine/modules/treasury/api/httphandler"
	"github.com/treasury-network/treasury-engine/modules/treasury/config"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
	treasurymemory "github.com/treasury-network/treasury-engine/modules/treasury/repository/memory"
	"github.com/treasury-network/treasury-engine/modules/treasury/usecase"
	"github.com/treasury-network/treasury-engine/pkg/errorhandler"
)

func newTestApp(t *testing.T) (*fiber.App, *treasurymemory.Repository) {
	t.Helper()

	repo := treasurymemory.NewRepository()
	asset := config.AssetConfig{
		Name:             "Treasury Token",
		Symbol:           "TRS",
		Decimals:         9,
		FeeBasisPoints:   500,
		FeeCap:           800,
		BurnRate:         0.025,
		BurnStartQuarter: 1,
		TransferAmount:   10_000,
		MintAmount:       100_000,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: errorhandler.NewHTTPErrorHandler(),
	})
	handler := httphandler.New(asset, usecase.New(repo, nil))
	require.NoError(t, handler.Mount(app))
	return app, repo
}

func TestGetAsset(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/treasury/asset", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Error  *string `json:"error"`
		Result *struct {
			Name           string `json:"name"`
			Symbol         string `json:"symbol"`
			FeeBasisPoints uint16 `json:"feeBasisPoints"`
			FeeCap         uint64 `json:"feeCap"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Nil(t, body.Error)
	require.NotNil(t, body.Result)
	assert.Equal(t, "Treasury Token", body.Result.Name)
	assert.Equal(t, "TRS", body.Result.Symbol)
	assert.Equal(t, uint16(500), body.Result.FeeBasisPoints)
	assert.Equal(t, uint64(800), body.Result.FeeCap)
}

func TestGetRuns(t *testing.T) {
	app, repo := newTestApp(t)

	startedAt := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		_, err := repo.CreateRunReport(context.Background(), &entity.RunReport{
			StartedAt:  startedAt,
			FinishedAt: startedAt.Add(5 * time.Second),
			Status:     entity.RunStatusSucceeded,
			Year:       2026,
			Quarter:    3,
			Stages: []entity.StageOutcome{
				{Stage: entity.StageMinting, Status: entity.StageStatusSucceeded, Amount: 100_000},
			},
		})
		require.NoError(t, err)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/treasury/runs?limit=1", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Error  *string `json:"error"`
		Result *struct {
			Total int64 `json:"total"`
			List  []struct {
				Id     int64  `json:"id"`
				Status string `json:"status"`
				Stages []struct {
					Stage  string `json:"stage"`
					Amount uint64 `json:"amount"`
				} `json:"stages"`
			} `json:"list"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Nil(t, body.Error)
	require.NotNil(t, body.Result)
	assert.Equal(t, int64(2), body.Result.Total)
	require.Len(t, body.Result.List, 1)
	// newest first
	assert.Equal(t, int64(2), body.Result.List[0].Id)
	assert.Equal(t, "succeeded", body.Result.List[0].Status)
	require.Len(t, body.Result.List[0].Stages, 1)
	assert.Equal(t, "minting", body.Result.List[0].Stages[0].Stage)
	assert.Equal(t, uint64(100_000), body.Result.List[0].Stages[0].Amount)
}

func TestGetRunsRejectsExcessiveLimit(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/treasury/runs?limit=2000", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRunNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/treasury/runs/99", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "run not found", body.Error)
}
