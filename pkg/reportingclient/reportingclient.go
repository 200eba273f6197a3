package reportingclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/common/errs"
	"github.com/treasury-network/treasury-engine/pkg/httpclient"
	"github.com/treasury-network/treasury-engine/pkg/logger"
)

type Config struct {
	Disabled   bool   `mapstructure:"disabled"`
	BaseURL    string `mapstructure:"base_url"`
	Name       string `mapstructure:"name"`
	WebsiteURL string `mapstructure:"website_url"`
}

type ReportingClient struct {
	httpClient *httpclient.Client
	config     Config
}

const defaultBaseURL = "https://reporting.treasury.network"

func New(config Config) (*ReportingClient, error) {
	baseURL := utils.Default(config.BaseURL, defaultBaseURL)
	httpClient, err := httpclient.New(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client")
	}
	if config.Name == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "reporting.name config is required if reporting is enabled")
	}
	return &ReportingClient{
		httpClient: httpClient,
		config:     config,
	}, nil
}

type SubmitRunReportPayload struct {
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	ClientVersion string    `json:"clientVersion"`
	DBVersion     int       `json:"dbVersion"`
	RunId         int64     `json:"runId"`
	Status        string    `json:"status"`
	Year          int       `json:"year"`
	Quarter       int       `json:"quarter"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	WebsiteURL    string    `json:"websiteURL,omitempty"`
}

func (r *ReportingClient) SubmitRunReport(ctx context.Context, payload SubmitRunReportPayload) error {
	payload.Name = r.config.Name
	payload.WebsiteURL = r.config.WebsiteURL
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "can't marshal payload")
	}
	resp, err := r.httpClient.Post(ctx, "/v1/report/run", httpclient.RequestOptions{
		Body: body,
	})
	if err != nil {
		return errors.Wrap(err, "can't send request")
	}
	if resp.StatusCode() >= 400 {
		logger.WarnContext(ctx, "failed to submit run report", slog.Any("payload", payload), slog.Any("responseBody", resp.Body()))
		return nil
	}
	logger.DebugContext(ctx, "run report submitted", slog.Any("payload", payload))
	return nil
}
