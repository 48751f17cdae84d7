package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LeoDroves/mtga-log-client/internal/config"
	"github.com/LeoDroves/mtga-log-client/internal/constants"
	"github.com/LeoDroves/mtga-log-client/internal/logger"
	"github.com/LeoDroves/mtga-log-client/pkg/circuitbreaker"
	"github.com/LeoDroves/mtga-log-client/pkg/metrics"
	"github.com/LeoDroves/mtga-log-client/pkg/models"
	"github.com/LeoDroves/mtga-log-client/pkg/retry"
)

// Client submits records to the collection API. Delivery is at-least-once:
// server errors are retried a bounded number of times, every other status is
// accepted as final, and no outcome ever surfaces as an error to the follow
// loop. Failures are visible only in logs and metrics.
type Client struct {
	host       string
	token      string
	httpClient *http.Client
	log        logger.Logger
	policy     retry.Policy
	breaker    *circuitbreaker.Wrapper
}

func NewClient(cfg config.APIConfig, retryCfg config.RetryConfig, breakerCfg config.BreakerConfig, token string, log logger.Logger) *Client {
	c := &Client{
		host:  cfg.Host,
		token: token,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		log: log,
		policy: retry.Policy{
			ExtraAttempts: retryCfg.ExtraAttempts,
			Interval:      retryCfg.Interval,
		},
	}

	if breakerCfg.Enabled {
		c.breaker = circuitbreaker.NewWrapper(circuitbreaker.Config{
			Name:         "collection-api",
			MaxRequests:  breakerCfg.MaxRequests,
			Interval:     breakerCfg.Interval,
			Timeout:      breakerCfg.Timeout,
			FailureRatio: breakerCfg.FailureRatio,
			MinRequests:  breakerCfg.MinRequests,
		})
	}

	return c
}

func (c *Client) PostUser(ctx context.Context, rec models.UserRecord, utcTime time.Time) {
	c.submit(ctx, constants.EndpointUser, "user", rec, utcTime)
}

func (c *Client) PostGame(ctx context.Context, rec models.GameRecord, utcTime time.Time) {
	c.submit(ctx, constants.EndpointGameResult, "game", rec, utcTime)
}

func (c *Client) PostEvent(ctx context.Context, rec models.EventRecord, utcTime time.Time) {
	c.submit(ctx, constants.EndpointEventResult, "event", rec, utcTime)
}

func (c *Client) PostDeck(ctx context.Context, rec models.DeckRecord, utcTime time.Time) {
	c.submit(ctx, constants.EndpointDeckSubmission, "deck", rec, utcTime)
}

func (c *Client) PostDraftPack(ctx context.Context, rec models.DraftPackRecord, utcTime time.Time) {
	c.submit(ctx, constants.EndpointDraftPack, "draft_pack", rec, utcTime)
}

func (c *Client) PostDraftPick(ctx context.Context, rec models.DraftPickRecord, utcTime time.Time) {
	c.submit(ctx, constants.EndpointDraftPick, "draft_pick", rec, utcTime)
}

func (c *Client) PostHumanDraftPick(ctx context.Context, rec models.HumanDraftPickRecord, utcTime time.Time) {
	c.submit(ctx, constants.EndpointHumanDraftPick, "human_draft_pick", rec, utcTime)
}

func (c *Client) PostCollection(ctx context.Context, rec models.CollectionRecord, utcTime time.Time) {
	c.submit(ctx, constants.EndpointCollection, "collection", rec, utcTime)
}

type response struct {
	status int
	body   string
}

func isServerError(status int) bool {
	return status >= 500 && status < 600
}

// submit attaches the common trailer fields, posts the record, and retries on
// server errors. The terminal response, whatever it is, is logged and the
// record is considered handled.
func (c *Client) submit(ctx context.Context, endpoint, kind string, record interface{}, utcTime time.Time) {
	body, err := c.encode(record, utcTime)
	if err != nil {
		metrics.RecordsPublishedTotal.WithLabelValues(kind, "encode_error").Inc()
		c.log.Errorw("Failed to encode record", "kind", kind, "error", err)
		return
	}

	start := time.Now()
	defer func() {
		metrics.ObservePublishDuration(float64(time.Since(start).Milliseconds()))
	}()

	deliver := func() (response, error) {
		return c.postWithRetry(ctx, endpoint, body)
	}

	var final response
	if c.breaker != nil {
		result, berr := c.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
			resp, derr := deliver()
			if derr != nil {
				return resp, derr
			}
			if isServerError(resp.status) {
				return resp, fmt.Errorf("terminal server error %d", resp.status)
			}
			return resp, nil
		})
		if berr != nil {
			if resp, ok := result.(response); ok && resp.status != 0 {
				final = resp
			} else {
				metrics.RecordsPublishedTotal.WithLabelValues(kind, "failed").Inc()
				c.log.Warnw("Record not delivered", "kind", kind, "error", berr)
				return
			}
		} else {
			final = result.(response)
		}
	} else {
		resp, derr := deliver()
		if derr != nil {
			metrics.RecordsPublishedTotal.WithLabelValues(kind, "failed").Inc()
			c.log.Warnw("Record not delivered", "kind", kind, "error", derr)
			return
		}
		final = resp
	}

	status := "ok"
	if final.status < 200 || final.status >= 300 {
		status = "rejected"
	}
	metrics.RecordsPublishedTotal.WithLabelValues(kind, status).Inc()
	c.log.Infow("Response",
		"kind", kind,
		"status_code", final.status,
		"body", final.body,
	)
}

// encode marshals the record and splices in the fields every write endpoint
// expects: client version, auth token, and the last known UTC event time.
func (c *Client) encode(record interface{}, utcTime time.Time) ([]byte, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	var blob map[string]interface{}
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, err
	}
	blob["client_version"] = constants.ClientVersion
	blob["token"] = c.token
	blob["utc_time"] = utcTime.Format("2006-01-02T15:04:05.999999")

	return json.Marshal(blob)
}

// postWithRetry performs the POST, retrying only when the status code falls
// in the server-error range. The attempt budget and delay are fixed by the
// retry policy; client errors are final on the first response, and transport
// failures are not retried at all.
func (c *Client) postWithRetry(ctx context.Context, endpoint string, body []byte) (response, error) {
	var last response

	err := retry.Do(ctx, c.policy, func() error {
		resp, err := c.post(ctx, endpoint, body)
		if err != nil {
			return retry.NewPermanentError(err)
		}
		last = resp
		if isServerError(resp.status) {
			return fmt.Errorf("server error %d", resp.status)
		}
		return nil
	}, func(attempt int, err error) {
		metrics.PublishRetriesTotal.Inc()
		c.log.Warnw("Retrying after server error",
			"endpoint", endpoint,
			"attempt", attempt,
			"error", err,
		)
	})

	if err != nil && last.status != 0 {
		// Retry budget exhausted on a server error; the last response is
		// the terminal outcome.
		return last, nil
	}
	return last, err
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) (response, error) {
	url := fmt.Sprintf("%s/%s", c.host, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, err
	}
	return response{status: resp.StatusCode, body: string(text)}, nil
}
