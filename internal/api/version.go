package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/LeoDroves/mtga-log-client/internal/constants"
	"github.com/LeoDroves/mtga-log-client/pkg/retry"
)

// VersionStatus is the outcome of the startup minimum-version check. The
// check is informational to the core: an unreachable server is assumed valid.
type VersionStatus struct {
	Supported  bool
	MinVersion string
}

// CheckMinVersion asks the server for the minimum supported client version
// and compares it against this build. Server errors are retried with the
// client's retry policy; if no usable answer arrives the client is assumed
// to be supported.
func (c *Client) CheckMinVersion(ctx context.Context) VersionStatus {
	assumed := VersionStatus{Supported: true}

	var last response
	err := retry.Do(ctx, c.policy, func() error {
		resp, err := c.get(ctx, constants.EndpointClientVersion)
		if err != nil {
			return err
		}
		last = resp
		if isServerError(resp.status) {
			return fmt.Errorf("server error %d", resp.status)
		}
		return nil
	}, func(attempt int, err error) {
		c.log.Warnw("Retrying minimum version check", "attempt", attempt, "error", err)
	})
	if err != nil || isServerError(last.status) || last.status != http.StatusOK {
		c.log.Warn("Could not get response from server for minimum client version. Assuming version is valid.")
		return assumed
	}

	c.log.Infow("Got minimum client version response", "body", last.body)

	var blob struct {
		MinVersion string `json:"min_version"`
	}
	if uerr := json.Unmarshal([]byte(last.body), &blob); uerr != nil || blob.MinVersion == "" {
		c.log.Warnw("Unparseable minimum version response; assuming version is valid", "body", last.body)
		return assumed
	}

	supported := compareVersions(constants.ClientVersion, blob.MinVersion) >= 0
	c.log.Infow("Minimum supported version",
		"min_version", blob.MinVersion,
		"this_version", constants.ClientVersion,
	)
	return VersionStatus{Supported: supported, MinVersion: blob.MinVersion}
}

func (c *Client) get(ctx context.Context, endpoint string) (response, error) {
	url := fmt.Sprintf("%s/%s", c.host, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return response{}, err
	}

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

// compareVersions compares dot-separated numeric versions component-wise,
// treating a missing component as smaller (1.2 < 1.2.1).
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := 0; i < len(as) && i < len(bs); i++ {
		an, _ := strconv.Atoi(as[i])
		bn, _ := strconv.Atoi(bs[i])
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}
