/*
Copyright The ACA Rollout Contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rollout

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ragstack/aca-rollout/pkg/log"
)

// Prober checks whether an endpoint answers successfully within a
// bounded attempt budget
type Prober interface {
	Poll(ctx context.Context, probeURL string) error
}

// HTTPProbe polls a URL until it answers with a 2xx status or the
// attempt budget is exhausted. Any other outcome of an attempt, be it a
// timeout, a connection failure or a non-2xx status, counts as one
// failed attempt.
type HTTPProbe struct {
	client      *http.Client
	maxAttempts int
	delay       time.Duration
}

// NewHealthProbe builds the probe used for liveness checks
func NewHealthProbe(settings Settings) *HTTPProbe {
	return &HTTPProbe{
		client:      &http.Client{Timeout: settings.HealthTimeout},
		maxAttempts: settings.HealthAttempts,
		delay:       settings.HealthDelay,
	}
}

// NewWarmupProbe builds the probe used for warmup checks: a long
// per-attempt timeout, since the endpoint may legitimately take minutes
// to force lazy state in, and few attempts, since warmup either
// succeeds once the resource loads or fails deterministically
func NewWarmupProbe(settings Settings) *HTTPProbe {
	return &HTTPProbe{
		client:      &http.Client{Timeout: settings.WarmupTimeout},
		maxAttempts: settings.WarmupAttempts,
		delay:       settings.WarmupDelay,
	}
}

// Poll implements Prober
func (p *HTTPProbe) Poll(ctx context.Context, probeURL string) error {
	contextLogger := log.FromContext(ctx)

	var lastFailure error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, p.delay); err != nil {
				return err
			}
		}

		if err := p.attempt(ctx, probeURL); err != nil {
			lastFailure = err
			contextLogger.Debug("Probe attempt failed",
				"url", probeURL, "attempt", attempt, "maxAttempts", p.maxAttempts, "error", err.Error())
			continue
		}
		return nil
	}

	return fmt.Errorf("%w: %s after %d attempts: %w",
		ErrProbeTimedOut, probeURL, p.maxAttempts, lastFailure)
}

func (p *HTTPProbe) attempt(ctx context.Context, probeURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	return nil
}

// sleepCtx pauses for the given duration, returning early if the
// context is canceled
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
