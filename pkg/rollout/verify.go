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
	"time"

	"github.com/ragstack/aca-rollout/pkg/log"
	"github.com/ragstack/aca-rollout/pkg/platform"
)

// TrafficVerifier confirms that a requested weight assignment has
// actually converged. The router applies weight changes asynchronously,
// so an accepted request does not mean traffic has moved; where
// correctness matters, notably inside the rollback path, the observed
// state is what counts.
type TrafficVerifier struct {
	client      platform.Client
	maxAttempts int
	delay       time.Duration
}

// NewTrafficVerifier creates a TrafficVerifier honoring the
// verification budget of the passed settings
func NewTrafficVerifier(client platform.Client, settings Settings) *TrafficVerifier {
	return &TrafficVerifier{
		client:      client,
		maxAttempts: settings.VerifyAttempts,
		delay:       settings.VerifyDelay,
	}
}

// Confirm polls the platform until the observed weight of the passed
// revision equals expectedWeight, or the attempt budget is exhausted
func (v *TrafficVerifier) Confirm(
	ctx context.Context,
	app *platform.Application,
	revisionName string,
	expectedWeight int32,
) error {
	contextLogger := log.FromContext(ctx)

	var observed int32
	for attempt := 1; attempt <= v.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, v.delay); err != nil {
				return err
			}
		}

		traffic, err := v.client.GetTraffic(ctx, app)
		if err != nil {
			contextLogger.Debug("Cannot read traffic state while verifying",
				"attempt", attempt, "error", err.Error())
			continue
		}

		observed = 0
		for _, target := range traffic {
			if target.RevisionName == revisionName {
				observed += target.Weight
			}
		}
		if observed == expectedWeight {
			return nil
		}

		contextLogger.Debug("Weight assignment not converged yet",
			"revision", revisionName, "expected", expectedWeight,
			"observed", observed, "attempt", attempt)
	}

	return fmt.Errorf("%w: revision %q observed at %d%%, expected %d%%",
		ErrVerificationTimedOut, revisionName, observed, expectedWeight)
}
