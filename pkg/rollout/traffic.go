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

	"github.com/avast/retry-go/v4"

	"github.com/ragstack/aca-rollout/pkg/log"
	"github.com/ragstack/aca-rollout/pkg/platform"
)

// TrafficController issues the mutating commands of a rollout: weight
// assignments, label moves and revision deactivation. Every mutation
// runs under a bounded fixed-delay retry policy; retrying is safe
// because re-asserting the same traffic state is a no-op once applied.
// Success means the request was accepted, not that traffic converged.
type TrafficController struct {
	client   platform.Client
	attempts uint
	delay    time.Duration
}

// NewTrafficController creates a TrafficController honoring the retry
// budget of the passed settings
func NewTrafficController(client platform.Client, settings Settings) *TrafficController {
	return &TrafficController{
		client:   client,
		attempts: settings.MutationAttempts,
		delay:    settings.MutationDelay,
	}
}

// SetWeights requests the passed revision-to-percentage assignment.
// Percentages must sum to 100. Labels already pinned to revisions are
// preserved: labeled revisions absent from the map stay reachable
// through a zero-weight entry.
func (t *TrafficController) SetWeights(
	ctx context.Context,
	app *platform.Application,
	weights map[string]int32,
) error {
	var sum int32
	for _, weight := range weights {
		sum += weight
	}
	if sum != 100 {
		return fmt.Errorf("%w: requested weights sum to %d, not 100", ErrMutationFailed, sum)
	}

	return t.retryMutation(ctx, "set weights", func() error {
		current, err := t.client.GetTraffic(ctx, app)
		if err != nil {
			return err
		}

		labels := make(map[string]string)
		for _, target := range current {
			if target.Label != "" {
				labels[target.RevisionName] = target.Label
			}
		}

		var desired []platform.TrafficTarget
		for name, weight := range weights {
			desired = append(desired, platform.TrafficTarget{
				RevisionName: name,
				Weight:       weight,
				Label:        labels[name],
			})
			delete(labels, name)
		}
		for name, label := range labels {
			desired = append(desired, platform.TrafficTarget{
				RevisionName: name,
				Weight:       0,
				Label:        label,
			})
		}

		return t.client.SetTraffic(ctx, app, desired)
	})
}

// LabelRevision pins a label to a revision, clearing it from any other
// revision first so that at most one revision holds it. Labeling an
// already-labeled revision is a no-op.
func (t *TrafficController) LabelRevision(
	ctx context.Context,
	app *platform.Application,
	revisionName, label string,
) error {
	return t.retryMutation(ctx, "label revision", func() error {
		current, err := t.client.GetTraffic(ctx, app)
		if err != nil {
			return err
		}

		desired := make([]platform.TrafficTarget, 0, len(current)+1)
		found := false
		for _, target := range current {
			if target.Label == label && target.RevisionName != revisionName {
				if target.Weight == 0 {
					// the entry existed only to hold the label
					continue
				}
				target.Label = ""
			}
			if target.RevisionName == revisionName {
				target.Label = label
				found = true
			}
			desired = append(desired, target)
		}
		if !found {
			desired = append(desired, platform.TrafficTarget{
				RevisionName: revisionName,
				Weight:       0,
				Label:        label,
			})
		}

		return t.client.SetTraffic(ctx, app, desired)
	})
}

// ClearLabel removes a label wherever it is pinned. Clearing a label
// nobody holds is not an error.
func (t *TrafficController) ClearLabel(
	ctx context.Context,
	app *platform.Application,
	label string,
) error {
	return t.retryMutation(ctx, "clear label", func() error {
		current, err := t.client.GetTraffic(ctx, app)
		if err != nil {
			return err
		}

		changed := false
		desired := make([]platform.TrafficTarget, 0, len(current))
		for _, target := range current {
			if target.Label == label {
				changed = true
				if target.Weight == 0 {
					continue
				}
				target.Label = ""
			}
			desired = append(desired, target)
		}
		if !changed {
			return nil
		}

		return t.client.SetTraffic(ctx, app, desired)
	})
}

// Deactivate stops a revision from serving. Callers treat failures as
// non-fatal: deactivation is cleanup, not correctness.
func (t *TrafficController) Deactivate(
	ctx context.Context,
	app *platform.Application,
	revisionName string,
) error {
	return t.retryMutation(ctx, "deactivate revision", func() error {
		return t.client.DeactivateRevision(ctx, app, revisionName)
	})
}

func (t *TrafficController) retryMutation(ctx context.Context, operation string, fn func() error) error {
	contextLogger := log.FromContext(ctx)

	err := retry.Do(
		fn,
		retry.Attempts(t.attempts),
		retry.Delay(t.delay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			contextLogger.Warning("Platform mutation failed, retrying",
				"operation", operation, "attempt", attempt+1, "error", err.Error())
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMutationFailed, operation, err)
	}
	return nil
}
