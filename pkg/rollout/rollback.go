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

	"github.com/ragstack/aca-rollout/pkg/log"
)

// RollbackHandler restores all traffic to the stable revision after a
// stage failure. The run it is invoked for has already failed; the
// handler's only job is to bring the platform back to the pre-run
// traffic state and confirm it got there.
type RollbackHandler struct {
	traffic     *TrafficController
	verifier    *TrafficVerifier
	canaryLabel string
}

// NewRollbackHandler creates a RollbackHandler sharing the passed
// controller and verifier
func NewRollbackHandler(traffic *TrafficController, verifier *TrafficVerifier, settings Settings) *RollbackHandler {
	return &RollbackHandler{
		traffic:     traffic,
		verifier:    verifier,
		canaryLabel: settings.CanaryLabel,
	}
}

// Rollback forces traffic back to the stable revision of the run,
// verifies convergence and best-effort deactivates the failed revision.
// A nil return means traffic is confirmed restored; an error means the
// recovery path itself is unconfirmed and an operator must intervene.
// Either way the run stays failed with its original cause.
func (h *RollbackHandler) Rollback(ctx context.Context, run *Run) error {
	contextLogger := log.FromContext(ctx)

	if run.StableRevision == nil {
		return fmt.Errorf("no stable revision to roll back to, manual intervention required")
	}
	stable := run.StableRevision.Name

	fmt.Printf("Rolling back: restoring all traffic to revision %s\n", stable)
	if err := h.traffic.SetWeights(ctx, run.App, map[string]int32{stable: 100}); err != nil {
		return fmt.Errorf("cannot restore traffic to %q, manual intervention required: %w", stable, err)
	}

	if err := h.verifier.Confirm(ctx, run.App, stable, 100); err != nil {
		return fmt.Errorf("traffic restoration to %q unconfirmed, manual intervention required: %w", stable, err)
	}

	// Cleanup of the failed revision is best-effort: the label has to go
	// first, a labeled revision cannot be deactivated
	if err := h.traffic.ClearLabel(ctx, run.App, h.canaryLabel); err != nil {
		contextLogger.Warning("Cannot clear the canary label from the failed revision",
			"revision", run.NewRevision.Name, "error", err.Error())
	} else if err := h.traffic.Deactivate(ctx, run.App, run.NewRevision.Name); err != nil {
		contextLogger.Warning("Cannot deactivate the failed revision",
			"revision", run.NewRevision.Name, "error", err.Error())
	}

	fmt.Printf("Rollback complete: revision %s is serving 100%% of traffic\n", stable)
	return nil
}
