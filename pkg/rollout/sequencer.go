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

// Package rollout implements the progressive deployment state machine:
// revision discovery, staged traffic shifting with health and warmup
// verification at every stage, and automatic rollback to the stable
// revision on any stage failure.
package rollout

import (
	"context"
	"fmt"

	"github.com/ragstack/aca-rollout/pkg/log"
	"github.com/ragstack/aca-rollout/pkg/platform"
)

// StageSequencer drives the ordered sequence of weight changes and
// checks of one rollout run. Execution is strictly sequential: traffic
// is never split further while a previous split is unverified.
type StageSequencer struct {
	Client   platform.Client
	Settings Settings

	Resolver *RevisionResolver
	Traffic  *TrafficController
	Verifier *TrafficVerifier
	Health   Prober
	Warmup   Prober
	Rollback *RollbackHandler
}

// NewStageSequencer wires a StageSequencer and its collaborators on top
// of the passed platform client
func NewStageSequencer(client platform.Client, settings Settings) *StageSequencer {
	traffic := NewTrafficController(client, settings)
	verifier := NewTrafficVerifier(client, settings)

	return &StageSequencer{
		Client:   client,
		Settings: settings,
		Resolver: NewRevisionResolver(client),
		Traffic:  traffic,
		Verifier: verifier,
		Health:   NewHealthProbe(settings),
		Warmup:   NewWarmupProbe(settings),
		Rollback: NewRollbackHandler(traffic, verifier, settings),
	}
}

// Execute runs the state machine for the named application and returns
// the final run state. A nil error means the new revision is serving
// all traffic; any error means the run failed, with traffic restored to
// the stable revision whenever one existed.
func (s *StageSequencer) Execute(ctx context.Context, resourceGroup, appName string) (*Run, error) {
	run := &Run{Stage: StageResolve}

	if err := s.resolve(ctx, run, resourceGroup, appName); err != nil {
		run.FailureCause = err
		return run, err
	}

	if run.StableRevision == nil {
		// Covers both the first-ever deployment and the re-deploy of the
		// revision already serving all traffic
		return s.initialDeploy(ctx, run)
	}

	fmt.Printf("Canary rollout: %s replacing %s\n", run.NewRevision.Name, run.StableRevision.Name)
	return s.canaryRollout(ctx, run)
}

// resolve fills the run with the application and its new and stable
// revisions
func (s *StageSequencer) resolve(ctx context.Context, run *Run, resourceGroup, appName string) error {
	app, err := s.Client.GetApplication(ctx, resourceGroup, appName)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPlatformUnavailable, err)
	}
	run.App = app

	newest, err := s.Resolver.FindNewest(ctx, app)
	if err != nil {
		return err
	}
	run.NewRevision = newest

	stable, err := s.Resolver.FindStable(ctx, app, newest.Name)
	if err != nil {
		return err
	}
	run.StableRevision = stable

	return nil
}

// initialDeploy promotes the new revision directly to 100%. There is no
// stable revision to fall back to, so any failure is fatal as-is.
func (s *StageSequencer) initialDeploy(ctx context.Context, run *Run) (*Run, error) {
	run.Stage = StageInitialDeploy
	fmt.Printf("Initial deployment: promoting revision %s to 100%%\n", run.NewRevision.Name)

	fail := func(err error) (*Run, error) {
		run.FailureCause = err
		return run, err
	}

	if err := s.Traffic.SetWeights(ctx, run.App, map[string]int32{run.NewRevision.Name: 100}); err != nil {
		return fail(err)
	}
	if err := sleepCtx(ctx, s.Settings.PropagationWait); err != nil {
		return fail(err)
	}
	if err := s.Health.Poll(ctx, BuildURL(run.App.FQDN, PathHealth)); err != nil {
		return fail(err)
	}
	if err := s.Warmup.Poll(ctx, BuildURL(run.App.FQDN, PathWarmup)); err != nil {
		return fail(err)
	}

	fmt.Printf("Initial deployment of %s succeeded\n", run.NewRevision.Name)
	return run, nil
}

// canaryRollout drives Smoke0, the intermediate weight stages, Full100
// and Cleanup, transitioning to RollingBack on the first failure
func (s *StageSequencer) canaryRollout(ctx context.Context, run *Run) (*Run, error) {
	newRev := run.NewRevision.Name
	stableRev := run.StableRevision.Name
	labelHost := LabelHostname(run.App.FQDN, s.Settings.CanaryLabel)

	// Smoke0: the labeled hostname routes straight to the new revision
	// while production traffic is untouched
	run.Stage = StageSmoke0
	fmt.Printf("Smoke stage: labeling %s as %q, 0%% of production traffic\n", newRev, s.Settings.CanaryLabel)
	if err := s.smokeStage(ctx, run, labelHost); err != nil {
		return s.failAndRollback(ctx, run, err)
	}

	for _, weight := range s.Settings.StageWeights {
		run.Stage = canaryWeightStage(weight)
		fmt.Printf("Canary stage: %d%% to %s, %d%% to %s\n", weight, newRev, 100-weight, stableRev)
		if err := s.weightStage(ctx, run, map[string]int32{
			stableRev: 100 - weight,
			newRev:    weight,
		}, labelHost); err != nil {
			return s.failAndRollback(ctx, run, err)
		}
	}

	run.Stage = StageFull100
	fmt.Printf("Promotion stage: 100%% to %s\n", newRev)
	if err := s.weightStage(ctx, run, map[string]int32{newRev: 100}, run.App.FQDN); err != nil {
		return s.failAndRollback(ctx, run, err)
	}

	// Deactivating the replaced revision is cleanup, not correctness:
	// a failure here does not change the outcome of the run
	run.Stage = StageCleanup
	if err := s.Traffic.Deactivate(ctx, run.App, stableRev); err != nil {
		log.FromContext(ctx).Warning("Cannot deactivate the replaced stable revision",
			"revision", stableRev, "error", err.Error())
	}

	fmt.Printf("Rollout complete: revision %s is serving 100%% of traffic\n", newRev)
	return run, nil
}

func (s *StageSequencer) smokeStage(ctx context.Context, run *Run, labelHost string) error {
	if err := s.Traffic.ClearLabel(ctx, run.App, s.Settings.CanaryLabel); err != nil {
		return err
	}
	if err := s.Traffic.LabelRevision(ctx, run.App, run.NewRevision.Name, s.Settings.CanaryLabel); err != nil {
		return err
	}
	if err := sleepCtx(ctx, s.Settings.PropagationWait); err != nil {
		return err
	}
	if err := s.Health.Poll(ctx, BuildURL(labelHost, PathHealth)); err != nil {
		return err
	}
	return s.Warmup.Poll(ctx, BuildURL(labelHost, PathWarmup))
}

func (s *StageSequencer) weightStage(
	ctx context.Context,
	run *Run,
	weights map[string]int32,
	probeHost string,
) error {
	if err := s.Traffic.SetWeights(ctx, run.App, weights); err != nil {
		return err
	}
	if err := sleepCtx(ctx, s.Settings.PropagationWait); err != nil {
		return err
	}
	return s.Health.Poll(ctx, BuildURL(probeHost, PathHealth))
}

// failAndRollback marks the run as failed with the triggering cause and
// hands it to the rollback handler. Rollback is always terminal-failure
// for the run; when the rollback itself cannot be confirmed, that is
// surfaced on top of the original cause.
func (s *StageSequencer) failAndRollback(ctx context.Context, run *Run, cause error) (*Run, error) {
	contextLogger := log.FromContext(ctx)

	failedStage := run.Stage
	run.FailureCause = cause
	run.Stage = StageRollingBack
	contextLogger.Error(cause, "Stage failed, rolling back", "stage", string(failedStage))

	if rbErr := s.Rollback.Rollback(ctx, run); rbErr != nil {
		return run, fmt.Errorf("%w (rollback incomplete: %w)", cause, rbErr)
	}
	return run, cause
}
