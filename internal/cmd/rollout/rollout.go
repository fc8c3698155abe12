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

// Package rollout implements the aca-rollout root command
package rollout

import (
	"context"
	"fmt"

	"github.com/ragstack/aca-rollout/pkg/platform"
	"github.com/ragstack/aca-rollout/pkg/rollout"
)

// Run executes one rollout of the named application. A nil return means
// the new revision is serving all traffic; the caller translates any
// error into a non-zero exit code.
func Run(
	ctx context.Context,
	client platform.Client,
	resourceGroup, appName string,
	settings rollout.Settings,
	dryRun bool,
) error {
	if dryRun {
		return printPlan(ctx, client, resourceGroup, appName, settings)
	}

	sequencer := rollout.NewStageSequencer(client, settings)
	run, err := sequencer.Execute(ctx, resourceGroup, appName)
	if err != nil {
		return fmt.Errorf("rollout of %q did not complete: %w", appName, err)
	}

	if run.StableRevision != nil {
		fmt.Printf("Revision %s replaced %s\n", run.NewRevision.Name, run.StableRevision.Name)
	}
	return nil
}

// printPlan resolves the revisions and narrates the stages a real run
// would execute, without mutating anything
func printPlan(
	ctx context.Context,
	client platform.Client,
	resourceGroup, appName string,
	settings rollout.Settings,
) error {
	app, err := client.GetApplication(ctx, resourceGroup, appName)
	if err != nil {
		return err
	}

	resolver := rollout.NewRevisionResolver(client)
	newest, err := resolver.FindNewest(ctx, app)
	if err != nil {
		return err
	}
	stable, err := resolver.FindStable(ctx, app, newest.Name)
	if err != nil {
		return err
	}

	fmt.Printf("Application: %s (%s)\n", app.Name, app.FQDN)
	fmt.Printf("New revision: %s\n", newest.Name)
	if stable == nil {
		fmt.Printf("No stable revision: plan is an initial deployment\n")
		fmt.Printf("  1. route 100%% to %s, then health and warmup checks\n", newest.Name)
		return nil
	}

	fmt.Printf("Stable revision: %s (%d%%)\n", stable.Name, stable.TrafficWeight)
	labelHost := rollout.LabelHostname(app.FQDN, settings.CanaryLabel)
	step := 1
	fmt.Printf("  %d. label %s as %q, smoke checks against %s\n", step, newest.Name, settings.CanaryLabel, labelHost)
	for _, weight := range settings.StageWeights {
		step++
		fmt.Printf("  %d. shift %d%% to %s, health check\n", step, weight, newest.Name)
	}
	step++
	fmt.Printf("  %d. shift 100%% to %s, health check, deactivate %s\n", step, newest.Name, stable.Name)
	fmt.Printf("Any failure restores 100%% to %s\n", stable.Name)
	return nil
}
