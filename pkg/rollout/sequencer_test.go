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

	"github.com/ragstack/aca-rollout/pkg/platform"
	"github.com/ragstack/aca-rollout/pkg/platform/fake"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// proberFunc adapts a closure to the Prober interface
type proberFunc func(ctx context.Context, probeURL string) error

func (f proberFunc) Poll(ctx context.Context, probeURL string) error {
	return f(ctx, probeURL)
}

var alwaysReady = proberFunc(func(_ context.Context, _ string) error { return nil })

var _ = Describe("stage sequencer", func() {
	const (
		resourceGroup = "prod-rg"
		appName       = "docsearch"
		fqdn          = "docsearch.wittysea-12ab34cd.westeurope.azurecontainerapps.io"
		labelFqdn     = "docsearch---canary.wittysea-12ab34cd.westeurope.azurecontainerapps.io"
		oldRev        = "docsearch--v1"
		newRev        = "docsearch--v2"
	)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	var client *fake.Client
	var sequencer *StageSequencer

	newSequencer := func() *StageSequencer {
		seq := NewStageSequencer(client, testSettings())
		seq.Health = alwaysReady
		seq.Warmup = alwaysReady
		return seq
	}

	// sumIs100 asserts weight conservation over every traffic state the
	// sequencer requested
	sumIs100 := func() {
		for _, state := range client.AppliedTraffic {
			var sum int32
			for _, target := range state {
				sum += target.Weight
			}
			ExpectWithOffset(1, sum).To(Equal(int32(100)))
		}
	}

	Context("with no revision serving traffic yet", func() {
		BeforeEach(func() {
			client = &fake.Client{
				App: &platform.Application{ResourceGroup: resourceGroup, Name: appName, FQDN: fqdn},
				Revisions: []platform.Revision{
					{Name: newRev, CreatedAt: base, Active: true},
				},
			}
			sequencer = newSequencer()
		})

		It("performs an initial deployment straight to 100%", func(ctx SpecContext) {
			var healthURLs, warmupURLs []string
			sequencer.Health = proberFunc(func(_ context.Context, u string) error {
				healthURLs = append(healthURLs, u)
				return nil
			})
			sequencer.Warmup = proberFunc(func(_ context.Context, u string) error {
				warmupURLs = append(warmupURLs, u)
				return nil
			})

			run, err := sequencer.Execute(ctx, resourceGroup, appName)
			Expect(err).ToNot(HaveOccurred())
			Expect(run.Stage).To(Equal(StageInitialDeploy))
			Expect(run.StableRevision).To(BeNil())
			Expect(client.Traffic).To(ConsistOf(
				platform.TrafficTarget{RevisionName: newRev, Weight: 100},
			))
			Expect(healthURLs).To(ConsistOf("https://" + fqdn + "/health"))
			Expect(warmupURLs).To(ConsistOf("https://" + fqdn + "/warmup"))
			sumIs100()
		})

		It("fails the run without rollback when the initial health check fails", func(ctx SpecContext) {
			sequencer.Health = proberFunc(func(_ context.Context, u string) error {
				return fmt.Errorf("%w: %s", ErrProbeTimedOut, u)
			})

			run, err := sequencer.Execute(ctx, resourceGroup, appName)
			Expect(err).To(MatchError(ErrProbeTimedOut))
			Expect(run.Stage).To(Equal(StageInitialDeploy))
			Expect(run.FailureCause).To(MatchError(ErrProbeTimedOut))
			Expect(client.Deactivated).To(BeEmpty())
		})
	})

	Context("when the newest revision already serves all traffic", func() {
		BeforeEach(func() {
			client = &fake.Client{
				App: &platform.Application{ResourceGroup: resourceGroup, Name: appName, FQDN: fqdn},
				Revisions: []platform.Revision{
					{Name: oldRev, CreatedAt: base, Active: false},
					{Name: newRev, CreatedAt: base.Add(time.Hour), TrafficWeight: 100, Active: true},
				},
				Traffic: []platform.TrafficTarget{
					{RevisionName: newRev, Weight: 100},
				},
			}
			sequencer = newSequencer()
		})

		It("re-runs as an initial deployment and never starts a canary", func(ctx SpecContext) {
			run, err := sequencer.Execute(ctx, resourceGroup, appName)
			Expect(err).ToNot(HaveOccurred())
			Expect(run.Stage).To(Equal(StageInitialDeploy))
			Expect(client.Traffic).To(ConsistOf(
				platform.TrafficTarget{RevisionName: newRev, Weight: 100},
			))
			sumIs100()
		})
	})

	Context("with a stable revision at 100%", func() {
		BeforeEach(func() {
			client = &fake.Client{
				App: &platform.Application{ResourceGroup: resourceGroup, Name: appName, FQDN: fqdn},
				Revisions: []platform.Revision{
					{Name: oldRev, CreatedAt: base, TrafficWeight: 100, Active: true},
					{Name: newRev, CreatedAt: base.Add(time.Hour), Active: true},
				},
				Traffic: []platform.TrafficTarget{
					{RevisionName: oldRev, Weight: 100},
				},
			}
			sequencer = newSequencer()
		})

		It("promotes through every stage and deactivates the old stable", func(ctx SpecContext) {
			var healthURLs []string
			sequencer.Health = proberFunc(func(_ context.Context, u string) error {
				healthURLs = append(healthURLs, u)
				return nil
			})

			run, err := sequencer.Execute(ctx, resourceGroup, appName)
			Expect(err).ToNot(HaveOccurred())
			Expect(run.Stage).To(Equal(StageCleanup))
			Expect(client.Traffic).To(ConsistOf(
				platform.TrafficTarget{RevisionName: newRev, Weight: 100, Label: "canary"},
			))
			Expect(client.Deactivated).To(ConsistOf(oldRev))

			// smoke and intermediate stages probe the label hostname,
			// full promotion probes the primary one
			Expect(healthURLs).To(Equal([]string{
				"https://" + labelFqdn + "/health",
				"https://" + labelFqdn + "/health",
				"https://" + labelFqdn + "/health",
				"https://" + fqdn + "/health",
			}))
			sumIs100()
		})

		It("rolls back when the smoke warmup never succeeds", func(ctx SpecContext) {
			sequencer.Warmup = proberFunc(func(_ context.Context, u string) error {
				return fmt.Errorf("%w: %s", ErrProbeTimedOut, u)
			})

			run, err := sequencer.Execute(ctx, resourceGroup, appName)
			Expect(err).To(MatchError(ErrProbeTimedOut))
			Expect(run.Stage).To(Equal(StageRollingBack))
			Expect(run.FailureCause).To(MatchError(ErrProbeTimedOut))
			Expect(client.Traffic).To(ConsistOf(
				platform.TrafficTarget{RevisionName: oldRev, Weight: 100},
			))
			Expect(client.Deactivated).To(ConsistOf(newRev))
			sumIs100()
		})

		It("rolls back from a failing intermediate stage", func(ctx SpecContext) {
			healthCalls := 0
			sequencer.Health = proberFunc(func(_ context.Context, u string) error {
				healthCalls++
				// smoke and 10% pass, 50% fails
				if healthCalls == 3 {
					return fmt.Errorf("%w: %s", ErrProbeTimedOut, u)
				}
				return nil
			})

			run, err := sequencer.Execute(ctx, resourceGroup, appName)
			Expect(err).To(MatchError(ErrProbeTimedOut))
			Expect(run.Stage).To(Equal(StageRollingBack))
			Expect(client.Traffic).To(ConsistOf(
				platform.TrafficTarget{RevisionName: oldRev, Weight: 100},
			))
			Expect(client.Deactivated).To(ConsistOf(newRev))

			// the new revision never reached full promotion
			for _, state := range client.AppliedTraffic {
				for _, target := range state {
					if target.RevisionName == newRev {
						Expect(target.Weight).To(BeNumerically("<=", 50))
					}
				}
			}
			sumIs100()
		})

		It("escalates when even the rollback cannot be applied", func(ctx SpecContext) {
			sequencer.Warmup = proberFunc(func(_ context.Context, u string) error {
				// break the platform before the rollback path runs
				client.SetTrafficFailures = 100
				return fmt.Errorf("%w: %s", ErrProbeTimedOut, u)
			})

			run, err := sequencer.Execute(ctx, resourceGroup, appName)
			Expect(err).To(MatchError(ErrProbeTimedOut))
			Expect(err).To(MatchError(ErrMutationFailed))
			Expect(err.Error()).To(ContainSubstring("manual intervention required"))
			Expect(run.FailureCause).To(MatchError(ErrProbeTimedOut))
			Expect(client.Deactivated).To(BeEmpty())
		})

		It("keeps the run successful when the cleanup deactivation fails", func(ctx SpecContext) {
			client.DeactivateFailures = 100

			run, err := sequencer.Execute(ctx, resourceGroup, appName)
			Expect(err).ToNot(HaveOccurred())
			Expect(run.Stage).To(Equal(StageCleanup))
			Expect(client.Traffic).To(ConsistOf(
				platform.TrafficTarget{RevisionName: newRev, Weight: 100, Label: "canary"},
			))
		})
	})
})
