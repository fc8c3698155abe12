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
	"github.com/ragstack/aca-rollout/pkg/platform"
	"github.com/ragstack/aca-rollout/pkg/platform/fake"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("traffic controller", func() {
	var client *fake.Client
	var controller *TrafficController
	app := &platform.Application{
		ResourceGroup: "prod-rg",
		Name:          "docsearch",
		FQDN:          "docsearch.wittysea-12ab34cd.westeurope.azurecontainerapps.io",
	}

	BeforeEach(func() {
		client = &fake.Client{
			App: app,
			Revisions: []platform.Revision{
				{Name: "docsearch--v1", TrafficWeight: 100, Active: true},
				{Name: "docsearch--v2", Active: true},
			},
			Traffic: []platform.TrafficTarget{
				{RevisionName: "docsearch--v1", Weight: 100},
			},
		}
		controller = NewTrafficController(client, testSettings())
	})

	It("rejects a weight map not summing to 100", func(ctx SpecContext) {
		err := controller.SetWeights(ctx, app, map[string]int32{
			"docsearch--v1": 80,
			"docsearch--v2": 10,
		})
		Expect(err).To(MatchError(ErrMutationFailed))
		Expect(client.SetTrafficCalls).To(BeZero())
	})

	It("applies a valid weight map", func(ctx SpecContext) {
		err := controller.SetWeights(ctx, app, map[string]int32{
			"docsearch--v1": 90,
			"docsearch--v2": 10,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(client.AppliedTraffic).To(HaveLen(1))
		Expect(client.Traffic).To(ConsistOf(
			platform.TrafficTarget{RevisionName: "docsearch--v1", Weight: 90},
			platform.TrafficTarget{RevisionName: "docsearch--v2", Weight: 10},
		))
	})

	It("preserves a pinned label across weight changes", func(ctx SpecContext) {
		Expect(controller.LabelRevision(ctx, app, "docsearch--v2", "canary")).To(Succeed())

		err := controller.SetWeights(ctx, app, map[string]int32{
			"docsearch--v1": 50,
			"docsearch--v2": 50,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(client.Traffic).To(ConsistOf(
			platform.TrafficTarget{RevisionName: "docsearch--v1", Weight: 50},
			platform.TrafficTarget{RevisionName: "docsearch--v2", Weight: 50, Label: "canary"},
		))
	})

	It("moves a label so that a single revision holds it", func(ctx SpecContext) {
		Expect(controller.LabelRevision(ctx, app, "docsearch--v1", "canary")).To(Succeed())
		Expect(controller.LabelRevision(ctx, app, "docsearch--v2", "canary")).To(Succeed())

		holders := 0
		for _, target := range client.Traffic {
			if target.Label == "canary" {
				holders++
				Expect(target.RevisionName).To(Equal("docsearch--v2"))
			}
		}
		Expect(holders).To(Equal(1))
	})

	It("treats clearing an absent label as a no-op", func(ctx SpecContext) {
		Expect(controller.ClearLabel(ctx, app, "canary")).To(Succeed())
		Expect(client.SetTrafficCalls).To(BeZero())
	})

	It("clears a pinned label and drops its placeholder entry", func(ctx SpecContext) {
		Expect(controller.LabelRevision(ctx, app, "docsearch--v2", "canary")).To(Succeed())
		Expect(controller.ClearLabel(ctx, app, "canary")).To(Succeed())
		Expect(client.Traffic).To(ConsistOf(
			platform.TrafficTarget{RevisionName: "docsearch--v1", Weight: 100},
		))
	})

	It("retries a failing mutation exactly as many times as budgeted", func(ctx SpecContext) {
		client.SetTrafficFailures = 100

		err := controller.SetWeights(ctx, app, map[string]int32{"docsearch--v1": 100})
		Expect(err).To(MatchError(ErrMutationFailed))
		Expect(client.SetTrafficCalls).To(Equal(5))
	})

	It("succeeds when a mutation recovers within the retry budget", func(ctx SpecContext) {
		client.SetTrafficFailures = 2

		err := controller.SetWeights(ctx, app, map[string]int32{"docsearch--v1": 100})
		Expect(err).ToNot(HaveOccurred())
		Expect(client.SetTrafficCalls).To(Equal(3))
	})

	It("deactivates a revision through the platform", func(ctx SpecContext) {
		Expect(controller.Deactivate(ctx, app, "docsearch--v1")).To(Succeed())
		Expect(client.Deactivated).To(ConsistOf("docsearch--v1"))
	})
})
