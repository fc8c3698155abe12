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

var _ = Describe("traffic verification", func() {
	var client *fake.Client
	var verifier *TrafficVerifier
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
		verifier = NewTrafficVerifier(client, testSettings())
	})

	It("confirms once the observed weight matches the requested one", func(ctx SpecContext) {
		client.ConvergenceLag = 3
		Expect(client.SetTraffic(ctx, app, []platform.TrafficTarget{
			{RevisionName: "docsearch--v2", Weight: 100},
		})).To(Succeed())

		Expect(verifier.Confirm(ctx, app, "docsearch--v2", 100)).To(Succeed())
	})

	It("times out when the assignment never converges", func(ctx SpecContext) {
		err := verifier.Confirm(ctx, app, "docsearch--v2", 100)
		Expect(err).To(MatchError(ErrVerificationTimedOut))
	})
})
