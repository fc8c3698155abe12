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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("URL building", func() {
	It("builds an https URL from hostname and path", func() {
		Expect(BuildURL("docsearch.example.io", PathHealth)).
			To(Equal("https://docsearch.example.io/health"))
		Expect(BuildURL("docsearch.example.io", "warmup")).
			To(Equal("https://docsearch.example.io/warmup"))
	})

	It("derives the label hostname from the primary one", func() {
		Expect(LabelHostname("docsearch.wittysea-12ab34cd.westeurope.azurecontainerapps.io", "canary")).
			To(Equal("docsearch---canary.wittysea-12ab34cd.westeurope.azurecontainerapps.io"))
	})

	It("keeps a domainless hostname usable", func() {
		Expect(LabelHostname("docsearch", "canary")).To(Equal("docsearch---canary"))
	})
})
