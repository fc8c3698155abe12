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
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HTTP probes", func() {
	var requests int
	var server *httptest.Server
	var respond func(w http.ResponseWriter)

	BeforeEach(func() {
		requests = 0
		respond = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusOK)
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests++
			respond(w)
		}))
		DeferCleanup(server.Close)
	})

	It("succeeds on the first 2xx answer", func(ctx SpecContext) {
		probe := NewHealthProbe(testSettings())

		Expect(probe.Poll(ctx, server.URL+PathHealth)).To(Succeed())
		Expect(requests).To(Equal(1))
	})

	It("keeps polling until the endpoint recovers", func(ctx SpecContext) {
		respond = func(w http.ResponseWriter) {
			if requests < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
		probe := NewHealthProbe(testSettings())

		Expect(probe.Poll(ctx, server.URL+PathHealth)).To(Succeed())
		Expect(requests).To(Equal(3))
	})

	It("gives up after the attempt budget is exhausted", func(ctx SpecContext) {
		respond = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusInternalServerError)
		}
		probe := NewHealthProbe(testSettings())

		err := probe.Poll(ctx, server.URL+PathHealth)
		Expect(err).To(MatchError(ErrProbeTimedOut))
		Expect(requests).To(Equal(testSettings().HealthAttempts))
	})

	It("counts an unreachable endpoint as a failed attempt", func(ctx SpecContext) {
		probe := NewWarmupProbe(testSettings())
		server.Close()

		err := probe.Poll(ctx, server.URL+PathWarmup)
		Expect(err).To(MatchError(ErrProbeTimedOut))
	})
})
