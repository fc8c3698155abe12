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

import "time"

// Settings collects every tunable of a rollout run. The zero value is
// not usable; start from DefaultSettings.
type Settings struct {
	// CanaryLabel is the label attached to the revision under rollout,
	// making it reachable outside the weighted ingress
	CanaryLabel string

	// StageWeights are the intermediate traffic percentages requested
	// for the new revision before full promotion
	StageWeights []int32

	// MutationAttempts bounds the retries of every mutating platform
	// call; MutationDelay is the fixed pause between attempts
	MutationAttempts uint
	MutationDelay    time.Duration

	// PropagationWait is the pause after each mutating call before
	// probing, giving the control plane time to start propagating
	PropagationWait time.Duration

	// Health probe budget: per-attempt timeout, attempt count and the
	// pause between attempts
	HealthTimeout  time.Duration
	HealthAttempts int
	HealthDelay    time.Duration

	// Warmup probe budget. The per-attempt timeout is long because the
	// endpoint forces expensive lazy state to materialize; the attempt
	// count is small because warmup either succeeds once the resource
	// loads or fails deterministically.
	WarmupTimeout  time.Duration
	WarmupAttempts int
	WarmupDelay    time.Duration

	// Verification budget for confirming a weight assignment converged
	VerifyAttempts int
	VerifyDelay    time.Duration
}

// DefaultSettings returns the settings used by the CLI unless
// overridden through flags
func DefaultSettings() Settings {
	return Settings{
		CanaryLabel:  "canary",
		StageWeights: []int32{10, 50},

		MutationAttempts: 5,
		MutationDelay:    10 * time.Second,

		PropagationWait: 30 * time.Second,

		HealthTimeout:  10 * time.Second,
		HealthAttempts: 30,
		HealthDelay:    5 * time.Second,

		WarmupTimeout:  5 * time.Minute,
		WarmupAttempts: 3,
		WarmupDelay:    10 * time.Second,

		VerifyAttempts: 30,
		VerifyDelay:    10 * time.Second,
	}
}
