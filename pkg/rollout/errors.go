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

import "errors"

// The error taxonomy of a rollout run. Every failure surfaced by this
// package wraps one of these sentinels, so callers can classify it with
// errors.Is regardless of the attached detail.
var (
	// ErrNotFound means the application or a revision of it is absent
	ErrNotFound = errors.New("not found")

	// ErrPlatformUnavailable means a read against the platform API failed.
	// It is fatal for the current invocation: re-running is safe because
	// revision resolution is idempotent.
	ErrPlatformUnavailable = errors.New("platform unavailable")

	// ErrMutationFailed means a weight, label or deactivate command did
	// not succeed within its bounded retry budget
	ErrMutationFailed = errors.New("mutation failed")

	// ErrProbeTimedOut means a health or warmup check never returned
	// success within its attempt budget
	ErrProbeTimedOut = errors.New("probe timed out")

	// ErrVerificationTimedOut means a requested weight change never
	// converged within its attempt budget. During rollback this is the
	// most severe outcome: even the recovery path is unconfirmed.
	ErrVerificationTimedOut = errors.New("traffic verification timed out")
)
