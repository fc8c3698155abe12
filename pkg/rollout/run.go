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
	"fmt"

	"github.com/ragstack/aca-rollout/pkg/platform"
)

// Stage identifies a step of the rollout state machine
type Stage string

// The rollout stages. An initial deployment goes Resolve to
// InitialDeploy; a canary rollout goes Resolve, Smoke0, Canary10,
// Canary50, Full100, Cleanup, with RollingBack reachable from every
// stage between Smoke0 and Full100.
const (
	StageResolve       Stage = "Resolve"
	StageInitialDeploy Stage = "InitialDeploy"
	StageSmoke0        Stage = "Smoke0"
	StageCanary10      Stage = "Canary10"
	StageCanary50      Stage = "Canary50"
	StageFull100       Stage = "Full100"
	StageCleanup       Stage = "Cleanup"
	StageRollingBack   Stage = "RollingBack"
)

// Run is the transient state of one rollout invocation. It is created
// at start, threaded explicitly through every stage and through the
// rollback path, and discarded at process exit; durable state lives
// only in the platform.
type Run struct {
	// App is the application under rollout
	App *platform.Application

	// NewRevision is the most recently created revision, the one being
	// promoted
	NewRevision platform.Revision

	// StableRevision is the revision carrying traffic before the run,
	// nil on a first-ever deployment
	StableRevision *platform.Revision

	// Stage is the stage currently executing
	Stage Stage

	// FailureCause is the error that made the run fail, preserved
	// across the rollback path
	FailureCause error
}

// canaryWeightStage maps an intermediate traffic percentage to its stage
func canaryWeightStage(weight int32) Stage {
	switch weight {
	case 10:
		return StageCanary10
	case 50:
		return StageCanary50
	default:
		return Stage(fmt.Sprintf("Canary%d", weight))
	}
}
