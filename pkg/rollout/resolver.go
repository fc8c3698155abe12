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
	"sort"

	"github.com/ragstack/aca-rollout/pkg/platform"
)

// RevisionResolver answers which revision of an application is the new
// one and which is the stable one. It is read-only; a failing platform
// read surfaces as ErrPlatformUnavailable and is fatal for the run,
// since re-running the resolver is always safe.
type RevisionResolver struct {
	client platform.Client
}

// NewRevisionResolver creates a RevisionResolver using the passed client
func NewRevisionResolver(client platform.Client) *RevisionResolver {
	return &RevisionResolver{client: client}
}

// FindNewest returns the most recently created revision of the
// application, or ErrNotFound when the application has none
func (r *RevisionResolver) FindNewest(
	ctx context.Context,
	app *platform.Application,
) (platform.Revision, error) {
	revisions, err := r.client.ListRevisions(ctx, app)
	if err != nil {
		return platform.Revision{}, fmt.Errorf("%w: %w", ErrPlatformUnavailable, err)
	}
	if len(revisions) == 0 {
		return platform.Revision{}, fmt.Errorf("%w: application %q has no revisions", ErrNotFound, app.Name)
	}

	sort.Slice(revisions, func(i, j int) bool {
		return revisions[i].CreatedAt.After(revisions[j].CreatedAt)
	})
	return revisions[0], nil
}

// FindStable returns the revision currently carrying the highest
// non-zero traffic weight, excluding the passed one. A nil result with
// no error means no such revision exists, which is the first-ever
// deployment case.
func (r *RevisionResolver) FindStable(
	ctx context.Context,
	app *platform.Application,
	excluding string,
) (*platform.Revision, error) {
	revisions, err := r.client.ListRevisions(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPlatformUnavailable, err)
	}

	var stable *platform.Revision
	for i := range revisions {
		rev := revisions[i]
		if rev.Name == excluding || rev.TrafficWeight <= 0 {
			continue
		}
		if stable == nil || rev.TrafficWeight > stable.TrafficWeight {
			stable = &revisions[i]
		}
	}
	return stable, nil
}
