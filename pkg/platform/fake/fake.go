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

// Package fake contains an in-memory platform used by the test suites
package fake

import (
	"context"
	"fmt"

	"github.com/ragstack/aca-rollout/pkg/platform"
)

// Client is an in-memory implementation of platform.Client. It records
// every traffic state it is asked to apply and supports scripted
// convergence lag and failure injection.
type Client struct {
	App       *platform.Application
	Revisions []platform.Revision

	// Traffic is the currently observed traffic state
	Traffic []platform.TrafficTarget

	// AppliedTraffic records every state passed to SetTraffic, in order
	AppliedTraffic [][]platform.TrafficTarget

	// Deactivated records the revisions deactivated, in order
	Deactivated []string

	// ConvergenceLag delays the visibility of an applied traffic state
	// by that many GetTraffic calls, emulating asynchronous routers
	ConvergenceLag int

	// SetTrafficFailures makes the next N SetTraffic calls fail
	SetTrafficFailures int

	// DeactivateFailures makes the next N DeactivateRevision calls fail
	DeactivateFailures int

	// ListRevisionsErr, when set, is returned by every ListRevisions call
	ListRevisionsErr error

	// SetTrafficCalls counts SetTraffic invocations, including failed ones
	SetTrafficCalls int

	pendingTraffic []platform.TrafficTarget
	pendingReads   int
}

// GetApplication implements platform.Client
func (c *Client) GetApplication(_ context.Context, resourceGroup, name string) (*platform.Application, error) {
	if c.App == nil || c.App.Name != name || c.App.ResourceGroup != resourceGroup {
		return nil, fmt.Errorf("container app %q not found in %q", name, resourceGroup)
	}
	app := *c.App
	return &app, nil
}

// ListRevisions implements platform.Client
func (c *Client) ListRevisions(_ context.Context, _ *platform.Application) ([]platform.Revision, error) {
	if c.ListRevisionsErr != nil {
		return nil, c.ListRevisionsErr
	}
	result := make([]platform.Revision, len(c.Revisions))
	copy(result, c.Revisions)
	return result, nil
}

// GetTraffic implements platform.Client
func (c *Client) GetTraffic(_ context.Context, _ *platform.Application) ([]platform.TrafficTarget, error) {
	if c.pendingTraffic != nil {
		c.pendingReads++
		if c.pendingReads > c.ConvergenceLag {
			c.converge(c.pendingTraffic)
			c.pendingTraffic = nil
			c.pendingReads = 0
		}
	}
	result := make([]platform.TrafficTarget, len(c.Traffic))
	copy(result, c.Traffic)
	return result, nil
}

// SetTraffic implements platform.Client
func (c *Client) SetTraffic(_ context.Context, _ *platform.Application, desired []platform.TrafficTarget) error {
	c.SetTrafficCalls++
	if c.SetTrafficFailures > 0 {
		c.SetTrafficFailures--
		return fmt.Errorf("conflict while updating traffic")
	}

	applied := make([]platform.TrafficTarget, len(desired))
	copy(applied, desired)
	c.AppliedTraffic = append(c.AppliedTraffic, applied)

	if c.ConvergenceLag > 0 {
		c.pendingTraffic = applied
		c.pendingReads = 0
		return nil
	}
	c.converge(applied)
	return nil
}

// DeactivateRevision implements platform.Client
func (c *Client) DeactivateRevision(_ context.Context, _ *platform.Application, revisionName string) error {
	if c.DeactivateFailures > 0 {
		c.DeactivateFailures--
		return fmt.Errorf("cannot deactivate %q", revisionName)
	}
	c.Deactivated = append(c.Deactivated, revisionName)
	for i := range c.Revisions {
		if c.Revisions[i].Name == revisionName {
			c.Revisions[i].Active = false
			c.Revisions[i].TrafficWeight = 0
		}
	}
	return nil
}

// converge makes the passed traffic state the observed one, mirroring
// weights and labels onto the revision list
func (c *Client) converge(traffic []platform.TrafficTarget) {
	c.Traffic = traffic
	for i := range c.Revisions {
		c.Revisions[i].TrafficWeight = 0
		c.Revisions[i].Label = ""
		for _, target := range traffic {
			if target.RevisionName == c.Revisions[i].Name {
				c.Revisions[i].TrafficWeight = target.Weight
				if target.Label != "" {
					c.Revisions[i].Label = target.Label
				}
			}
		}
	}
}
