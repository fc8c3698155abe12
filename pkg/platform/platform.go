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

// Package platform defines the contract towards the revision-aware
// platform hosting the application being rolled out
package platform

import (
	"context"
	"time"
)

// Application is a deployed application together with the coordinates
// needed to reach its management API
type Application struct {
	// ResourceGroup is the resource scope the application lives in
	ResourceGroup string

	// Name is the application identifier, unique within the resource group
	Name string

	// FQDN is the externally-routable hostname of the weighted ingress
	FQDN string
}

// Revision is an immutable, independently-addressable deployed instance
// of an application
type Revision struct {
	// Name is the revision identifier, unique within the application
	Name string

	// CreatedAt is the creation timestamp, used to determine recency
	CreatedAt time.Time

	// TrafficWeight is the percentage of inbound requests currently
	// routed to this revision
	TrafficWeight int32

	// Label is the optional short tag attached to this revision
	Label string

	// Active reports whether the revision is provisioned and able to serve
	Active bool
}

// TrafficTarget is one entry of the desired ingress traffic state: a
// revision, the percentage routed to it, and the optional label pinned
// to it. Labels ride on traffic entries because that is how the platform
// models them; an entry may carry a label with zero weight.
type TrafficTarget struct {
	RevisionName string
	Weight       int32
	Label        string
}

// Client is the platform management API surface the rollout needs.
// Mutations report acceptance of the request, not convergence.
type Client interface {
	// GetApplication fetches an application and its ingress hostname
	GetApplication(ctx context.Context, resourceGroup, name string) (*Application, error)

	// ListRevisions returns every known revision of the application
	ListRevisions(ctx context.Context, app *Application) ([]Revision, error)

	// GetTraffic returns the currently observed ingress traffic state
	GetTraffic(ctx context.Context, app *Application) ([]TrafficTarget, error)

	// SetTraffic requests the passed traffic state to be applied
	// atomically, replacing the current one
	SetTraffic(ctx context.Context, app *Application, desired []TrafficTarget) error

	// DeactivateRevision stops a revision from serving
	DeactivateRevision(ctx context.Context, app *Application, revisionName string) error
}
