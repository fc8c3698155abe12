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

// Package azure implements the platform contract on top of the Azure
// Container Apps management API
package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appcontainers/armappcontainers/v3"

	"github.com/ragstack/aca-rollout/pkg/platform"
)

// Client talks to the Azure Container Apps resource provider
type Client struct {
	apps      *armappcontainers.ContainerAppsClient
	revisions *armappcontainers.ContainerAppsRevisionsClient
}

// NewClient creates a Client for the given subscription, authenticating
// through the default Azure credential chain (environment, workload
// identity, managed identity, CLI)
func NewClient(subscriptionID string) (*Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("building Azure credential: %w", err)
	}
	return NewClientWithCredential(subscriptionID, cred)
}

// NewClientWithCredential creates a Client using an explicit credential
func NewClientWithCredential(subscriptionID string, cred azcore.TokenCredential) (*Client, error) {
	factory, err := armappcontainers.NewClientFactory(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("building Container Apps client factory: %w", err)
	}

	return &Client{
		apps:      factory.NewContainerAppsClient(),
		revisions: factory.NewContainerAppsRevisionsClient(),
	}, nil
}

// GetApplication implements platform.Client
func (c *Client) GetApplication(
	ctx context.Context,
	resourceGroup, name string,
) (*platform.Application, error) {
	resp, err := c.apps.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return nil, fmt.Errorf("getting container app %q: %w", name, err)
	}

	app := &platform.Application{
		ResourceGroup: resourceGroup,
		Name:          name,
	}
	if resp.Properties != nil &&
		resp.Properties.Configuration != nil &&
		resp.Properties.Configuration.Ingress != nil {
		app.FQDN = deref(resp.Properties.Configuration.Ingress.Fqdn)
	}
	if app.FQDN == "" {
		return nil, fmt.Errorf("container app %q has no external ingress", name)
	}

	return app, nil
}

// ListRevisions implements platform.Client
func (c *Client) ListRevisions(
	ctx context.Context,
	app *platform.Application,
) ([]platform.Revision, error) {
	var result []platform.Revision

	pager := c.revisions.NewListRevisionsPager(app.ResourceGroup, app.Name, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing revisions of %q: %w", app.Name, err)
		}
		for _, rev := range page.Value {
			if rev == nil || rev.Properties == nil {
				continue
			}
			result = append(result, platform.Revision{
				Name:          deref(rev.Name),
				CreatedAt:     deref(rev.Properties.CreatedTime),
				TrafficWeight: deref(rev.Properties.TrafficWeight),
				Active:        deref(rev.Properties.Active),
			})
		}
	}

	// Labels live in the ingress traffic section, not on the revisions
	traffic, err := c.GetTraffic(ctx, app)
	if err != nil {
		return nil, err
	}
	for i := range result {
		for _, target := range traffic {
			if target.RevisionName == result[i].Name && target.Label != "" {
				result[i].Label = target.Label
			}
		}
	}

	return result, nil
}

// GetTraffic implements platform.Client
func (c *Client) GetTraffic(
	ctx context.Context,
	app *platform.Application,
) ([]platform.TrafficTarget, error) {
	resp, err := c.apps.Get(ctx, app.ResourceGroup, app.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("getting container app %q: %w", app.Name, err)
	}
	if resp.Properties == nil ||
		resp.Properties.Configuration == nil ||
		resp.Properties.Configuration.Ingress == nil {
		return nil, fmt.Errorf("container app %q has no external ingress", app.Name)
	}

	var result []platform.TrafficTarget
	for _, entry := range resp.Properties.Configuration.Ingress.Traffic {
		if entry == nil {
			continue
		}
		result = append(result, platform.TrafficTarget{
			RevisionName: deref(entry.RevisionName),
			Weight:       deref(entry.Weight),
			Label:        deref(entry.Label),
		})
	}

	return result, nil
}

// SetTraffic implements platform.Client. The traffic section is replaced
// as a whole; the resource provider applies it atomically.
func (c *Client) SetTraffic(
	ctx context.Context,
	app *platform.Application,
	desired []platform.TrafficTarget,
) error {
	traffic := make([]*armappcontainers.TrafficWeight, 0, len(desired))
	for _, target := range desired {
		entry := &armappcontainers.TrafficWeight{
			RevisionName:   to.Ptr(target.RevisionName),
			Weight:         to.Ptr(target.Weight),
			LatestRevision: to.Ptr(false),
		}
		if target.Label != "" {
			entry.Label = to.Ptr(target.Label)
		}
		traffic = append(traffic, entry)
	}

	patch := armappcontainers.ContainerApp{
		Properties: &armappcontainers.ContainerAppProperties{
			Configuration: &armappcontainers.Configuration{
				Ingress: &armappcontainers.Ingress{
					Traffic: traffic,
				},
			},
		},
	}

	poller, err := c.apps.BeginUpdate(ctx, app.ResourceGroup, app.Name, patch, nil)
	if err == nil {
		_, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return fmt.Errorf("updating traffic of container app %q: %w", app.Name, err)
	}

	return nil
}

// DeactivateRevision implements platform.Client
func (c *Client) DeactivateRevision(
	ctx context.Context,
	app *platform.Application,
	revisionName string,
) error {
	_, err := c.revisions.DeactivateRevision(ctx, app.ResourceGroup, app.Name, revisionName, nil)
	if err != nil {
		return fmt.Errorf("deactivating revision %q of %q: %w", revisionName, app.Name, err)
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
