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

// Package status implement the status subcommand
package status

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cheynewallace/tabby"
	"github.com/logrusorgru/aurora/v3"

	"github.com/ragstack/aca-rollout/pkg/platform"
	"github.com/ragstack/aca-rollout/pkg/rollout"
)

// Status prints the revision table of an application
func Status(ctx context.Context, client platform.Client, resourceGroup, appName string) error {
	app, err := client.GetApplication(ctx, resourceGroup, appName)
	if err != nil {
		return err
	}

	revisions, err := client.ListRevisions(ctx, app)
	if err != nil {
		return err
	}
	sort.Slice(revisions, func(i, j int) bool {
		return revisions[i].CreatedAt.After(revisions[j].CreatedAt)
	})

	fmt.Println(aurora.Green("Application"), app.Name)
	summary := tabby.New()
	summary.AddLine("Hostname:", app.FQDN)
	summary.AddLine("Resource group:", app.ResourceGroup)
	summary.AddLine("Revisions:", len(revisions))
	summary.Print()
	fmt.Println()

	fmt.Println(aurora.Green("Revisions"))
	table := tabby.New()
	table.AddHeader("NAME", "CREATED", "WEIGHT", "LABEL", "ACTIVE")
	for _, rev := range revisions {
		weight := fmt.Sprintf("%d%%", rev.TrafficWeight)
		label := rev.Label
		if label != "" {
			label = fmt.Sprintf("%s (%s)", label, rollout.LabelHostname(app.FQDN, label))
		}
		table.AddLine(
			rev.Name,
			rev.CreatedAt.Format(time.RFC3339),
			colorWeight(rev.TrafficWeight, weight),
			label,
			rev.Active,
		)
	}
	table.Print()

	return nil
}

func colorWeight(weight int32, formatted string) interface{} {
	switch {
	case weight >= 100:
		return aurora.Green(formatted)
	case weight > 0:
		return aurora.Yellow(formatted)
	default:
		return formatted
	}
}
