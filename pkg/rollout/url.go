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
	"strings"
)

const (
	// PathHealth is the URL path of the application liveness check
	PathHealth = "/health"

	// PathWarmup is the URL path forcing lazy-loaded state to
	// materialize before the revision is considered fully ready
	PathWarmup = "/warmup"
)

// BuildURL builds an https URL given the hostname and the path
func BuildURL(hostname, path string) string {
	if path[0] == '/' {
		path = path[1:]
	}
	return fmt.Sprintf("https://%s/%s", hostname, path)
}

// LabelHostname derives the hostname reaching a labeled revision
// directly, bypassing weighted routing. The platform exposes it as
// {app}---{label}.{environment-domain}, carved out of the primary
// ingress hostname.
func LabelHostname(fqdn, label string) string {
	parts := strings.SplitN(fqdn, ".", 2)
	if len(parts) < 2 {
		return fqdn + "---" + label
	}
	return fmt.Sprintf("%s---%s.%s", parts[0], label, parts[1])
}
