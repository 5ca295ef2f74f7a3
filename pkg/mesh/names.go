package mesh

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// maxLabelLength is the Kubernetes limit for label values and for names
	// that end up inside labels.
	maxLabelLength = 63
	// maxNameLength is the Kubernetes limit for object names.
	maxNameLength = 253

	hashSuffixLength = 8
)

// KubernetesLabel builds "<model>-<app><suffix>" truncated to 63 characters.
// Truncated names keep a short hash of the full name so two long names that
// share a prefix stay distinct.
func KubernetesLabel(modelName, appName, suffix string) string {
	name := modelName + "-" + appName + suffix
	if len(name) <= maxLabelLength {
		return name
	}
	h := shortHash(name)
	keep := maxLabelLength - hashSuffixLength - 1
	return name[:keep] + "-" + h
}

// WaypointName returns the name shared by the waypoint Gateway, its
// Deployment and its autoscaler.  It must fit in a label value because the
// namespace's istio.io/use-waypoint label carries it.
func WaypointName(modelName, appName string) string {
	return KubernetesLabel(modelName, appName, "-waypoint")
}

// LabelConfigMapName is the ConfigMap tracking which mesh labels were applied
// to an application's workload, so that labels removed from the mesh contract
// can be unset again.
func LabelConfigMapName(appName string) string {
	return fmt.Sprintf("service-mesh-%s-labels", appName)
}

// TelemetryLabels returns the labels used to aggregate waypoint telemetry for
// one application.
func TelemetryLabels(modelName, appName string) map[string]string {
	key := "charms.canonical.com/" + KubernetesLabel(modelName, appName, ".telemetry")
	return map[string]string{key: "aggregated"}
}

// AuthorizationPolicyName builds a unique, collision-resistant name for the
// policy implementing one MeshPolicy.  Long source/target names are truncated
// to stay under the 253-character object name limit; a hash of the policy
// keeps truncated names unique.
func AuthorizationPolicyName(appName, modelName string, policy MeshPolicySummary) string {
	h := shortHash(policy.String())
	name := strings.Join([]string{
		appName, modelName, "policy",
		policy.SourceApp, policy.SourceNamespace, policy.TargetApp, h,
	}, "-")
	if len(name) <= maxNameLength {
		return name
	}
	return strings.Join([]string{
		appName, modelName, "policy",
		clip(policy.SourceApp, 30), clip(policy.SourceNamespace, 30), clip(policy.TargetApp, 30), h,
	}, "-")
}

// MeshPolicySummary carries the identity fields that feed a policy name.
type MeshPolicySummary struct {
	SourceApp       string
	SourceNamespace string
	TargetApp       string
	TargetNamespace string
	TargetService   string
}

func (s MeshPolicySummary) String() string {
	return fmt.Sprintf("%s/%s->%s/%s/%s",
		s.SourceNamespace, s.SourceApp, s.TargetNamespace, s.TargetApp, s.TargetService)
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:hashSuffixLength]
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
