package mesh

import (
	"fmt"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
)

// PeerIdentity returns the SPIFFE-style principal for an application,
// relying on the convention that each application gets a ServiceAccount of
// the same name in its own namespace.
func PeerIdentity(appName, namespace string) string {
	return ServiceAccountIdentity(appName, namespace)
}

// ServiceAccountIdentity returns the principal for a ServiceAccount, in the
// form expected by AuthorizationPolicy source principals:
// "cluster.local/ns/{namespace}/sa/{serviceAccount}".
func ServiceAccountIdentity(serviceAccount, namespace string) string {
	return fmt.Sprintf("cluster.local/ns/%s/sa/%s", namespace, serviceAccount)
}

// AmbientLabels are the labels a workload must carry to route through the
// given waypoint.
func AmbientLabels(waypointName, waypointNamespace string) map[string]string {
	return map[string]string{
		"istio.io/dataplane-mode":         "ambient",
		"istio.io/use-waypoint":           waypointName,
		"istio.io/use-waypoint-namespace": waypointNamespace,
	}
}

// CollectPolicies flattens the policies requested by all consumers of a
// beacon.  Consumers attached over a cross-model relation have their source
// identity rewritten to the remote application, since the local consumer
// object is only a proxy for it.
func CollectPolicies(consumers []meshv1alpha1.MeshConsumer) []meshv1alpha1.MeshPolicy {
	var policies []meshv1alpha1.MeshPolicy
	for _, consumer := range consumers {
		for _, policy := range consumer.Spec.Policies {
			if cmr := consumer.Spec.CrossModel; cmr != nil {
				policy.SourceApp = cmr.AppName
				policy.SourceNamespace = cmr.ModelName
			}
			if len(policy.TargetType) == 0 {
				policy.TargetType = meshv1alpha1.PolicyTargetTypeApp
			}
			policies = append(policies, policy)
		}
	}
	return policies
}

// MetricsPolicies returns the unit policies opening the beacon's metrics
// port to every consumer that scrapes it.
func MetricsPolicies(beacon *meshv1alpha1.MeshBeacon, consumers []meshv1alpha1.MeshConsumer, metricsPort int32) []meshv1alpha1.MeshPolicy {
	var policies []meshv1alpha1.MeshPolicy
	for _, consumer := range consumers {
		if !consumer.Spec.ScrapesMetrics {
			continue
		}
		sourceApp, sourceNamespace := consumer.Name, consumer.Namespace
		if cmr := consumer.Spec.CrossModel; cmr != nil {
			sourceApp, sourceNamespace = cmr.AppName, cmr.ModelName
		}
		policies = append(policies, meshv1alpha1.MeshPolicy{
			SourceApp:       sourceApp,
			SourceNamespace: sourceNamespace,
			TargetApp:       beacon.Name,
			TargetNamespace: beacon.Namespace,
			TargetType:      meshv1alpha1.PolicyTargetTypeUnit,
			Endpoints: []meshv1alpha1.PolicyEndpoint{
				{Ports: []int32{metricsPort}},
			},
		})
	}
	return policies
}

// ValidUnitPolicy reports whether a unit-scoped policy is expressible at L4.
// Unit policies bind to pods, where Istio cannot enforce hosts, methods or
// paths.
func ValidUnitPolicy(policy meshv1alpha1.MeshPolicy) bool {
	for _, endpoint := range policy.Endpoints {
		if len(endpoint.Hosts) > 0 || len(endpoint.Methods) > 0 || len(endpoint.Paths) > 0 {
			return false
		}
	}
	return true
}
