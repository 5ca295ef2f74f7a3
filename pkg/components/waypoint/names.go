package waypoint

import (
	"k8s.io/apimachinery/pkg/runtime/schema"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/mesh"
)

const (
	// Scope identifies the waypoint object set for pruning.
	Scope = "istio-waypoint"

	// GatewayClassName selects Istio's waypoint implementation.
	GatewayClassName = "istio-waypoint"
	// MeshListenerName is the single listener waypoints expose.
	MeshListenerName = "mesh"
	// MeshListenerPort is the HBONE tunnel port.
	MeshListenerPort = 15008
	// MeshListenerProtocol is the HBONE tunnel protocol.
	MeshListenerProtocol = "HBONE"

	// WaypointForLabel tells Istio what the waypoint fronts.
	WaypointForLabel = "istio.io/waypoint-for"

	metricsProxySuffix = "-metrics-proxy"
)

// Name returns the waypoint name for a beacon.
func Name(beacon *meshv1alpha1.MeshBeacon) string {
	return mesh.WaypointName(beacon.Namespace, beacon.Name)
}

// MetricsProxyName returns the name of the metrics proxy deployment/service.
func MetricsProxyName(beacon *meshv1alpha1.MeshBeacon) string {
	return mesh.KubernetesLabel(beacon.Namespace, beacon.Name, metricsProxySuffix)
}

// Types are the object kinds belonging to the waypoint set.
var Types = []schema.GroupVersionKind{
	{Group: "gateway.networking.k8s.io", Version: "v1", Kind: "Gateway"},
	{Group: "autoscaling", Version: "v2", Kind: "HorizontalPodAutoscaler"},
	{Group: "apps", Version: "v1", Kind: "Deployment"},
	{Group: "", Version: "v1", Kind: "Service"},
}
