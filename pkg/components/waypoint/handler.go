package waypoint

import (
	"context"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/components/common"
)

// NewResourceManager returns the manager owning a beacon's waypoint set.
func NewResourceManager(c client.Client, log logr.Logger, beacon *meshv1alpha1.MeshBeacon) *common.ResourceManager {
	return &common.ResourceManager{
		Client:    c,
		Log:       log.WithValues("component", "waypoint"),
		Namespace: beacon.Namespace,
		Labels:    common.ScopeLabels(beacon.Name, beacon.Namespace, Scope),
		Types:     Types,
	}
}

// Sync reconciles the waypoint Gateway, its autoscaler and the metrics proxy.
func Sync(ctx context.Context, rm *common.ResourceManager, beacon *meshv1alpha1.MeshBeacon) error {
	return rm.Reconcile(ctx, Resources(beacon))
}
