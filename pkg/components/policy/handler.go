package policy

import (
	"context"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/components/common"
)

// NewResourceManager returns the manager owning a beacon's policy set.
func NewResourceManager(c client.Client, log logr.Logger, beacon *meshv1alpha1.MeshBeacon) *common.ResourceManager {
	return &common.ResourceManager{
		Client:    c,
		Log:       log.WithValues("component", "policy"),
		Namespace: beacon.Namespace,
		Labels:    common.ScopeLabels(beacon.Name, beacon.Namespace, Scope),
		Types:     Types,
	}
}

// Sync reconciles the AuthorizationPolicy set and returns how many policies
// are now managed.  When policy management is disabled the set is reconciled
// to empty rather than left alone, so turning the flag off removes every
// policy previously created.
func Sync(ctx context.Context, rm *common.ResourceManager, beacon *meshv1alpha1.MeshBeacon, policies []meshv1alpha1.MeshPolicy) (int, error) {
	var desired []client.Object
	if beacon.Spec.ManageAuthorizationPolicies == nil || *beacon.Spec.ManageAuthorizationPolicies {
		desired = Resources(rm.Log, beacon, policies)
	} else {
		rm.Log.V(1).Info("authorization policy management disabled, reconciling to an empty set")
	}
	return len(desired), rm.Reconcile(ctx, desired)
}
