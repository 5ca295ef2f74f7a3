package policy

import (
	"fmt"

	"k8s.io/apimachinery/pkg/runtime/schema"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/mesh"
)

const (
	// Scope identifies the authorization policy object set for pruning.
	Scope = "istio-authorization-policy"

	// AppNameLabel is the selector label Juju stamps on workload pods.
	AppNameLabel = "app.kubernetes.io/name"
	// ModelOperatorLabel selects the model operator pods.
	ModelOperatorLabel = "juju-modeloperator"
)

// Types are the object kinds belonging to the policy set.
var Types = []schema.GroupVersionKind{
	{Group: "security.istio.io", Version: "v1beta1", Kind: "AuthorizationPolicy"},
}

// Name returns the unique name for the policy implementing one MeshPolicy.
func Name(beacon *meshv1alpha1.MeshBeacon, policy meshv1alpha1.MeshPolicy) string {
	return mesh.AuthorizationPolicyName(beacon.Name, beacon.Namespace, mesh.MeshPolicySummary{
		SourceApp:       policy.SourceApp,
		SourceNamespace: policy.SourceNamespace,
		TargetApp:       policy.TargetApp,
		TargetNamespace: policy.TargetNamespace,
		TargetService:   policy.TargetService,
	})
}

// ModelOperatorPolicyName names the policy that keeps the Juju controller
// able to reach the model operator when the whole model is on the mesh.
func ModelOperatorPolicyName(beacon *meshv1alpha1.MeshBeacon) string {
	return fmt.Sprintf("%s-%s-policy-all-sources-modeloperator", beacon.Name, beacon.Namespace)
}
