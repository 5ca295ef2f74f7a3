package policy

import (
	"fmt"

	"github.com/go-logr/logr"
	securityapi "istio.io/api/security/v1beta1"
	typeapi "istio.io/api/type/v1beta1"
	securityv1beta1 "istio.io/client-go/pkg/apis/security/v1beta1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/mesh"
)

// Resources renders one AuthorizationPolicy per mesh policy.  Unit policies
// bind to pods and are restricted to L4; a unit policy carrying L7 attributes
// is skipped rather than silently weakened.  App policies bind to the target
// service and may match hosts, methods and paths.
func Resources(log logr.Logger, beacon *meshv1alpha1.MeshBeacon, policies []meshv1alpha1.MeshPolicy) []client.Object {
	objects := make([]client.Object, 0, len(policies)+1)
	for _, policy := range policies {
		switch policy.TargetType {
		case meshv1alpha1.PolicyTargetTypeUnit:
			if !mesh.ValidUnitPolicy(policy) {
				log.Error(nil, "unit policy not created: hosts, methods and paths cannot be enforced on pods",
					"source", policy.SourceApp, "target", policy.TargetApp)
				continue
			}
			objects = append(objects, unitPolicy(beacon, policy))
		default:
			objects = append(objects, appPolicy(log, beacon, policy))
		}
	}
	if beacon.Spec.ModelOnMesh != nil && *beacon.Spec.ModelOnMesh {
		objects = append(objects, modelOperatorPolicy(beacon))
	}
	return objects
}

// unitPolicy allows the source application's identity to reach the target
// pods on the declared ports.
func unitPolicy(beacon *meshv1alpha1.MeshBeacon, policy meshv1alpha1.MeshPolicy) *securityv1beta1.AuthorizationPolicy {
	to := make([]*securityapi.Rule_To, 0, len(policy.Endpoints))
	for _, endpoint := range policy.Endpoints {
		to = append(to, &securityapi.Rule_To{
			Operation: &securityapi.Operation{Ports: portStrings(endpoint.Ports)},
		})
	}
	return &securityv1beta1.AuthorizationPolicy{
		TypeMeta:   policyTypeMeta(),
		ObjectMeta: policyObjectMeta(beacon, Name(beacon, policy)),
		Spec: securityapi.AuthorizationPolicy{
			Selector: &typeapi.WorkloadSelector{
				MatchLabels: map[string]string{AppNameLabel: policy.TargetApp},
			},
			Rules: []*securityapi.Rule{
				{
					From: sourceRules(policy),
					To:   to,
				},
			},
		},
	}
}

// appPolicy allows the source application's identity to reach the target
// service on the declared endpoints, including the L7 attributes.
func appPolicy(log logr.Logger, beacon *meshv1alpha1.MeshBeacon, policy meshv1alpha1.MeshPolicy) *securityv1beta1.AuthorizationPolicy {
	targetService := policy.TargetService
	if len(targetService) == 0 {
		log.Info("policy has no target service, defaulting to the application name",
			"target", policy.TargetApp)
		targetService = policy.TargetApp
	}
	to := make([]*securityapi.Rule_To, 0, len(policy.Endpoints))
	for _, endpoint := range policy.Endpoints {
		to = append(to, &securityapi.Rule_To{
			Operation: &securityapi.Operation{
				Ports:   portStrings(endpoint.Ports),
				Hosts:   endpoint.Hosts,
				Methods: methodStrings(endpoint.Methods),
				Paths:   endpoint.Paths,
			},
		})
	}
	return &securityv1beta1.AuthorizationPolicy{
		TypeMeta:   policyTypeMeta(),
		ObjectMeta: policyObjectMeta(beacon, Name(beacon, policy)),
		Spec: securityapi.AuthorizationPolicy{
			TargetRefs: []*typeapi.PolicyTargetReference{
				{Group: "", Kind: "Service", Name: targetService},
			},
			Rules: []*securityapi.Rule{
				{
					From: sourceRules(policy),
					To:   to,
				},
			},
		},
	}
}

// modelOperatorPolicy keeps the Juju controller able to reach the model
// operator after the namespace joins the mesh.
func modelOperatorPolicy(beacon *meshv1alpha1.MeshBeacon) *securityv1beta1.AuthorizationPolicy {
	return &securityv1beta1.AuthorizationPolicy{
		TypeMeta:   policyTypeMeta(),
		ObjectMeta: policyObjectMeta(beacon, ModelOperatorPolicyName(beacon)),
		Spec: securityapi.AuthorizationPolicy{
			Selector: &typeapi.WorkloadSelector{
				MatchLabels: map[string]string{ModelOperatorLabel: "modeloperator"},
			},
			Rules: []*securityapi.Rule{{}},
		},
	}
}

func sourceRules(policy meshv1alpha1.MeshPolicy) []*securityapi.Rule_From {
	return []*securityapi.Rule_From{
		{
			Source: &securityapi.Source{
				Principals: []string{mesh.PeerIdentity(policy.SourceApp, policy.SourceNamespace)},
			},
		},
	}
}

func policyTypeMeta() metav1.TypeMeta {
	return metav1.TypeMeta{
		APIVersion: "security.istio.io/v1beta1",
		Kind:       "AuthorizationPolicy",
	}
}

func policyObjectMeta(beacon *meshv1alpha1.MeshBeacon, name string) metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:      name,
		Namespace: beacon.Namespace,
	}
}

func portStrings(ports []int32) []string {
	if len(ports) == 0 {
		return nil
	}
	out := make([]string, 0, len(ports))
	for _, port := range ports {
		out = append(out, fmt.Sprint(port))
	}
	return out
}

func methodStrings(methods []meshv1alpha1.Method) []string {
	if len(methods) == 0 {
		return nil
	}
	out := make([]string, 0, len(methods))
	for _, method := range methods {
		out = append(out, string(method))
	}
	return out
}
