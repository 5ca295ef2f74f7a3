package policy

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	securityv1beta1 "istio.io/client-go/pkg/apis/security/v1beta1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
)

func newBeacon() *meshv1alpha1.MeshBeacon {
	beacon := &meshv1alpha1.MeshBeacon{
		ObjectMeta: metav1.ObjectMeta{Name: "istio-beacon", Namespace: "welcome-k8s"},
	}
	meshv1alpha1.SetDefaults_MeshBeacon(beacon)
	return beacon
}

func TestUnitPolicy(t *testing.T) {
	policies := []meshv1alpha1.MeshPolicy{
		{
			SourceApp:       "prometheus",
			SourceNamespace: "cos",
			TargetApp:       "istio-beacon",
			TargetNamespace: "welcome-k8s",
			TargetType:      meshv1alpha1.PolicyTargetTypeUnit,
			Endpoints:       []meshv1alpha1.PolicyEndpoint{{Ports: []int32{15090}}},
		},
	}
	objects := Resources(logr.Discard(), newBeacon(), policies)
	require.Len(t, objects, 1)

	authPolicy, ok := objects[0].(*securityv1beta1.AuthorizationPolicy)
	require.True(t, ok)
	require.NotNil(t, authPolicy.Spec.Selector)
	assert.Equal(t, map[string]string{AppNameLabel: "istio-beacon"}, authPolicy.Spec.Selector.MatchLabels)
	assert.Empty(t, authPolicy.Spec.TargetRefs)

	require.Len(t, authPolicy.Spec.Rules, 1)
	rule := authPolicy.Spec.Rules[0]
	require.Len(t, rule.From, 1)
	assert.Equal(t, []string{"cluster.local/ns/cos/sa/prometheus"}, rule.From[0].Source.Principals)
	require.Len(t, rule.To, 1)
	assert.Equal(t, []string{"15090"}, rule.To[0].Operation.Ports)
}

func TestUnitPolicyWithL7AttributesSkipped(t *testing.T) {
	policies := []meshv1alpha1.MeshPolicy{
		{
			SourceApp:       "webapp",
			SourceNamespace: "welcome-k8s",
			TargetApp:       "istio-beacon",
			TargetType:      meshv1alpha1.PolicyTargetTypeUnit,
			Endpoints: []meshv1alpha1.PolicyEndpoint{
				{Methods: []meshv1alpha1.Method{meshv1alpha1.MethodGet}},
			},
		},
	}
	objects := Resources(logr.Discard(), newBeacon(), policies)
	assert.Empty(t, objects)
}

func TestAppPolicyWithL7Attributes(t *testing.T) {
	policies := []meshv1alpha1.MeshPolicy{
		{
			SourceApp:       "webapp",
			SourceNamespace: "welcome-k8s",
			TargetApp:       "backend",
			TargetNamespace: "welcome-k8s",
			TargetService:   "backend-grpc",
			TargetType:      meshv1alpha1.PolicyTargetTypeApp,
			Endpoints: []meshv1alpha1.PolicyEndpoint{
				{
					Ports:   []int32{8080},
					Hosts:   []string{"backend.example.com"},
					Methods: []meshv1alpha1.Method{meshv1alpha1.MethodGet, meshv1alpha1.MethodPost},
					Paths:   []string{"/api/*"},
				},
			},
		},
	}
	objects := Resources(logr.Discard(), newBeacon(), policies)
	require.Len(t, objects, 1)

	authPolicy, ok := objects[0].(*securityv1beta1.AuthorizationPolicy)
	require.True(t, ok)
	assert.Nil(t, authPolicy.Spec.Selector)
	require.Len(t, authPolicy.Spec.TargetRefs, 1)
	assert.Equal(t, "Service", authPolicy.Spec.TargetRefs[0].Kind)
	assert.Equal(t, "backend-grpc", authPolicy.Spec.TargetRefs[0].Name)

	require.Len(t, authPolicy.Spec.Rules, 1)
	require.Len(t, authPolicy.Spec.Rules[0].To, 1)
	operation := authPolicy.Spec.Rules[0].To[0].Operation
	assert.Equal(t, []string{"8080"}, operation.Ports)
	assert.Equal(t, []string{"backend.example.com"}, operation.Hosts)
	assert.Equal(t, []string{"GET", "POST"}, operation.Methods)
	assert.Equal(t, []string{"/api/*"}, operation.Paths)
}

func TestAppPolicyDefaultsTargetService(t *testing.T) {
	policies := []meshv1alpha1.MeshPolicy{
		{
			SourceApp:       "webapp",
			SourceNamespace: "welcome-k8s",
			TargetApp:       "backend",
			TargetType:      meshv1alpha1.PolicyTargetTypeApp,
		},
	}
	objects := Resources(logr.Discard(), newBeacon(), policies)
	require.Len(t, objects, 1)

	authPolicy := objects[0].(*securityv1beta1.AuthorizationPolicy)
	require.Len(t, authPolicy.Spec.TargetRefs, 1)
	assert.Equal(t, "backend", authPolicy.Spec.TargetRefs[0].Name)
}

func TestModelOperatorPolicyAddedWhenModelOnMesh(t *testing.T) {
	beacon := newBeacon()
	onMesh := true
	beacon.Spec.ModelOnMesh = &onMesh

	objects := Resources(logr.Discard(), beacon, nil)
	require.Len(t, objects, 1)

	authPolicy := objects[0].(*securityv1beta1.AuthorizationPolicy)
	assert.Equal(t, "istio-beacon-welcome-k8s-policy-all-sources-modeloperator", authPolicy.Name)
	require.NotNil(t, authPolicy.Spec.Selector)
	assert.Equal(t, map[string]string{ModelOperatorLabel: "modeloperator"}, authPolicy.Spec.Selector.MatchLabels)

	// a single empty rule allows traffic from any source
	require.Len(t, authPolicy.Spec.Rules, 1)
	assert.Empty(t, authPolicy.Spec.Rules[0].From)
	assert.Empty(t, authPolicy.Spec.Rules[0].To)
}

func TestNoModelOperatorPolicyByDefault(t *testing.T) {
	objects := Resources(logr.Discard(), newBeacon(), nil)
	assert.Empty(t, objects)
}
