package v1alpha1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func TestSetDefaultsMeshBeacon(t *testing.T) {
	beacon := &MeshBeacon{}
	SetDefaults_MeshBeacon(beacon)

	require.NotNil(t, beacon.Spec.ManageAuthorizationPolicies)
	assert.True(t, *beacon.Spec.ManageAuthorizationPolicies)
	require.NotNil(t, beacon.Spec.ModelOnMesh)
	assert.False(t, *beacon.Spec.ModelOnMesh)
	require.NotNil(t, beacon.Spec.ReadyTimeoutSeconds)
	assert.Equal(t, DefaultReadyTimeoutSeconds, *beacon.Spec.ReadyTimeoutSeconds)
	require.NotNil(t, beacon.Spec.Replicas)
	assert.Equal(t, int32(1), *beacon.Spec.Replicas)

	assert.Equal(t, DefaultMetricsProxyImage, beacon.Spec.MetricsProxy.Name)
	assert.Equal(t, "IfNotPresent", beacon.Spec.MetricsProxy.PullPolicy)
	require.NotNil(t, beacon.Spec.MetricsProxy.Port)
	assert.Equal(t, DefaultMetricsProxyPort, *beacon.Spec.MetricsProxy.Port)
}

func TestSetDefaultsMeshBeaconPreservesExplicitValues(t *testing.T) {
	manage := false
	onMesh := true
	timeout := int32(150)
	replicas := int32(3)
	port := int32(9090)
	beacon := &MeshBeacon{
		Spec: MeshBeaconSpec{
			ManageAuthorizationPolicies: &manage,
			ModelOnMesh:                 &onMesh,
			ReadyTimeoutSeconds:         &timeout,
			Replicas:                    &replicas,
			MetricsProxy: MetricsProxyConfig{
				ImageConfig: ImageConfig{Name: "custom-proxy", Tag: "v2"},
				Port:        &port,
			},
		},
	}
	SetDefaults_MeshBeacon(beacon)

	assert.False(t, *beacon.Spec.ManageAuthorizationPolicies)
	assert.True(t, *beacon.Spec.ModelOnMesh)
	assert.Equal(t, int32(150), *beacon.Spec.ReadyTimeoutSeconds)
	assert.Equal(t, int32(3), *beacon.Spec.Replicas)
	assert.Equal(t, "custom-proxy", beacon.Spec.MetricsProxy.Name)
	assert.Equal(t, int32(9090), *beacon.Spec.MetricsProxy.Port)
}

func TestSetDefaultsMeshConsumer(t *testing.T) {
	consumer := &MeshConsumer{
		Spec: MeshConsumerSpec{
			BeaconRef: "istio-beacon",
			Policies: []MeshPolicy{
				{SourceApp: "source", TargetApp: "target"},
				{SourceApp: "source", TargetApp: "target", TargetType: PolicyTargetTypeUnit},
			},
		},
	}
	SetDefaults_MeshConsumer(consumer)

	require.NotNil(t, consumer.Spec.AutoJoinMesh)
	assert.True(t, *consumer.Spec.AutoJoinMesh)
	assert.Equal(t, PolicyTargetTypeApp, consumer.Spec.Policies[0].TargetType)
	assert.Equal(t, PolicyTargetTypeUnit, consumer.Spec.Policies[1].TargetType)
}

func TestSetConditionTransitionTime(t *testing.T) {
	status := &MeshBeaconStatus{}
	status.SetCondition(Condition{
		Type:   ConditionTypeReady,
		Status: ConditionStatusFalse,
		Reason: ConditionReasonWaypointPending,
	})

	past := metav1.NewTime(time.Now().Add(-time.Hour))
	status.Conditions[0].LastTransitionTime = past

	// same status, new message: transition time must not move
	status.SetCondition(Condition{
		Type:    ConditionTypeReady,
		Status:  ConditionStatusFalse,
		Reason:  ConditionReasonWaypointPending,
		Message: "still waiting",
	})
	ready := status.GetCondition(ConditionTypeReady)
	require.NotNil(t, ready)
	assert.Equal(t, "still waiting", ready.Message)
	assert.True(t, ready.LastTransitionTime.Equal(&past))

	// status flips: transition time must move
	status.SetCondition(Condition{
		Type:   ConditionTypeReady,
		Status: ConditionStatusTrue,
		Reason: ConditionReasonWaypointReady,
	})
	ready = status.GetCondition(ConditionTypeReady)
	require.NotNil(t, ready)
	assert.False(t, ready.LastTransitionTime.Equal(&past))
}

func TestRemoveCondition(t *testing.T) {
	status := &MeshBeaconStatus{}
	status.SetCondition(Condition{Type: ConditionTypeReady, Status: ConditionStatusTrue})
	status.SetCondition(Condition{Type: ConditionTypeReconciled, Status: ConditionStatusTrue})

	status.RemoveCondition(ConditionTypeReady)
	assert.Nil(t, status.GetCondition(ConditionTypeReady))
	assert.NotNil(t, status.GetCondition(ConditionTypeReconciled))
}

func TestConditionMatches(t *testing.T) {
	cond := &Condition{Type: ConditionTypeReady, Status: ConditionStatusTrue}
	assert.True(t, cond.Matches(ConditionStatusTrue))
	assert.False(t, cond.Matches(ConditionStatusFalse))

	var missing *Condition
	assert.False(t, missing.Matches(ConditionStatusTrue))
}
