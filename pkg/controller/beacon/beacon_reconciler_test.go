package beacon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	securityv1beta1 "istio.io/client-go/pkg/apis/security/v1beta1"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/components/common"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/components/waypoint"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/mesh"
)

func testScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	require.NoError(t, gatewayv1.Install(scheme))
	require.NoError(t, securityv1beta1.AddToScheme(scheme))
	require.NoError(t, meshv1alpha1.AddToScheme(scheme))
	return scheme
}

// applyAsNoop records server-side apply patches, which the fake client cannot
// execute, and passes every other call through.
func applyAsNoop(applied *[]client.Object) interceptor.Funcs {
	return interceptor.Funcs{
		Patch: func(ctx context.Context, c client.WithWatch, obj client.Object, patch client.Patch, opts ...client.PatchOption) error {
			if patch.Type() == types.ApplyPatchType {
				*applied = append(*applied, obj)
				return nil
			}
			return c.Patch(ctx, obj, patch, opts...)
		},
	}
}

func newReconcileTarget(t *testing.T, applied *[]client.Object, objects ...client.Object) (*ReconcileMeshBeacon, client.Client) {
	t.Helper()
	scheme := testScheme(t)
	c := fake.NewClientBuilder().
		WithScheme(scheme).
		WithStatusSubresource(&meshv1alpha1.MeshBeacon{}, &meshv1alpha1.MeshConsumer{}).
		WithInterceptorFuncs(applyAsNoop(applied)).
		WithObjects(objects...).
		Build()
	r := &ReconcileMeshBeacon{
		client:             c,
		scheme:             scheme,
		tracer:             noop.NewTracerProvider().Tracer("test"),
		readyCheckInterval: 50 * time.Millisecond,
	}
	return r, c
}

func beaconRequest() reconcile.Request {
	return reconcile.Request{
		NamespacedName: client.ObjectKey{Name: "istio-beacon", Namespace: "welcome-k8s"},
	}
}

func testNamespace() *corev1.Namespace {
	return &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "welcome-k8s"}}
}

func testBeacon() *meshv1alpha1.MeshBeacon {
	return &meshv1alpha1.MeshBeacon{
		ObjectMeta: metav1.ObjectMeta{Name: "istio-beacon", Namespace: "welcome-k8s"},
	}
}

func readyWaypointDeployment() *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      mesh.WaypointName("welcome-k8s", "istio-beacon"),
			Namespace: "welcome-k8s",
		},
		Status: appsv1.DeploymentStatus{Replicas: 1, ReadyReplicas: 1},
	}
}

func consumerWorkload(name string) *appsv1.StatefulSet {
	return &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "welcome-k8s"},
		Spec: appsv1.StatefulSetSpec{
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{"app.kubernetes.io/name": name},
				},
			},
		},
	}
}

func getBeacon(t *testing.T, c client.Client) *meshv1alpha1.MeshBeacon {
	t.Helper()
	beacon := &meshv1alpha1.MeshBeacon{}
	require.NoError(t, c.Get(context.Background(), client.ObjectKey{Name: "istio-beacon", Namespace: "welcome-k8s"}, beacon))
	return beacon
}

func TestReconcileReadyPath(t *testing.T) {
	consumer := &meshv1alpha1.MeshConsumer{
		ObjectMeta: metav1.ObjectMeta{Name: "webapp", Namespace: "welcome-k8s"},
		Spec: meshv1alpha1.MeshConsumerSpec{
			BeaconRef: "istio-beacon",
			Policies: []meshv1alpha1.MeshPolicy{
				{
					SourceApp:       "webapp",
					SourceNamespace: "welcome-k8s",
					TargetApp:       "backend",
					TargetNamespace: "welcome-k8s",
				},
			},
		},
	}
	var applied []client.Object
	r, c := newReconcileTarget(t, &applied,
		testNamespace(), testBeacon(), readyWaypointDeployment(),
		consumer, consumerWorkload("webapp"))

	_, err := r.Reconcile(context.Background(), beaconRequest())
	require.NoError(t, err)

	beacon := getBeacon(t, c)
	assert.Equal(t, meshv1alpha1.BeaconPhaseReady, beacon.Status.Phase)
	assert.Equal(t, mesh.WaypointName("welcome-k8s", "istio-beacon"), beacon.Status.WaypointName)
	assert.Equal(t, int32(1), beacon.Status.ManagedPolicies)

	ready := beacon.Status.GetCondition(meshv1alpha1.ConditionTypeReady)
	require.NotNil(t, ready)
	assert.True(t, ready.Matches(meshv1alpha1.ConditionStatusTrue))
	reconciled := beacon.Status.GetCondition(meshv1alpha1.ConditionTypeReconciled)
	require.NotNil(t, reconciled)
	assert.True(t, reconciled.Matches(meshv1alpha1.ConditionStatusTrue))

	// the waypoint set and the consumer's policy were applied
	kinds := map[string]int{}
	for _, obj := range applied {
		kinds[obj.GetObjectKind().GroupVersionKind().Kind]++
	}
	assert.Equal(t, 1, kinds["Gateway"])
	assert.Equal(t, 1, kinds["HorizontalPodAutoscaler"])
	assert.Equal(t, 1, kinds["AuthorizationPolicy"])

	// the consumer received its labels and its workload joined the mesh
	updatedConsumer := &meshv1alpha1.MeshConsumer{}
	require.NoError(t, c.Get(context.Background(), client.ObjectKey{Name: "webapp", Namespace: "welcome-k8s"}, updatedConsumer))
	assert.Equal(t, beacon.Status.MeshLabels, updatedConsumer.Status.Labels)
	published := updatedConsumer.Status.GetCondition(meshv1alpha1.ConditionTypeLabelsPublished)
	require.NotNil(t, published)
	assert.True(t, published.Matches(meshv1alpha1.ConditionStatusTrue))

	workload := &appsv1.StatefulSet{}
	require.NoError(t, c.Get(context.Background(), client.ObjectKey{Name: "webapp", Namespace: "welcome-k8s"}, workload))
	assert.Equal(t, mesh.WaypointName("welcome-k8s", "istio-beacon"),
		workload.Spec.Template.Labels["istio.io/use-waypoint"])
}

func TestReconcilePublishesEmptyLabelsWhenModelOnMesh(t *testing.T) {
	beacon := testBeacon()
	onMesh := true
	beacon.Spec.ModelOnMesh = &onMesh

	consumer := &meshv1alpha1.MeshConsumer{
		ObjectMeta: metav1.ObjectMeta{Name: "webapp", Namespace: "welcome-k8s"},
		Spec:       meshv1alpha1.MeshConsumerSpec{BeaconRef: "istio-beacon"},
	}
	var applied []client.Object
	r, c := newReconcileTarget(t, &applied,
		testNamespace(), beacon, readyWaypointDeployment(), consumer)

	_, err := r.Reconcile(context.Background(), beaconRequest())
	require.NoError(t, err)

	// the whole namespace is on the mesh; per-workload labels would
	// double-manage it
	updated := getBeacon(t, c)
	assert.Empty(t, updated.Status.MeshLabels)

	namespace := &corev1.Namespace{}
	require.NoError(t, c.Get(context.Background(), client.ObjectKey{Name: "welcome-k8s"}, namespace))
	assert.Equal(t, "ambient", namespace.Labels["istio.io/dataplane-mode"])
}

func TestReconcileTimesOutWhenWaypointNeverReady(t *testing.T) {
	beacon := testBeacon()
	timeout := int32(1)
	beacon.Spec.ReadyTimeoutSeconds = &timeout

	var applied []client.Object
	r, c := newReconcileTarget(t, &applied, testNamespace(), beacon)

	_, err := r.Reconcile(context.Background(), beaconRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready after 1s")
	assert.Contains(t, err.Error(), "is Istio properly installed?")

	updated := getBeacon(t, c)
	assert.Equal(t, meshv1alpha1.BeaconPhaseFailedTimeout, updated.Status.Phase)
	ready := updated.Status.GetCondition(meshv1alpha1.ConditionTypeReady)
	require.NotNil(t, ready)
	assert.True(t, ready.Matches(meshv1alpha1.ConditionStatusFalse))
	assert.Equal(t, meshv1alpha1.ConditionReasonWaypointTimeout, ready.Reason)
}

func TestReconcileSkipsReadinessWaitAtZeroReplicas(t *testing.T) {
	beacon := testBeacon()
	zero := int32(0)
	beacon.Spec.Replicas = &zero

	var applied []client.Object
	r, c := newReconcileTarget(t, &applied, testNamespace(), beacon)

	_, err := r.Reconcile(context.Background(), beaconRequest())
	require.NoError(t, err)

	updated := getBeacon(t, c)
	assert.Equal(t, meshv1alpha1.BeaconPhaseReady, updated.Status.Phase)
	assert.Empty(t, applied, "a beacon scaled to zero applies no waypoint resources")
}

func TestReconcileRejectsInvalidConfig(t *testing.T) {
	beacon := testBeacon()
	negative := int32(-5)
	beacon.Spec.ReadyTimeoutSeconds = &negative

	var applied []client.Object
	r, c := newReconcileTarget(t, &applied, testNamespace(), beacon)

	_, err := r.Reconcile(context.Background(), beaconRequest())
	require.NoError(t, err, "invalid configuration is reported through conditions, not retried")

	updated := getBeacon(t, c)
	reconciled := updated.Status.GetCondition(meshv1alpha1.ConditionTypeReconciled)
	require.NotNil(t, reconciled)
	assert.True(t, reconciled.Matches(meshv1alpha1.ConditionStatusFalse))
	assert.Equal(t, meshv1alpha1.ConditionReasonInvalidConfig, reconciled.Reason)
	assert.Empty(t, applied)
}

func TestReconcileIgnoresConsumersOfOtherBeacons(t *testing.T) {
	consumer := &meshv1alpha1.MeshConsumer{
		ObjectMeta: metav1.ObjectMeta{Name: "webapp", Namespace: "welcome-k8s"},
		Spec: meshv1alpha1.MeshConsumerSpec{
			BeaconRef: "another-beacon",
			Policies: []meshv1alpha1.MeshPolicy{
				{SourceApp: "webapp", SourceNamespace: "welcome-k8s", TargetApp: "backend"},
			},
		},
	}
	var applied []client.Object
	r, c := newReconcileTarget(t, &applied,
		testNamespace(), testBeacon(), readyWaypointDeployment(), consumer)

	_, err := r.Reconcile(context.Background(), beaconRequest())
	require.NoError(t, err)

	updated := getBeacon(t, c)
	assert.Equal(t, int32(0), updated.Status.ManagedPolicies)
}

func TestReconcileFinalizesDeletedBeacon(t *testing.T) {
	now := metav1.Now()
	beacon := testBeacon()
	beacon.DeletionTimestamp = &now
	beacon.Finalizers = []string{finalizer}

	staleGateway := &gatewayv1.Gateway{
		ObjectMeta: metav1.ObjectMeta{
			Name:      mesh.WaypointName("welcome-k8s", "istio-beacon"),
			Namespace: "welcome-k8s",
			Labels:    common.ScopeLabels("istio-beacon", "welcome-k8s", waypoint.Scope),
		},
	}
	var applied []client.Object
	r, c := newReconcileTarget(t, &applied, testNamespace(), beacon, staleGateway)

	_, err := r.Reconcile(context.Background(), beaconRequest())
	require.NoError(t, err)

	ctx := context.Background()
	err = c.Get(ctx, client.ObjectKey{Name: staleGateway.Name, Namespace: "welcome-k8s"}, &gatewayv1.Gateway{})
	assert.True(t, apierrors.IsNotFound(err), "waypoint resources must be pruned on removal")

	err = c.Get(ctx, client.ObjectKey{Name: "istio-beacon", Namespace: "welcome-k8s"}, &meshv1alpha1.MeshBeacon{})
	assert.True(t, apierrors.IsNotFound(err), "the finalizer must be released")
}

func TestMapConsumerToBeacon(t *testing.T) {
	consumer := &meshv1alpha1.MeshConsumer{
		ObjectMeta: metav1.ObjectMeta{Name: "webapp", Namespace: "welcome-k8s"},
		Spec:       meshv1alpha1.MeshConsumerSpec{BeaconRef: "istio-beacon"},
	}
	requests := mapConsumerToBeacon(context.Background(), consumer)
	require.Len(t, requests, 1)
	assert.Equal(t, beaconRequest(), requests[0])

	unattached := &meshv1alpha1.MeshConsumer{
		ObjectMeta: metav1.ObjectMeta{Name: "webapp", Namespace: "welcome-k8s"},
	}
	assert.Empty(t, mapConsumerToBeacon(context.Background(), unattached))
}
