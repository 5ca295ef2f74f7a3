package beacon

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace"
	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/components/ambient"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/components/policy"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/components/waypoint"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/mesh"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/metrics"
)

const finalizer = "mesh.canonical.com/beacon"

var _ reconcile.Reconciler = &ReconcileMeshBeacon{}

// ReconcileMeshBeacon reconciles a MeshBeacon object.
type ReconcileMeshBeacon struct {
	client             client.Client
	scheme             *runtime.Scheme
	tracer             trace.Tracer
	readyCheckInterval time.Duration
}

// Reconcile drives the cluster towards the beacon's declared configuration:
// namespace labels, waypoint resources, a bounded readiness wait,
// authorization policies, and the mesh labels published to consumers.
func (r *ReconcileMeshBeacon) Reconcile(ctx context.Context, request reconcile.Request) (reconcile.Result, error) {
	reqLogger := log.WithValues("Request.Namespace", request.Namespace, "Request.Name", request.Name)

	instance := &meshv1alpha1.MeshBeacon{}
	err := r.client.Get(ctx, request.NamespacedName, instance)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return reconcile.Result{}, nil
		}
		return reconcile.Result{}, err
	}

	ctx, span := r.tracer.Start(ctx, "reconcile-beacon")
	defer span.End()

	if instance.DeletionTimestamp != nil {
		return reconcile.Result{}, r.finalize(ctx, reqLogger, instance)
	}
	if !controllerutil.ContainsFinalizer(instance, finalizer) {
		controllerutil.AddFinalizer(instance, finalizer)
		if err := r.client.Update(ctx, instance); err != nil {
			return reconcile.Result{}, errors.Wrap(err, "adding finalizer")
		}
	}

	meshv1alpha1.SetDefaults_MeshBeacon(instance)

	status := instance.Status.DeepCopy()
	status.ObservedGeneration = instance.Generation

	if err := validate(&instance.Spec); err != nil {
		reqLogger.Error(err, "invalid configuration")
		status.SetCondition(meshv1alpha1.Condition{
			Type:    meshv1alpha1.ConditionTypeReconciled,
			Status:  meshv1alpha1.ConditionStatusFalse,
			Reason:  meshv1alpha1.ConditionReasonInvalidConfig,
			Message: err.Error(),
		})
		metrics.Reconciles.WithLabelValues(metrics.OutcomeError).Inc()
		return reconcile.Result{}, r.updateStatus(ctx, instance, status)
	}

	reconciler := &beaconReconciler{
		ReconcileMeshBeacon: r,
		log:                 reqLogger,
		instance:            instance,
		status:              status,
	}
	result, err := reconciler.reconcile(ctx)
	if statusErr := r.updateStatus(ctx, instance, status); statusErr != nil && err == nil {
		err = statusErr
	}
	switch {
	case err == nil:
		metrics.Reconciles.WithLabelValues(metrics.OutcomeSuccess).Inc()
	case status.Phase == meshv1alpha1.BeaconPhaseFailedTimeout:
		metrics.Reconciles.WithLabelValues(metrics.OutcomeTimeout).Inc()
	default:
		metrics.Reconciles.WithLabelValues(metrics.OutcomeError).Inc()
	}
	return result, err
}

func (r *ReconcileMeshBeacon) updateStatus(ctx context.Context, instance *meshv1alpha1.MeshBeacon, status *meshv1alpha1.MeshBeaconStatus) error {
	instance.Status = *status
	if err := r.client.Status().Update(ctx, instance); err != nil {
		return errors.Wrap(err, "updating beacon status")
	}
	return nil
}

// finalize tears down everything the beacon put in the cluster.  Like the
// apply path, teardown is label-scoped, so objects from other beacons in the
// same namespace survive.
func (r *ReconcileMeshBeacon) finalize(ctx context.Context, reqLogger logr.Logger, instance *meshv1alpha1.MeshBeacon) error {
	if !controllerutil.ContainsFinalizer(instance, finalizer) {
		return nil
	}
	reqLogger.Info("removing beacon resources")

	if err := waypoint.NewResourceManager(r.client, reqLogger, instance).Delete(ctx); err != nil {
		return err
	}
	if err := policy.NewResourceManager(r.client, reqLogger, instance).Delete(ctx); err != nil {
		return err
	}
	if err := ambient.Remove(ctx, r.client, reqLogger, instance); err != nil {
		return err
	}
	if err := mesh.RemoveWorkloadLabels(ctx, r.client, instance.Name, instance.Namespace); err != nil {
		if !apierrors.IsNotFound(errors.Cause(err)) {
			return err
		}
		// the beacon's own workload may already be gone during teardown
		reqLogger.V(1).Info("beacon workload already gone, skipping label removal")
	}
	metrics.ManagedPolicies.DeleteLabelValues(instance.Namespace, instance.Name)

	controllerutil.RemoveFinalizer(instance, finalizer)
	if err := r.client.Update(ctx, instance); err != nil {
		return errors.Wrap(err, "removing finalizer")
	}
	return nil
}

func validate(spec *meshv1alpha1.MeshBeaconSpec) error {
	if spec.ReadyTimeoutSeconds != nil && *spec.ReadyTimeoutSeconds <= 0 {
		return errors.Errorf("readyTimeoutSeconds must be positive, got %d", *spec.ReadyTimeoutSeconds)
	}
	if spec.Replicas != nil && *spec.Replicas < 0 {
		return errors.Errorf("replicas must not be negative, got %d", *spec.Replicas)
	}
	if spec.MetricsProxy.Port != nil && (*spec.MetricsProxy.Port < 1 || *spec.MetricsProxy.Port > 65535) {
		return errors.Errorf("metrics proxy port out of range: %d", *spec.MetricsProxy.Port)
	}
	return nil
}

// beaconReconciler holds the state of one reconcile pass.
type beaconReconciler struct {
	*ReconcileMeshBeacon
	log      logr.Logger
	instance *meshv1alpha1.MeshBeacon
	status   *meshv1alpha1.MeshBeaconStatus
}

func (b *beaconReconciler) reconcile(ctx context.Context) (reconcile.Result, error) {
	waypointName := waypoint.Name(b.instance)
	b.status.WaypointName = waypointName

	// subscribe (or unsubscribe) the namespace per modelOnMesh
	if err := ambient.Sync(ctx, b.client, b.log, b.instance, waypointName); err != nil {
		return b.reconcileError(err)
	}

	// the beacon's own workload always routes through the waypoint
	ambientLabels := mesh.AmbientLabels(waypointName, b.instance.Namespace)
	if err := mesh.ReconcileWorkloadLabels(ctx, b.client, b.instance.Name, b.instance.Namespace, ambientLabels); err != nil {
		if !apierrors.IsNotFound(errors.Cause(err)) {
			return b.reconcileError(err)
		}
		b.log.V(1).Info("beacon workload not found, skipping self-labelling")
	}

	waypointManager := waypoint.NewResourceManager(b.client, b.log, b.instance)
	if err := waypoint.Sync(ctx, waypointManager, b.instance); err != nil {
		return b.reconcileError(err)
	}

	replicas := int32(1)
	if b.instance.Spec.Replicas != nil {
		replicas = *b.instance.Spec.Replicas
	}
	if replicas > 0 {
		if err := b.waitForWaypoint(ctx, waypointName); err != nil {
			b.status.Phase = meshv1alpha1.BeaconPhaseFailedTimeout
			b.status.SetCondition(meshv1alpha1.Condition{
				Type:    meshv1alpha1.ConditionTypeReady,
				Status:  meshv1alpha1.ConditionStatusFalse,
				Reason:  meshv1alpha1.ConditionReasonWaypointTimeout,
				Message: err.Error(),
			})
			metrics.ReadinessTimeouts.Inc()
			return reconcile.Result{}, err
		}
	}

	consumers, err := b.consumers(ctx)
	if err != nil {
		return b.reconcileError(err)
	}

	// modelOnMesh already puts every workload in the namespace on the mesh;
	// publishing per-workload labels on top would double-manage them
	publishedLabels := map[string]string{}
	if b.instance.Spec.ModelOnMesh == nil || !*b.instance.Spec.ModelOnMesh {
		publishedLabels = ambientLabels
	}
	b.status.MeshLabels = publishedLabels
	if err := b.publishToConsumers(ctx, consumers, publishedLabels); err != nil {
		return b.reconcileError(err)
	}

	metricsPort := meshv1alpha1.DefaultMetricsProxyPort
	if b.instance.Spec.MetricsProxy.Port != nil {
		metricsPort = *b.instance.Spec.MetricsProxy.Port
	}
	policies := mesh.CollectPolicies(consumers)
	policies = append(policies, mesh.MetricsPolicies(b.instance, consumers, metricsPort)...)

	policyManager := policy.NewResourceManager(b.client, b.log, b.instance)
	managed, err := policy.Sync(ctx, policyManager, b.instance, policies)
	if err != nil {
		return b.reconcileError(err)
	}
	b.status.ManagedPolicies = int32(managed)
	metrics.ManagedPolicies.WithLabelValues(b.instance.Namespace, b.instance.Name).Set(float64(managed))

	b.status.Phase = meshv1alpha1.BeaconPhaseReady
	b.status.SetCondition(meshv1alpha1.Condition{
		Type:   meshv1alpha1.ConditionTypeReady,
		Status: meshv1alpha1.ConditionStatusTrue,
		Reason: meshv1alpha1.ConditionReasonWaypointReady,
	})
	b.status.SetCondition(meshv1alpha1.Condition{
		Type:   meshv1alpha1.ConditionTypeReconciled,
		Status: meshv1alpha1.ConditionStatusTrue,
		Reason: meshv1alpha1.ConditionReasonReconcileSuccessful,
	})
	return reconcile.Result{}, nil
}

func (b *beaconReconciler) reconcileError(err error) (reconcile.Result, error) {
	b.status.Phase = meshv1alpha1.BeaconPhasePending
	b.status.SetCondition(meshv1alpha1.Condition{
		Type:    meshv1alpha1.ConditionTypeReconciled,
		Status:  meshv1alpha1.ConditionStatusFalse,
		Reason:  meshv1alpha1.ConditionReasonReconcileError,
		Message: err.Error(),
	})
	return reconcile.Result{}, err
}

// waitForWaypoint polls the waypoint deployment until all its replicas are
// ready, bounded by readyTimeoutSeconds.  On timeout the beacon fails
// definitively; the next watch event re-drives the reconcile, there is no
// internal retry.
func (b *beaconReconciler) waitForWaypoint(ctx context.Context, waypointName string) error {
	timeout := time.Duration(meshv1alpha1.DefaultReadyTimeoutSeconds) * time.Second
	if b.instance.Spec.ReadyTimeoutSeconds != nil {
		timeout = time.Duration(*b.instance.Spec.ReadyTimeoutSeconds) * time.Second
	}

	b.status.Phase = meshv1alpha1.BeaconPhasePending
	b.status.SetCondition(meshv1alpha1.Condition{
		Type:   meshv1alpha1.ConditionTypeReady,
		Status: meshv1alpha1.ConditionStatusFalse,
		Reason: meshv1alpha1.ConditionReasonWaypointPending,
	})

	err := wait.PollUntilContextTimeout(ctx, b.readyCheckInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			deployment := &appsv1.Deployment{}
			err := b.client.Get(ctx, client.ObjectKey{Name: waypointName, Namespace: b.instance.Namespace}, deployment)
			if apierrors.IsNotFound(err) {
				b.log.V(1).Info("waypoint deployment not found, retrying")
				return false, nil
			}
			if err != nil {
				return false, err
			}
			ready := deployment.Status.Replicas > 0 &&
				deployment.Status.ReadyReplicas == deployment.Status.Replicas
			if !ready {
				b.log.V(1).Info("waypoint deployment not ready, retrying",
					"ready", deployment.Status.ReadyReplicas, "want", deployment.Status.Replicas)
			}
			return ready, nil
		})
	if wait.Interrupted(err) {
		return errors.Errorf("waypoint deployment %s not ready after %s, is Istio properly installed?",
			waypointName, timeout)
	}
	return err
}

func (b *beaconReconciler) consumers(ctx context.Context) ([]meshv1alpha1.MeshConsumer, error) {
	list := &meshv1alpha1.MeshConsumerList{}
	if err := b.client.List(ctx, list, client.InNamespace(b.instance.Namespace)); err != nil {
		return nil, errors.Wrap(err, "listing mesh consumers")
	}
	consumers := make([]meshv1alpha1.MeshConsumer, 0, len(list.Items))
	for _, consumer := range list.Items {
		if consumer.Spec.BeaconRef != b.instance.Name {
			continue
		}
		meshv1alpha1.SetDefaults_MeshConsumer(&consumer)
		consumers = append(consumers, consumer)
	}
	return consumers, nil
}

// publishToConsumers writes the mesh labels into each consumer's status and,
// for consumers that opted in, patches their workload with the labels.
func (b *beaconReconciler) publishToConsumers(ctx context.Context, consumers []meshv1alpha1.MeshConsumer, labels map[string]string) error {
	for i := range consumers {
		consumer := &consumers[i]
		consumer.Status.Labels = labels
		consumer.Status.SetCondition(meshv1alpha1.Condition{
			Type:   meshv1alpha1.ConditionTypeLabelsPublished,
			Status: meshv1alpha1.ConditionStatusTrue,
		})
		if err := b.client.Status().Update(ctx, consumer); err != nil {
			return errors.Wrapf(err, "publishing labels to consumer %s", consumer.Name)
		}
		if consumer.Spec.AutoJoinMesh == nil || !*consumer.Spec.AutoJoinMesh {
			continue
		}
		if consumer.Spec.CrossModel != nil {
			// the workload lives in another model; its own beacon labels it
			continue
		}
		err := mesh.ReconcileWorkloadLabels(ctx, b.client, consumer.Name, consumer.Namespace, labels)
		if err != nil {
			if apierrors.IsNotFound(errors.Cause(err)) {
				b.log.V(1).Info("consumer workload not found, skipping labels", "consumer", consumer.Name)
				continue
			}
			return err
		}
	}
	return nil
}
