package beacon

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
)

var log = logf.Log.WithName("controller_beacon")

// Options carries tuning shared by every beacon reconcile.
type Options struct {
	// ReadyCheckInterval is the waypoint readiness poll cadence.
	ReadyCheckInterval time.Duration
	// Tracer receives reconcile spans; nil disables tracing.
	Tracer trace.Tracer
}

// Add creates a new MeshBeacon controller and adds it to the manager.
func Add(mgr manager.Manager, opts Options) error {
	return add(mgr, newReconciler(mgr, opts))
}

func newReconciler(mgr manager.Manager, opts Options) *ReconcileMeshBeacon {
	interval := opts.ReadyCheckInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("beacon")
	}
	return &ReconcileMeshBeacon{
		client:             mgr.GetClient(),
		scheme:             mgr.GetScheme(),
		tracer:             tracer,
		readyCheckInterval: interval,
	}
}

func add(mgr manager.Manager, r *ReconcileMeshBeacon) error {
	return ctrl.NewControllerManagedBy(mgr).
		Named("beacon-controller").
		For(&meshv1alpha1.MeshBeacon{}).
		Watches(&meshv1alpha1.MeshConsumer{}, handler.EnqueueRequestsFromMapFunc(mapConsumerToBeacon)).
		Complete(r)
}

// mapConsumerToBeacon requeues the beacon a consumer is attached to, so
// consumer policy changes re-drive the beacon's reconcile.
func mapConsumerToBeacon(_ context.Context, obj client.Object) []reconcile.Request {
	consumer, ok := obj.(*meshv1alpha1.MeshConsumer)
	if !ok || len(consumer.Spec.BeaconRef) == 0 {
		return nil
	}
	return []reconcile.Request{
		{
			NamespacedName: client.ObjectKey{
				Namespace: consumer.Namespace,
				Name:      consumer.Spec.BeaconRef,
			},
		},
	}
}
