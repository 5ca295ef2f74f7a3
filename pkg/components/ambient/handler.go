package ambient

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/mesh"
)

const (
	// DataplaneModeLabel opts a namespace into ambient redirection.
	DataplaneModeLabel = "istio.io/dataplane-mode"
	// UseWaypointLabel routes the namespace's traffic through a waypoint.
	UseWaypointLabel = "istio.io/use-waypoint"
	// ManagedByLabel records which beacon owns the namespace's mesh labels,
	// so two beacons (or a beacon and a human) cannot fight over them.
	ManagedByLabel = "charms.canonical.com/istio.io.waypoint.managed-by"
)

// Sync puts the beacon's namespace on or off the mesh according to
// modelOnMesh.  Namespaces whose Istio labels are managed by another entity
// are left alone.
func Sync(ctx context.Context, c client.Client, log logr.Logger, beacon *meshv1alpha1.MeshBeacon, waypointName string) error {
	if beacon.Spec.ModelOnMesh != nil && *beacon.Spec.ModelOnMesh {
		return addLabels(ctx, c, log, beacon, waypointName)
	}
	return removeLabels(ctx, c, log, beacon)
}

// Remove takes the namespace off the mesh regardless of configuration, used
// when the beacon itself is removed.
func Remove(ctx context.Context, c client.Client, log logr.Logger, beacon *meshv1alpha1.MeshBeacon) error {
	return removeLabels(ctx, c, log, beacon)
}

func addLabels(ctx context.Context, c client.Client, log logr.Logger, beacon *meshv1alpha1.MeshBeacon, waypointName string) error {
	namespace := &corev1.Namespace{}
	if err := c.Get(ctx, client.ObjectKey{Name: beacon.Namespace}, namespace); err != nil {
		return errors.Wrapf(err, "getting namespace %s", beacon.Namespace)
	}
	identity := beaconIdentity(beacon)
	labels := namespace.Labels
	if labels == nil {
		labels = map[string]string{}
	}
	occupied := len(labels[UseWaypointLabel]) > 0 || len(labels[DataplaneModeLabel]) > 0
	if occupied && labels[ManagedByLabel] != identity {
		log.Error(nil, "namespace already carries Istio labels managed by another entity; not adding labels",
			"namespace", beacon.Namespace)
		return nil
	}
	labels[UseWaypointLabel] = waypointName
	labels[DataplaneModeLabel] = "ambient"
	labels[ManagedByLabel] = identity
	namespace.Labels = labels
	if err := c.Update(ctx, namespace); err != nil {
		return errors.Wrapf(err, "labelling namespace %s", beacon.Namespace)
	}
	return nil
}

func removeLabels(ctx context.Context, c client.Client, log logr.Logger, beacon *meshv1alpha1.MeshBeacon) error {
	namespace := &corev1.Namespace{}
	if err := c.Get(ctx, client.ObjectKey{Name: beacon.Namespace}, namespace); err != nil {
		return errors.Wrapf(err, "getting namespace %s", beacon.Namespace)
	}
	if namespace.Labels == nil {
		return nil
	}
	if _, ok := namespace.Labels[ManagedByLabel]; !ok {
		return nil
	}
	if namespace.Labels[ManagedByLabel] != beaconIdentity(beacon) {
		log.Info("namespace Istio labels are managed by another entity; not removing labels",
			"namespace", beacon.Namespace)
		return nil
	}
	delete(namespace.Labels, UseWaypointLabel)
	delete(namespace.Labels, DataplaneModeLabel)
	delete(namespace.Labels, ManagedByLabel)
	if err := c.Update(ctx, namespace); err != nil {
		return errors.Wrapf(err, "removing labels from namespace %s", beacon.Namespace)
	}
	return nil
}

func beaconIdentity(beacon *meshv1alpha1.MeshBeacon) string {
	return mesh.KubernetesLabel(beacon.Namespace, beacon.Name, "")
}
