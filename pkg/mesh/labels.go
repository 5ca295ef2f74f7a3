package mesh

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

const labelsKey = "labels"

// ReconcileWorkloadLabels applies the given mesh labels to an application's
// StatefulSet pod template and records them in a tracking ConfigMap.  Labels
// recorded from a previous pass but absent from the new set are unset, so a
// shrinking mesh contract does not leave stale routing labels behind.
// Passing an empty set takes the workload off the mesh.
func ReconcileWorkloadLabels(ctx context.Context, c client.Client, appName, namespace string, labels map[string]string) error {
	statefulSet := &appsv1.StatefulSet{}
	if err := c.Get(ctx, client.ObjectKey{Name: appName, Namespace: namespace}, statefulSet); err != nil {
		return errors.Wrapf(err, "getting workload for %s/%s", namespace, appName)
	}

	configMap := &corev1.ConfigMap{}
	configMapName := LabelConfigMapName(appName)
	err := c.Get(ctx, client.ObjectKey{Name: configMapName, Namespace: namespace}, configMap)
	if apierrors.IsNotFound(err) {
		configMap = emptyLabelConfigMap(configMapName, namespace)
		if err := c.Create(ctx, configMap); err != nil {
			return errors.Wrap(err, "creating label tracking ConfigMap")
		}
	} else if err != nil {
		return errors.Wrap(err, "getting label tracking ConfigMap")
	}

	previous := map[string]string{}
	if raw, ok := configMap.Data[labelsKey]; ok && len(raw) > 0 {
		if err := json.Unmarshal([]byte(raw), &previous); err != nil {
			return errors.Wrap(err, "decoding tracked labels")
		}
	}

	// nil values in a strategic merge patch delete the key
	patchLabels := map[string]interface{}{}
	for key, value := range labels {
		patchLabels[key] = value
	}
	for key := range previous {
		if _, ok := labels[key]; !ok {
			patchLabels[key] = nil
		}
	}

	patch, err := json.Marshal(map[string]interface{}{
		"spec": map[string]interface{}{
			"template": map[string]interface{}{
				"metadata": map[string]interface{}{
					"labels": patchLabels,
				},
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "encoding workload label patch")
	}
	if err := c.Patch(ctx, statefulSet, client.RawPatch(types.StrategicMergePatchType, patch)); err != nil {
		return errors.Wrapf(err, "patching workload labels for %s/%s", namespace, appName)
	}

	tracked, err := json.Marshal(labels)
	if err != nil {
		return errors.Wrap(err, "encoding tracked labels")
	}
	configMap.Data = map[string]string{labelsKey: string(tracked)}
	if err := c.Update(ctx, configMap); err != nil {
		return errors.Wrap(err, "updating label tracking ConfigMap")
	}
	return nil
}

// RemoveWorkloadLabels unsets any tracked mesh labels and deletes the
// tracking ConfigMap.
func RemoveWorkloadLabels(ctx context.Context, c client.Client, appName, namespace string) error {
	if err := ReconcileWorkloadLabels(ctx, c, appName, namespace, map[string]string{}); err != nil {
		return err
	}
	configMap := emptyLabelConfigMap(LabelConfigMapName(appName), namespace)
	if err := c.Delete(ctx, configMap); err != nil && !apierrors.IsNotFound(err) {
		return errors.Wrap(err, "deleting label tracking ConfigMap")
	}
	return nil
}

func emptyLabelConfigMap(name, namespace string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Data:       map[string]string{labelsKey: "{}"},
	}
}
