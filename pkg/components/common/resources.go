package common

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// ResourceManager reconciles one label-scoped set of Kubernetes objects: the
// desired objects are applied with server-side apply, and any object of a
// managed type that carries the scope labels but is no longer desired is
// deleted.  This keeps flipping a config flag (or emptying the desired set)
// equivalent to cleaning up.
type ResourceManager struct {
	Client    client.Client
	Log       logr.Logger
	Namespace string
	// Labels identify this manager's object set; they are stamped onto every
	// applied object and select the candidates for pruning.
	Labels map[string]string
	// Types are the object kinds this manager owns, used to enumerate
	// prune candidates.
	Types []schema.GroupVersionKind
}

// Reconcile applies the desired objects and prunes the rest of the set.
func (rm *ResourceManager) Reconcile(ctx context.Context, desired []client.Object) error {
	keep := map[string]struct{}{}
	allErrors := []error{}

	for _, obj := range desired {
		rm.stampLabels(obj)
		keep[objectKey(obj.GetObjectKind().GroupVersionKind(), obj.GetNamespace(), obj.GetName())] = struct{}{}
		err := rm.Client.Patch(ctx, obj, client.Apply, client.ForceOwnership, client.FieldOwner(FieldOwner))
		if err != nil {
			allErrors = append(allErrors, errors.Wrapf(err, "applying %s %s/%s",
				obj.GetObjectKind().GroupVersionKind().Kind, obj.GetNamespace(), obj.GetName()))
			continue
		}
		rm.Log.V(1).Info("applied resource",
			"kind", obj.GetObjectKind().GroupVersionKind().Kind,
			"name", obj.GetName())
	}

	if err := rm.prune(ctx, keep); err != nil {
		allErrors = append(allErrors, err)
	}
	return utilerrors.NewAggregate(allErrors)
}

// Delete removes every object in the managed set.
func (rm *ResourceManager) Delete(ctx context.Context) error {
	return rm.prune(ctx, map[string]struct{}{})
}

func (rm *ResourceManager) prune(ctx context.Context, keep map[string]struct{}) error {
	allErrors := []error{}
	for _, gvk := range rm.Types {
		list := &unstructured.UnstructuredList{}
		list.SetGroupVersionKind(gvk.GroupVersion().WithKind(gvk.Kind + "List"))
		err := rm.Client.List(ctx, list,
			client.InNamespace(rm.Namespace),
			client.MatchingLabels(rm.Labels))
		if err != nil {
			allErrors = append(allErrors, errors.Wrapf(err, "listing %s for pruning", gvk.Kind))
			continue
		}
		for i := range list.Items {
			item := &list.Items[i]
			if _, ok := keep[objectKey(gvk, item.GetNamespace(), item.GetName())]; ok {
				continue
			}
			rm.Log.Info("pruning resource", "kind", gvk.Kind, "name", item.GetName())
			if err := rm.Client.Delete(ctx, item); err != nil && !apierrors.IsNotFound(err) {
				allErrors = append(allErrors, errors.Wrapf(err, "deleting %s %s", gvk.Kind, item.GetName()))
			}
		}
	}
	return utilerrors.NewAggregate(allErrors)
}

func (rm *ResourceManager) stampLabels(obj client.Object) {
	labels := obj.GetLabels()
	if labels == nil {
		labels = map[string]string{}
	}
	for key, value := range rm.Labels {
		labels[key] = value
	}
	obj.SetLabels(labels)
}

func objectKey(gvk schema.GroupVersionKind, namespace, name string) string {
	return fmt.Sprintf("%s/%s/%s/%s", gvk.GroupVersion(), gvk.Kind, namespace, name)
}
