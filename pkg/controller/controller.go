package controller

import (
	"sigs.k8s.io/controller-runtime/pkg/manager"

	"github.com/canonical/istio-beacon-k8s-operator/pkg/controller/beacon"
)

// AddToManager adds every controller of the operator to the manager.
func AddToManager(mgr manager.Manager, opts beacon.Options) error {
	return beacon.Add(mgr, opts)
}
