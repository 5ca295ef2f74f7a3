package common

const (
	// ManagedByLabel marks every object applied by the operator.
	ManagedByLabel = "mesh.canonical.com/managed-by"
	// AppLabel records which beacon application an object belongs to.
	AppLabel = "mesh.canonical.com/app"
	// ModelLabel records which model (namespace) an object belongs to.
	ModelLabel = "mesh.canonical.com/model"
	// ScopeLabel partitions managed objects into independently pruned sets.
	ScopeLabel = "mesh.canonical.com/scope"

	// FieldOwner is the manager name used for server-side apply.
	FieldOwner = "istio-beacon-operator"
)

// ScopeLabels returns the labels identifying one managed object set of one
// beacon.  Pruning is restricted to objects carrying exactly these labels.
func ScopeLabels(appName, modelName, scope string) map[string]string {
	return map[string]string{
		ManagedByLabel: FieldOwner,
		AppLabel:       appName,
		ModelLabel:     modelName,
		ScopeLabel:     scope,
	}
}
