package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// MeshBeacon represents the configuration and state of a single mesh beacon:
// the unit responsible for joining the applications of one namespace (one
// Juju model) to an Istio ambient mesh.
type MeshBeacon struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Spec   MeshBeaconSpec   `json:"spec"`
	Status MeshBeaconStatus `json:"status,omitempty"`
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// MeshBeaconList is a list of MeshBeacon resources.
type MeshBeaconList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`

	Items []MeshBeacon `json:"items"`
}

// MeshBeaconSpec is the declared configuration of a beacon.
type MeshBeaconSpec struct {
	// ManageAuthorizationPolicies controls whether the beacon renders
	// AuthorizationPolicy objects for the mesh policies it collects.  When
	// disabled, previously managed policies are pruned rather than abandoned.
	ManageAuthorizationPolicies *bool `json:"manageAuthorizationPolicies,omitempty"` // true
	// ModelOnMesh subscribes the beacon's whole namespace to the mesh by
	// labelling it for ambient redirection through the waypoint.
	ModelOnMesh *bool `json:"modelOnMesh,omitempty"` // false
	// ReadyTimeoutSeconds bounds the wait for the waypoint deployment to
	// become ready before the beacon reports failure.
	ReadyTimeoutSeconds *int32 `json:"readyTimeoutSeconds,omitempty"` // 100
	// Replicas is the unit count; the waypoint autoscaler is pinned to it.
	Replicas *int32 `json:"replicas,omitempty"` // 1
	// MetricsProxy configures the sidecar that re-broadcasts waypoint metrics.
	MetricsProxy MetricsProxyConfig `json:"metricsProxy,omitempty"`
	// TracingEndpoint is an optional OTLP gRPC endpoint for reconcile traces.
	TracingEndpoint string `json:"tracingEndpoint,omitempty"`
}

// ImageConfig identifies the details of an image to use.
type ImageConfig struct {
	// Name of the image
	Name string `json:"name,omitempty"`
	// Tag of the image
	Tag string `json:"tag,omitempty"`
	// Registry housing the image
	Registry string `json:"registry,omitempty"`
	// PullPolicy for the image
	PullPolicy string `json:"pullPolicy,omitempty"`
}

// MetricsProxyConfig configures the metrics broadcast proxy deployed next to
// the waypoint.
type MetricsProxyConfig struct {
	ImageConfig `json:",inline"` // metrics-proxy
	// Port the proxy listens on for scrapes.
	Port *int32 `json:"port,omitempty"` // 15090
}

// BeaconPhase is a coarse summary of where the beacon is in its lifecycle.
type BeaconPhase string

const (
	// BeaconPhasePending indicates the waypoint is not yet ready.
	BeaconPhasePending BeaconPhase = "Pending"
	// BeaconPhaseReady indicates the waypoint is serving and policies are in place.
	BeaconPhaseReady BeaconPhase = "Ready"
	// BeaconPhaseFailedTimeout indicates the waypoint never became ready
	// within the configured bound.
	BeaconPhaseFailedTimeout BeaconPhase = "FailedTimeout"
)

// MeshBeaconStatus is the observed state of a beacon.
type MeshBeaconStatus struct {
	ObservedGeneration int64       `json:"observedGeneration,omitempty"`
	Phase              BeaconPhase `json:"phase,omitempty"`
	Conditions         []Condition `json:"conditions,omitempty"`
	// WaypointName is the name of the waypoint Gateway and its Deployment.
	WaypointName string `json:"waypointName,omitempty"`
	// MeshLabels are the labels a workload must carry to route through this
	// beacon's waypoint.  Consumers copy these onto their pod templates.
	MeshLabels map[string]string `json:"meshLabels,omitempty"`
	// ManagedPolicies is the number of AuthorizationPolicy objects currently
	// reconciled by this beacon.
	ManagedPolicies int32 `json:"managedPolicies,omitempty"`
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// MeshConsumer represents an application asking a beacon for mesh membership
// and traffic policies on its behalf.
type MeshConsumer struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Spec   MeshConsumerSpec   `json:"spec"`
	Status MeshConsumerStatus `json:"status,omitempty"`
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// MeshConsumerList is a list of MeshConsumer resources.
type MeshConsumerList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`

	Items []MeshConsumer `json:"items"`
}

// MeshConsumerSpec is the data a consumer publishes to its beacon.
type MeshConsumerSpec struct {
	// BeaconRef names the MeshBeacon this consumer is attached to.
	BeaconRef string `json:"beaconRef"`
	// Policies are the traffic policies the consumer wants enforced, with
	// source and target identities already resolved by the consumer.
	Policies []MeshPolicy `json:"policies,omitempty"`
	// CrossModel carries the remote identity for consumers living in another
	// model.  When set, it overrides the source identity of every policy.
	CrossModel *CrossModelData `json:"crossModel,omitempty"`
	// AutoJoinMesh asks the beacon to patch the consumer's workload with the
	// mesh labels.  Consumers that manage their own pods disable this.
	AutoJoinMesh *bool `json:"autoJoinMesh,omitempty"` // true
	// ScrapesMetrics marks consumers that scrape the beacon's metrics
	// endpoint; the beacon opens its metrics port to them.
	ScrapesMetrics bool `json:"scrapesMetrics,omitempty"`
}

// CrossModelData identifies an application on the far side of a cross-model
// relation.
type CrossModelData struct {
	AppName   string `json:"appName"`
	ModelName string `json:"modelName"`
}

// MeshConsumerStatus is the data a beacon publishes back to a consumer.
type MeshConsumerStatus struct {
	// Labels the consumer's pods must carry to be routed through the mesh.
	Labels     map[string]string `json:"labels,omitempty"`
	Conditions []Condition       `json:"conditions,omitempty"`
}

// PolicyTargetType selects how a policy binds to its target.
type PolicyTargetType string

const (
	// PolicyTargetTypeUnit binds a policy to workload pods (L4 only).
	PolicyTargetTypeUnit PolicyTargetType = "unit"
	// PolicyTargetTypeApp binds a policy to the application service (L4/L7).
	PolicyTargetTypeApp PolicyTargetType = "app"
)

// Method is an HTTP method usable in an L7 policy endpoint.
type Method string

const (
	MethodConnect Method = "CONNECT"
	MethodDelete  Method = "DELETE"
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodPatch   Method = "PATCH"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodTrace   Method = "TRACE"
)

// PolicyEndpoint describes one reachable surface of a policy target.
type PolicyEndpoint struct {
	Hosts   []string `json:"hosts,omitempty"`
	Ports   []int32  `json:"ports,omitempty"`
	Methods []Method `json:"methods,omitempty"`
	Paths   []string `json:"paths,omitempty"`
}

// MeshPolicy is a fully resolved traffic policy: which source application may
// reach which endpoints of which target application.
type MeshPolicy struct {
	SourceApp       string           `json:"sourceApp"`
	SourceNamespace string           `json:"sourceNamespace"`
	TargetApp       string           `json:"targetApp"`
	TargetNamespace string           `json:"targetNamespace"`
	// TargetService overrides the service name for app-scoped policies.
	TargetService string           `json:"targetService,omitempty"`
	TargetType    PolicyTargetType `json:"targetType,omitempty"` // app
	Endpoints     []PolicyEndpoint `json:"endpoints,omitempty"`
}
