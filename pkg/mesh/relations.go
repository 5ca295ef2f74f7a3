package mesh

// EndpointRole distinguishes the direction of a relation endpoint.
type EndpointRole string

const (
	RoleProvides EndpointRole = "provides"
	RoleRequires EndpointRole = "requires"
	RolePeer     EndpointRole = "peer"
)

// Endpoint declares one relation endpoint of the beacon.
type Endpoint struct {
	Name      string
	Interface string
	Role      EndpointRole
	// Limit caps how many relations may attach; zero means unlimited.
	Limit int
}

const (
	// ServiceMeshEndpoint is where consumers attach to join the mesh.
	ServiceMeshEndpoint = "service-mesh"
	// MetricsEndpoint exposes the waypoint metrics for scraping.
	MetricsEndpoint = "metrics-endpoint"
	// TracingEndpoint receives the OTLP endpoint the beacon traces to.
	TracingEndpoint = "charm-tracing"
	// ProvideCMREndpoint accepts identity data from cross-model peers.
	ProvideCMREndpoint = "provide-cmr-mesh"
	// RequireCMREndpoint sends identity data to cross-model peers.
	RequireCMREndpoint = "require-cmr-mesh"
	// PeersEndpoint coordinates beacon units of one application.
	PeersEndpoint = "peers"
)

// Endpoints is the full relation surface of the beacon.
var Endpoints = []Endpoint{
	{Name: ServiceMeshEndpoint, Interface: "service_mesh", Role: RoleProvides},
	{Name: MetricsEndpoint, Interface: "prometheus_scrape", Role: RoleProvides},
	{Name: ProvideCMREndpoint, Interface: "cross_model_mesh", Role: RoleProvides},
	{Name: TracingEndpoint, Interface: "tracing", Role: RoleRequires, Limit: 1},
	{Name: RequireCMREndpoint, Interface: "cross_model_mesh", Role: RoleRequires},
	{Name: PeersEndpoint, Interface: "istio_beacon_peers", Role: RolePeer},
}

// CoreEndpoints returns the three endpoints that make up the beacon's
// mesh-facing contract: mesh membership, metrics scraping and tracing.
func CoreEndpoints() []Endpoint {
	core := make([]Endpoint, 0, 3)
	for _, ep := range Endpoints {
		switch ep.Name {
		case ServiceMeshEndpoint, MetricsEndpoint, TracingEndpoint:
			core = append(core, ep)
		}
	}
	return core
}
