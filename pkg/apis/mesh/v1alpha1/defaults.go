package v1alpha1

const (
	// DefaultReadyTimeoutSeconds bounds the waypoint readiness wait.
	DefaultReadyTimeoutSeconds int32 = 100
	// DefaultMetricsProxyPort is the port the metrics proxy listens on.
	DefaultMetricsProxyPort int32 = 15090
	// DefaultMetricsProxyImage is the sidecar image name.
	DefaultMetricsProxyImage = "metrics-proxy"
)

func SetDefaults_MeshBeacon(mb *MeshBeacon) {
	SetDefaults_MeshBeaconSpec(&mb.Spec)
}

func SetDefaults_MeshBeaconSpec(spec *MeshBeaconSpec) {
	if spec.ManageAuthorizationPolicies == nil {
		boolval := true
		spec.ManageAuthorizationPolicies = &boolval
	}
	if spec.ModelOnMesh == nil {
		boolval := false
		spec.ModelOnMesh = &boolval
	}
	if spec.ReadyTimeoutSeconds == nil {
		intval := DefaultReadyTimeoutSeconds
		spec.ReadyTimeoutSeconds = &intval
	}
	if spec.Replicas == nil {
		var intval int32 = 1
		spec.Replicas = &intval
	}
	SetDefaults_MetricsProxyConfig(&spec.MetricsProxy)
}

func SetDefaults_MetricsProxyConfig(mpc *MetricsProxyConfig) {
	if len(mpc.Name) == 0 {
		mpc.Name = DefaultMetricsProxyImage
	}
	if len(mpc.PullPolicy) == 0 {
		mpc.PullPolicy = "IfNotPresent"
	}
	if mpc.Port == nil {
		intval := DefaultMetricsProxyPort
		mpc.Port = &intval
	}
}

func SetDefaults_MeshConsumer(mc *MeshConsumer) {
	if mc.Spec.AutoJoinMesh == nil {
		boolval := true
		mc.Spec.AutoJoinMesh = &boolval
	}
	for i := range mc.Spec.Policies {
		if len(mc.Spec.Policies[i].TargetType) == 0 {
			mc.Spec.Policies[i].TargetType = PolicyTargetTypeApp
		}
	}
}
