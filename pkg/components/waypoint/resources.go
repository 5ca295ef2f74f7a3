package waypoint

import (
	"fmt"
	"sort"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/controller-runtime/pkg/client"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/mesh"
)

// Resources returns the desired waypoint object set for a beacon.  A beacon
// scaled to zero reconciles to an empty set: an autoscaler pinned at zero
// replicas would be rejected by the API server, and removal cleans up
// through the delete path anyway.
func Resources(beacon *meshv1alpha1.MeshBeacon) []client.Object {
	replicas := int32(1)
	if beacon.Spec.Replicas != nil {
		replicas = *beacon.Spec.Replicas
	}
	if replicas < 1 {
		return nil
	}
	return []client.Object{
		gateway(beacon),
		autoscaler(beacon, replicas),
		metricsProxyDeployment(beacon),
		metricsProxyService(beacon),
	}
}

func gateway(beacon *meshv1alpha1.MeshBeacon) *gatewayv1.Gateway {
	labels := map[string]string{WaypointForLabel: "service"}
	for key, value := range mesh.TelemetryLabels(beacon.Namespace, beacon.Name) {
		labels[key] = value
	}
	fromAll := gatewayv1.NamespacesFromAll
	return &gatewayv1.Gateway{
		TypeMeta: metav1.TypeMeta{
			APIVersion: gatewayv1.GroupVersion.String(),
			Kind:       "Gateway",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      Name(beacon),
			Namespace: beacon.Namespace,
			Labels:    labels,
		},
		Spec: gatewayv1.GatewaySpec{
			GatewayClassName: GatewayClassName,
			Listeners: []gatewayv1.Listener{
				{
					Name:     MeshListenerName,
					Port:     MeshListenerPort,
					Protocol: MeshListenerProtocol,
					AllowedRoutes: &gatewayv1.AllowedRoutes{
						Namespaces: &gatewayv1.RouteNamespaces{From: &fromAll},
					},
				},
			},
		},
	}
}

// autoscaler pins the waypoint deployment to the beacon's unit count.  The
// HPA must target the Deployment Istio derives from the Gateway, not the
// Gateway itself.
func autoscaler(beacon *meshv1alpha1.MeshBeacon, replicas int32) *autoscalingv2.HorizontalPodAutoscaler {
	minReplicas := replicas
	return &autoscalingv2.HorizontalPodAutoscaler{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "autoscaling/v2",
			Kind:       "HorizontalPodAutoscaler",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      Name(beacon),
			Namespace: beacon.Namespace,
		},
		Spec: autoscalingv2.HorizontalPodAutoscalerSpec{
			ScaleTargetRef: autoscalingv2.CrossVersionObjectReference{
				APIVersion: "apps/v1",
				Kind:       "Deployment",
				Name:       Name(beacon),
			},
			MinReplicas: &minReplicas,
			MaxReplicas: replicas,
		},
	}
}

func metricsProxyDeployment(beacon *meshv1alpha1.MeshBeacon) *appsv1.Deployment {
	name := MetricsProxyName(beacon)
	port := meshv1alpha1.DefaultMetricsProxyPort
	if beacon.Spec.MetricsProxy.Port != nil {
		port = *beacon.Spec.MetricsProxy.Port
	}
	selector := map[string]string{"app.kubernetes.io/name": name}
	one := int32(1)
	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "apps/v1",
			Kind:       "Deployment",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: beacon.Namespace,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &one,
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: selector},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  "metrics-proxy",
							Image: imageRef(beacon.Spec.MetricsProxy.ImageConfig),
							Args: []string{
								"--port", fmt.Sprint(port),
								"--labels", formatLabels(mesh.TelemetryLabels(beacon.Namespace, beacon.Name)),
							},
							ImagePullPolicy: corev1.PullPolicy(beacon.Spec.MetricsProxy.PullPolicy),
							Ports: []corev1.ContainerPort{
								{Name: "metrics", ContainerPort: port},
							},
						},
					},
				},
			},
		},
	}
}

func metricsProxyService(beacon *meshv1alpha1.MeshBeacon) *corev1.Service {
	name := MetricsProxyName(beacon)
	port := meshv1alpha1.DefaultMetricsProxyPort
	if beacon.Spec.MetricsProxy.Port != nil {
		port = *beacon.Spec.MetricsProxy.Port
	}
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Service",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: beacon.Namespace,
		},
		Spec: corev1.ServiceSpec{
			Selector: map[string]string{"app.kubernetes.io/name": name},
			Ports: []corev1.ServicePort{
				{
					Name:       "metrics",
					Port:       port,
					TargetPort: intstr.FromInt32(port),
				},
			},
		},
	}
}

func imageRef(image meshv1alpha1.ImageConfig) string {
	ref := image.Name
	if len(image.Registry) > 0 {
		ref = image.Registry + "/" + ref
	}
	if len(image.Tag) > 0 {
		ref = ref + ":" + image.Tag
	}
	return ref
}

func formatLabels(labels map[string]string) string {
	pairs := make([]string, 0, len(labels))
	for key, value := range labels {
		pairs = append(pairs, key+"="+value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
