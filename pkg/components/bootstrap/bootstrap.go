package bootstrap

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	apiextensionsclient "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/rest"
)

// requiredCRDs are the definitions the beacon renders objects for.  They are
// installed by Istio and the Gateway API bundle, not by this operator, so
// startup blocks until they appear rather than racing the installs.
var requiredCRDs = []string{
	"gateways.gateway.networking.k8s.io",
	"authorizationpolicies.security.istio.io",
}

const (
	checkInterval = 5 * time.Second
	checkTimeout  = 2 * time.Minute
)

// WaitForCRDs blocks until every required CRD is established or the timeout
// elapses.
func WaitForCRDs(ctx context.Context, config *rest.Config, log logr.Logger) error {
	clientset, err := apiextensionsclient.NewForConfig(config)
	if err != nil {
		return errors.Wrap(err, "building apiextensions client")
	}
	for _, name := range requiredCRDs {
		log.Info("waiting for CRD", "crd", name)
		err := wait.PollUntilContextTimeout(ctx, checkInterval, checkTimeout, true,
			func(ctx context.Context) (bool, error) {
				_, err := clientset.ApiextensionsV1().CustomResourceDefinitions().Get(ctx, name, metav1.GetOptions{})
				if apierrors.IsNotFound(err) {
					return false, nil
				}
				if err != nil {
					return false, err
				}
				return true, nil
			})
		if err != nil {
			return errors.Wrapf(err, "CRD %s not available, is Istio installed with the Gateway API?", name)
		}
	}
	return nil
}
