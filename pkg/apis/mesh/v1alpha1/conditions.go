package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ConditionType identifies one aspect of a resource's state.
type ConditionType string

const (
	// ConditionTypeReconciled reports whether the last reconcile pass of the
	// object's configuration succeeded.
	ConditionTypeReconciled ConditionType = "Reconciled"
	// ConditionTypeReady reports whether the waypoint is serving traffic.
	ConditionTypeReady ConditionType = "Ready"
	// ConditionTypeLabelsPublished reports whether a consumer has received
	// its mesh labels.
	ConditionTypeLabelsPublished ConditionType = "LabelsPublished"
)

// ConditionStatus is the truth value of a condition.
type ConditionStatus string

const (
	ConditionStatusTrue    ConditionStatus = "True"
	ConditionStatusFalse   ConditionStatus = "False"
	ConditionStatusUnknown ConditionStatus = "Unknown"
)

// ConditionReason is a machine-readable explanation for a condition.
type ConditionReason string

const (
	// ConditionReasonReconcileSuccessful indicates the desired object set was
	// applied in full.
	ConditionReasonReconcileSuccessful ConditionReason = "ReconcileSuccessful"
	// ConditionReasonReconcileError indicates applying the desired object set
	// failed.
	ConditionReasonReconcileError ConditionReason = "ReconcileError"
	// ConditionReasonInvalidConfig indicates the declared configuration did
	// not validate.
	ConditionReasonInvalidConfig ConditionReason = "InvalidConfig"
	// ConditionReasonWaypointPending indicates the waypoint deployment is not
	// ready yet.
	ConditionReasonWaypointPending ConditionReason = "WaypointPending"
	// ConditionReasonWaypointReady indicates the waypoint deployment is ready.
	ConditionReasonWaypointReady ConditionReason = "WaypointReady"
	// ConditionReasonWaypointTimeout indicates the waypoint deployment did
	// not become ready within the configured bound.
	ConditionReasonWaypointTimeout ConditionReason = "WaypointTimeout"
)

// Condition records one aspect of the observed state of a resource.
type Condition struct {
	Type               ConditionType   `json:"type"`
	Status             ConditionStatus `json:"status"`
	Reason             ConditionReason `json:"reason,omitempty"`
	Message            string          `json:"message,omitempty"`
	LastTransitionTime metav1.Time     `json:"lastTransitionTime,omitempty"`
}

// Matches returns true if the condition has the given status.
func (c *Condition) Matches(status ConditionStatus) bool {
	return c != nil && c.Status == status
}

// GetCondition returns the condition of the given type, or nil.
func (s *MeshBeaconStatus) GetCondition(t ConditionType) *Condition {
	return getCondition(s.Conditions, t)
}

// SetCondition updates or appends the condition, bumping the transition time
// only when the status actually changes.
func (s *MeshBeaconStatus) SetCondition(condition Condition) {
	s.Conditions = setCondition(s.Conditions, condition)
}

// RemoveCondition drops the condition of the given type, if present.
func (s *MeshBeaconStatus) RemoveCondition(t ConditionType) {
	s.Conditions = removeCondition(s.Conditions, t)
}

// GetCondition returns the condition of the given type, or nil.
func (s *MeshConsumerStatus) GetCondition(t ConditionType) *Condition {
	return getCondition(s.Conditions, t)
}

// SetCondition updates or appends the condition.
func (s *MeshConsumerStatus) SetCondition(condition Condition) {
	s.Conditions = setCondition(s.Conditions, condition)
}

func getCondition(conditions []Condition, t ConditionType) *Condition {
	for i := range conditions {
		if conditions[i].Type == t {
			return &conditions[i]
		}
	}
	return nil
}

func setCondition(conditions []Condition, condition Condition) []Condition {
	now := metav1.Now()
	for i := range conditions {
		if conditions[i].Type != condition.Type {
			continue
		}
		if conditions[i].Status != condition.Status {
			condition.LastTransitionTime = now
		} else {
			condition.LastTransitionTime = conditions[i].LastTransitionTime
		}
		conditions[i] = condition
		return conditions
	}
	condition.LastTransitionTime = now
	return append(conditions, condition)
}

func removeCondition(conditions []Condition, t ConditionType) []Condition {
	for i := range conditions {
		if conditions[i].Type == t {
			return append(conditions[:i], conditions[i+1:]...)
		}
	}
	return conditions
}
