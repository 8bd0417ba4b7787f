package mqtt

import "strings"

// Topic prefixes for looking glass events.
const (
	// TopicPrefix is the base for every topic this gateway publishes.
	TopicPrefix = "lookingglass"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"

	// TopicPrefixExecution is the base for execution events.
	TopicPrefixExecution = TopicPrefix + "/execution"
)

// Topics provides builders for looking glass MQTT topics.
//
//	topic := mqtt.Topics{}.Execution("edge-router-1")
//	// Returns: "lookingglass/execution/edge-router-1"
type Topics struct{}

// SystemStatus returns the retained topic carrying online/offline status.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// Execution returns the topic for execution events of one device.
// Characters that have meaning in MQTT topic filters are replaced.
func (Topics) Execution(device string) string {
	return TopicPrefixExecution + "/" + topicSegment(device)
}

// AllExecutions returns a subscription filter matching every device's
// execution events.
func (Topics) AllExecutions() string {
	return TopicPrefixExecution + "/+"
}

var segmentReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_")

// topicSegment makes s usable as a single topic level.
func topicSegment(s string) string {
	if s == "" {
		return "_"
	}
	return segmentReplacer.Replace(s)
}
