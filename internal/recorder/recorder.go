package recorder

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/homiecast/core/internal/history"
	"github.com/homiecast/core/internal/homie"
	"github.com/homiecast/core/internal/infrastructure/logging"
)

// recordTimeout bounds each history insert so a stuck database cannot
// stall the publish path indefinitely.
const recordTimeout = 5 * time.Second

// MetricWriter writes numeric property values to a time-series store.
// *influxdb.Client satisfies this interface.
type MetricWriter interface {
	WritePropertyMetric(deviceID, nodeID, propertyID string, value float64)
}

// Recorder decorates a homie.Transport with value recording.
//
// All publishes are forwarded to the wrapped transport. Publishes on
// property value topics are mirrored into the history repository and,
// for numeric payloads, the metric writer. The publish result only
// reflects the transport outcome; recording is best effort.
type Recorder struct {
	next     homie.Transport
	repo     history.Repository
	metrics  MetricWriter
	logger   *logging.Logger
	deviceID string

	// prefix is "<baseTopic>/<deviceID>/" and identifies this device's
	// subtree within the broker's topic space.
	prefix string
}

// New creates a Recorder wrapping the given transport.
//
// Parameters:
//   - next: Transport that performs the actual publish
//   - baseTopic: Homie base topic (e.g., "homie")
//   - deviceID: Device identifier under the base topic
//   - repo: Value history repository (required)
//   - metrics: Time-series writer, or nil to skip metric mirroring
//   - logger: Logger for recording failures
//
// Returns:
//   - *Recorder: Transport decorator ready for use
func New(next homie.Transport, baseTopic, deviceID string, repo history.Repository, metrics MetricWriter, logger *logging.Logger) *Recorder {
	return &Recorder{
		next:     next,
		repo:     repo,
		metrics:  metrics,
		logger:   logger.With("component", "recorder"),
		deviceID: deviceID,
		prefix:   baseTopic + "/" + deviceID + "/",
	}
}

// Publish forwards the message to the wrapped transport and records it
// when the topic is a property value topic.
func (r *Recorder) Publish(topic string, payload string, retained bool) error {
	err := r.next.Publish(topic, payload, retained)
	if err != nil {
		return err
	}

	nodeID, propertyID, ok := r.splitValueTopic(topic)
	if !ok {
		return nil
	}

	r.record(nodeID, propertyID, payload)
	return nil
}

// splitValueTopic extracts node and property ids from a value topic.
//
// A value topic has exactly the shape <base>/<device>/<node>/<property>
// with no $-prefixed segments and no trailing /set.
func (r *Recorder) splitValueTopic(topic string) (nodeID, propertyID string, ok bool) {
	rest, found := strings.CutPrefix(topic, r.prefix)
	if !found {
		return "", "", false
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	for _, p := range parts {
		if p == "" || strings.HasPrefix(p, "$") {
			return "", "", false
		}
	}
	if parts[1] == "set" {
		return "", "", false
	}

	return parts[0], parts[1], true
}

// record mirrors a published value into history and the metric store.
func (r *Recorder) record(nodeID, propertyID, payload string) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.repo.Record(ctx, r.deviceID, nodeID, propertyID, payload); err != nil {
		r.logger.Warn("recording value failed",
			"node", nodeID,
			"property", propertyID,
			"error", err,
		)
	}

	if r.metrics == nil {
		return
	}
	if v, err := strconv.ParseFloat(payload, 64); err == nil {
		r.metrics.WritePropertyMetric(r.deviceID, nodeID, propertyID, v)
	}
}
