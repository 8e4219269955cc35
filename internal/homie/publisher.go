package homie

import "strings"

// Transport is the publishing capability the domain model depends on.
// The MQTT client wrapper implements it; tests use a recording fake.
//
// Publish delivers a payload to an absolute topic. Implementations decide
// QoS and delivery semantics; the model only chooses the retained flag.
type Transport interface {
	Publish(topic string, payload string, retained bool) error
}

// SetSubscriber is the inbound-delivery capability used to route "set"
// commands back to properties. Implemented by the MQTT client wrapper.
type SetSubscriber interface {
	Subscribe(topic string, handler func(payload string)) error
}

// Publisher holds the topic-segment path for one entity in the device tree
// and publishes messages at that topic or a named sub-path.
//
// The path is kept as an explicit ordered segment list and joined only at
// publish time, so topic construction is a pure function of the entity's
// position in the tree.
type Publisher struct {
	transport Transport
	segments  []string
}

// NewPublisher creates a root publisher over the given transport.
// Segment content is the caller's responsibility (must not contain "/").
func NewPublisher(t Transport, segments ...string) *Publisher {
	segs := make([]string, len(segments))
	copy(segs, segments)
	return &Publisher{transport: t, segments: segs}
}

// Child derives a publisher scoped one segment deeper.
func (p *Publisher) Child(segment string) *Publisher {
	segs := make([]string, len(p.segments), len(p.segments)+1)
	copy(segs, p.segments)
	return &Publisher{transport: p.transport, segments: append(segs, segment)}
}

// Topic returns the ordered path segments from root to this entity.
// The returned slice is a copy; callers may modify it freely.
func (p *Publisher) Topic() []string {
	segs := make([]string, len(p.segments))
	copy(segs, p.segments)
	return segs
}

// TopicString returns the full topic with segments joined by "/".
func (p *Publisher) TopicString() string {
	return strings.Join(p.segments, "/")
}

// Publish sends a payload to this entity's topic. If suffix is non-empty
// the message goes to "<topic>/<suffix>" instead.
func (p *Publisher) Publish(suffix, payload string, retained bool) error {
	topic := p.TopicString()
	if suffix != "" {
		topic += "/" + suffix
	}
	return p.transport.Publish(topic, payload, retained)
}

// Transport returns the underlying transport, shared by all publishers
// derived from the same root.
func (p *Publisher) Transport() Transport {
	return p.transport
}
