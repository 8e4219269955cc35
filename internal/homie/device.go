package homie

import (
	"fmt"
	"strings"
)

// State is a Homie device lifecycle state, published as $state.
type State string

// Device lifecycle states per the Homie 4.0 convention. StateLost is
// published by the broker via the transport's Last Will, never by the
// device itself.
const (
	StateInit         State = "init"
	StateReady        State = "ready"
	StateDisconnected State = "disconnected"
	StateSleeping     State = "sleeping"
	StateLost         State = "lost"
	StateAlert        State = "alert"
)

// Protocol and implementation attributes published with device config.
const (
	protocolVersion = "4.0.1"
	implementation  = "homiecast"
)

// DefaultBaseTopic is the root topic segment the convention prescribes.
const DefaultBaseTopic = "homie"

// Device is the root of a Homie topic tree. Its id forms the root topic
// segment for all descendants (under the base topic).
//
// Nodes are added during a build phase; PublishConfig broadcasts the full
// tree and transitions $state init → ready. Disconnect publishes
// $state=disconnected and must be called before the transport is torn
// down.
type Device struct {
	id    string
	name  string
	pub   *Publisher
	state State

	order []*Node
	byID  map[string]*Node
}

// NewDevice creates a device publishing under "<baseTopic>/<id>". An empty
// baseTopic selects DefaultBaseTopic. The id is validated and lowercased
// per the convention.
func NewDevice(t Transport, baseTopic, id, name string) (*Device, error) {
	if baseTopic == "" {
		baseTopic = DefaultBaseTopic
	}
	id, err := ValidateID(id)
	if err != nil {
		return nil, err
	}

	return &Device{
		id:    id,
		name:  name,
		pub:   NewPublisher(t, baseTopic, id),
		state: StateInit,
		byID:  make(map[string]*Node),
	}, nil
}

// ID returns the device id.
func (d *Device) ID() string { return d.id }

// Name returns the device display name.
func (d *Device) Name() string { return d.name }

// State returns the last published lifecycle state.
func (d *Device) State() State { return d.state }

// Topic returns the ordered path segments of the device root.
func (d *Device) Topic() []string { return d.pub.Topic() }

// StateTopic returns the full $state topic, used by the transport layer
// to configure its Last Will.
func (d *Device) StateTopic() string { return d.pub.TopicString() + "/$state" }

// Nodes returns the device's nodes in insertion order.
func (d *Device) Nodes() []*Node {
	nodes := make([]*Node, len(d.order))
	copy(nodes, d.order)
	return nodes
}

// Node returns the node with the given id, or nil.
func (d *Device) Node(id string) *Node {
	return d.byID[id]
}

// AddNode creates a node under the device. The id is validated and must
// be unique within the device; $nodes is republished on every successful
// add, mirroring the node-level $properties semantics.
func (d *Device) AddNode(id, name, nType string) (*Node, error) {
	id, err := ValidateID(id)
	if err != nil {
		return nil, err
	}
	if _, exists := d.byID[id]; exists {
		return nil, fmt.Errorf("%w: node %q in device %q", ErrDuplicateID, id, d.id)
	}

	node := newNode(d.pub.Child(id), id, name, nType)
	d.byID[id] = node
	d.order = append(d.order, node)

	return node, d.publishNodeList()
}

// publishNodeList publishes the comma-joined $nodes list in insertion order.
func (d *Device) publishNodeList() error {
	ids := make([]string, len(d.order))
	for i, n := range d.order {
		ids[i] = n.ID()
	}
	if err := d.pub.Publish("$nodes", strings.Join(ids, ","), true); err != nil {
		return fmt.Errorf("publishing $nodes: %w", err)
	}
	return nil
}

// PublishConfig broadcasts the full device tree: device attributes with
// $state=init, every node and property config, last known property
// values, then $state=ready.
func (d *Device) PublishConfig() error {
	if err := d.publishState(StateInit); err != nil {
		return err
	}
	if err := d.pub.Publish("$homie", protocolVersion, true); err != nil {
		return fmt.Errorf("publishing $homie: %w", err)
	}
	if err := d.pub.Publish("$name", d.name, true); err != nil {
		return fmt.Errorf("publishing $name: %w", err)
	}
	if err := d.publishNodeList(); err != nil {
		return err
	}
	if err := d.pub.Publish("$extensions", "", true); err != nil {
		return fmt.Errorf("publishing $extensions: %w", err)
	}
	if err := d.pub.Publish("$implementation", implementation, true); err != nil {
		return fmt.Errorf("publishing $implementation: %w", err)
	}

	for _, node := range d.order {
		if err := node.PublishConfig(); err != nil {
			return fmt.Errorf("node %q: %w", node.ID(), err)
		}
		for _, prop := range node.Properties() {
			if err := prop.PublishConfig(); err != nil {
				return fmt.Errorf("property %q/%q: %w", node.ID(), prop.ID(), err)
			}
			if err := prop.RepublishValue(); err != nil {
				return fmt.Errorf("property %q/%q value: %w", node.ID(), prop.ID(), err)
			}
		}
	}

	return d.publishState(StateReady)
}

// BindSetTopics subscribes every property's set topic so inbound commands
// reach HandleSet on the correct property. Properties without a subscriber
// silently drop deliveries, so binding everything up front is safe.
func (d *Device) BindSetTopics(sub SetSubscriber) error {
	for _, node := range d.order {
		for _, prop := range node.Properties() {
			p := prop
			topic := strings.Join(p.Topic(), "/") + "/set"
			if err := sub.Subscribe(topic, func(payload string) {
				// Parse failures are the sender's fault; the next valid
				// command proceeds normally.
				_ = p.HandleSet(payload)
			}); err != nil {
				return fmt.Errorf("subscribing %s: %w", topic, err)
			}
		}
	}
	return nil
}

// Sleep publishes $state=sleeping.
func (d *Device) Sleep() error {
	return d.publishState(StateSleeping)
}

// Alert publishes $state=alert.
func (d *Device) Alert() error {
	return d.publishState(StateAlert)
}

// Disconnect publishes $state=disconnected. Call before tearing down the
// transport connection so controllers see a clean shutdown instead of the
// Last Will "lost".
func (d *Device) Disconnect() error {
	return d.publishState(StateDisconnected)
}

func (d *Device) publishState(s State) error {
	if err := d.pub.Publish("$state", string(s), true); err != nil {
		return fmt.Errorf("publishing $state: %w", err)
	}
	d.state = s
	return nil
}
