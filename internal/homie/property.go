package homie

import (
	"fmt"
	"strconv"
	"sync"
)

// Datatype is a Homie property datatype, published as $datatype.
type Datatype string

// Property datatypes per the Homie 4.0 convention.
const (
	DatatypeString  Datatype = "string"
	DatatypeInteger Datatype = "integer"
	DatatypeFloat   Datatype = "float"
	DatatypeBoolean Datatype = "boolean"
	DatatypeEnum    Datatype = "enum"
	DatatypeColor   Datatype = "color"
)

// Property is the capability shared by all typed property variants.
// Concrete types (StringProperty, IntegerProperty, ...) additionally expose
// a typed Update and Subscribe pair.
type Property interface {
	// ID returns the property id, immutable after construction.
	ID() string

	// Name returns the optional display label ("" if none).
	Name() string

	// Datatype returns the fixed datatype of this variant.
	Datatype() Datatype

	// Format returns the $format string derived at construction ("" if none).
	Format() string

	// Unit returns the optional unit string ("" if none).
	Unit() string

	// Retained reports whether value publishes carry the retained flag.
	Retained() bool

	// Settable reports whether an update subscriber is registered.
	Settable() bool

	// Topic returns the ordered path segments from root to this property.
	Topic() []string

	// LastValue returns the last published wire value and whether one exists.
	LastValue() (string, bool)

	// PublishConfig publishes the property's $-attributes in convention
	// order: $name (if set), $settable, $retained, $unit (if set),
	// $datatype, $format (if set).
	PublishConfig() error

	// RepublishValue re-publishes the last published value, if any.
	// Used when broadcasting full device config after (re)connection.
	RepublishValue() error

	// HandleSet is the inbound entry point invoked by the transport when
	// a message arrives on the property's set topic. The raw payload is
	// parsed into the variant's type and handed to the registered
	// subscriber. Without a subscriber the message is silently dropped.
	HandleSet(raw string) error
}

// PropertyOptions carries the optional attributes shared by all variants.
type PropertyOptions struct {
	// Name is the optional display label, published as $name when set.
	Name string

	// Unit is the optional unit string, published as $unit when set.
	Unit string

	// Retained controls the retained flag on value publishes.
	// nil means retained (the convention default).
	Retained *bool
}

func (o PropertyOptions) retained() bool {
	return o.Retained == nil || *o.Retained
}

// propertyBase holds the state and behaviour common to every variant.
// id, datatype and format are fixed at construction; lastValue and the
// settable flag are the only mutable state, guarded by mu because value
// updates and inbound set delivery may run on different goroutines.
type propertyBase struct {
	id       string
	name     string
	unit     string
	format   string
	datatype Datatype
	retained bool
	pub      *Publisher

	mu        sync.Mutex
	lastValue string
	hasValue  bool
	settable  bool
}

func newPropertyBase(pub *Publisher, id string, datatype Datatype, format string, opts PropertyOptions) propertyBase {
	return propertyBase{
		id:       id,
		name:     opts.Name,
		unit:     opts.Unit,
		format:   format,
		datatype: datatype,
		retained: opts.retained(),
		pub:      pub,
	}
}

// ID returns the property id.
func (p *propertyBase) ID() string { return p.id }

// Name returns the optional display label.
func (p *propertyBase) Name() string { return p.name }

// Datatype returns the fixed datatype of this property.
func (p *propertyBase) Datatype() Datatype { return p.datatype }

// Format returns the $format string derived at construction ("" if none).
func (p *propertyBase) Format() string { return p.format }

// Unit returns the optional unit string ("" if none).
func (p *propertyBase) Unit() string { return p.unit }

// Retained reports whether value publishes carry the retained flag.
func (p *propertyBase) Retained() bool { return p.retained }

// Settable reports whether an update subscriber is registered.
func (p *propertyBase) Settable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settable
}

// Topic returns the ordered path segments from root to this property.
func (p *propertyBase) Topic() []string { return p.pub.Topic() }

// SetTopic returns the full topic the transport should watch for inbound
// set commands ("<topic>/set").
func (p *propertyBase) SetTopic() string { return p.pub.TopicString() + "/set" }

// LastValue returns the last published wire value and whether one exists.
func (p *propertyBase) LastValue() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastValue, p.hasValue
}

// PublishConfig publishes the $-attributes in the fixed convention order.
func (p *propertyBase) PublishConfig() error {
	if p.name != "" {
		if err := p.pub.Publish("$name", p.name, true); err != nil {
			return fmt.Errorf("publishing $name: %w", err)
		}
	}
	if err := p.pub.Publish("$settable", strconv.FormatBool(p.Settable()), true); err != nil {
		return fmt.Errorf("publishing $settable: %w", err)
	}
	if err := p.pub.Publish("$retained", strconv.FormatBool(p.retained), true); err != nil {
		return fmt.Errorf("publishing $retained: %w", err)
	}
	if p.unit != "" {
		if err := p.pub.Publish("$unit", p.unit, true); err != nil {
			return fmt.Errorf("publishing $unit: %w", err)
		}
	}
	if err := p.pub.Publish("$datatype", string(p.datatype), true); err != nil {
		return fmt.Errorf("publishing $datatype: %w", err)
	}
	if p.format != "" {
		if err := p.pub.Publish("$format", p.format, true); err != nil {
			return fmt.Errorf("publishing $format: %w", err)
		}
	}
	return nil
}

// publishValue publishes a serialized value at the property's own topic,
// suppressing the publish when it equals the last published value.
// The stored value is updated regardless of the transport outcome.
func (p *propertyBase) publishValue(serialized string) error {
	p.mu.Lock()
	if p.hasValue && p.lastValue == serialized {
		p.mu.Unlock()
		return nil
	}
	p.lastValue = serialized
	p.hasValue = true
	p.mu.Unlock()

	return p.pub.Publish("", serialized, p.retained)
}

// RepublishValue re-publishes the last value, bypassing deduplication.
// No-op when the property has never published.
func (p *propertyBase) RepublishValue() error {
	value, ok := p.LastValue()
	if !ok {
		return nil
	}
	return p.pub.Publish("", value, p.retained)
}

// markSettable flips the settable flag and republishes $settable so
// controllers learn the property now accepts set commands. Republished on
// every subscribe, including replacement of an existing callback.
func (p *propertyBase) markSettable() {
	p.mu.Lock()
	p.settable = true
	p.mu.Unlock()

	// Best effort: a failed attribute publish is corrected by the next
	// PublishConfig broadcast.
	_ = p.pub.Publish("$settable", "true", true)
}
