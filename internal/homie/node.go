package homie

import (
	"fmt"
	"strings"
)

// Node is a named grouping of properties under a device.
//
// The property set preserves insertion order for the published
// $properties list. Property ids are unique within the node; adding a
// duplicate id is an error and leaves the existing property untouched.
type Node struct {
	id    string
	name  string
	nType string
	pub   *Publisher

	order []Property
	byID  map[string]Property
}

func newNode(pub *Publisher, id, name, nType string) *Node {
	return &Node{
		id:    id,
		name:  name,
		nType: nType,
		pub:   pub,
		byID:  make(map[string]Property),
	}
}

// ID returns the node id.
func (n *Node) ID() string { return n.id }

// Name returns the node display name.
func (n *Node) Name() string { return n.name }

// Type returns the free-form node classification string.
func (n *Node) Type() string { return n.nType }

// Topic returns the ordered path segments from root to this node.
func (n *Node) Topic() []string { return n.pub.Topic() }

// Properties returns the node's properties in insertion order.
func (n *Node) Properties() []Property {
	props := make([]Property, len(n.order))
	copy(props, n.order)
	return props
}

// Property returns the property with the given id, or nil.
func (n *Node) Property(id string) Property {
	return n.byID[id]
}

// PublishConfig publishes $name, $type and the comma-joined $properties
// list in insertion order.
func (n *Node) PublishConfig() error {
	if err := n.pub.Publish("$name", n.name, true); err != nil {
		return fmt.Errorf("publishing $name: %w", err)
	}
	if err := n.pub.Publish("$type", n.nType, true); err != nil {
		return fmt.Errorf("publishing $type: %w", err)
	}
	return n.publishPropertyList()
}

// publishPropertyList publishes the current $properties value. Triggered
// on every successful property add so the list reflects additions without
// requiring another PublishConfig call.
func (n *Node) publishPropertyList() error {
	ids := make([]string, len(n.order))
	for i, p := range n.order {
		ids[i] = p.ID()
	}
	if err := n.pub.Publish("$properties", strings.Join(ids, ","), true); err != nil {
		return fmt.Errorf("publishing $properties: %w", err)
	}
	return nil
}

// register validates the id, rejects duplicates, and inserts the property
// built by the construct callback.
func (n *Node) register(id string, construct func(pub *Publisher, id string) (Property, error)) (Property, error) {
	id, err := ValidateID(id)
	if err != nil {
		return nil, err
	}
	if _, exists := n.byID[id]; exists {
		return nil, fmt.Errorf("%w: property %q in node %q", ErrDuplicateID, id, n.id)
	}

	prop, err := construct(n.pub.Child(id), id)
	if err != nil {
		return nil, err
	}

	n.byID[id] = prop
	n.order = append(n.order, prop)

	return prop, n.publishPropertyList()
}

// AddString adds a string property to the node.
func (n *Node) AddString(id string, opts PropertyOptions) (*StringProperty, error) {
	prop, err := n.register(id, func(pub *Publisher, id string) (Property, error) {
		return newStringProperty(pub, id, opts), nil
	})
	if err != nil {
		return nil, err
	}
	return prop.(*StringProperty), nil
}

// AddInteger adds an integer property. A non-nil range is enforced on
// every update and published as $format "min:max".
func (n *Node) AddInteger(id string, rng *IntRange, opts PropertyOptions) (*IntegerProperty, error) {
	prop, err := n.register(id, func(pub *Publisher, id string) (Property, error) {
		return newIntegerProperty(pub, id, rng, opts)
	})
	if err != nil {
		return nil, err
	}
	return prop.(*IntegerProperty), nil
}

// AddFloat adds a float property. A non-nil range is enforced on every
// update and published as $format "min:max".
func (n *Node) AddFloat(id string, rng *FloatRange, opts PropertyOptions) (*FloatProperty, error) {
	prop, err := n.register(id, func(pub *Publisher, id string) (Property, error) {
		return newFloatProperty(pub, id, rng, opts)
	})
	if err != nil {
		return nil, err
	}
	return prop.(*FloatProperty), nil
}

// AddBoolean adds a boolean property to the node.
func (n *Node) AddBoolean(id string, opts PropertyOptions) (*BooleanProperty, error) {
	prop, err := n.register(id, func(pub *Publisher, id string) (Property, error) {
		return newBooleanProperty(pub, id, opts), nil
	})
	if err != nil {
		return nil, err
	}
	return prop.(*BooleanProperty), nil
}

// AddEnum adds an enum property restricted to the given values, published
// as a comma-joined $format list in declaration order.
func (n *Node) AddEnum(id string, values []string, opts PropertyOptions) (*EnumProperty, error) {
	prop, err := n.register(id, func(pub *Publisher, id string) (Property, error) {
		return newEnumProperty(pub, id, values, opts)
	})
	if err != nil {
		return nil, err
	}
	return prop.(*EnumProperty), nil
}

// AddRGB adds an RGB color property ($format "rgb").
func (n *Node) AddRGB(id string, opts PropertyOptions) (*RGBProperty, error) {
	prop, err := n.register(id, func(pub *Publisher, id string) (Property, error) {
		return newRGBProperty(pub, id, opts), nil
	})
	if err != nil {
		return nil, err
	}
	return prop.(*RGBProperty), nil
}

// AddHSV adds an HSV color property ($format "hsv").
func (n *Node) AddHSV(id string, opts PropertyOptions) (*HSVProperty, error) {
	prop, err := n.register(id, func(pub *Publisher, id string) (Property, error) {
		return newHSVProperty(pub, id, opts), nil
	})
	if err != nil {
		return nil, err
	}
	return prop.(*HSVProperty), nil
}
