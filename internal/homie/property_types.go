package homie

import (
	"fmt"
	"strconv"
	"strings"
)

// The concrete property variants. Each supplies its own serialize/parse
// pair over the shared propertyBase; Update and Subscribe are typed per
// variant so callers never handle wire strings directly.

// IntRange is a closed integer range, published as $format "min:max".
type IntRange struct {
	Min int64
	Max int64
}

// FloatRange is a closed float range, published as $format "min:max".
type FloatRange struct {
	Min float64
	Max float64
}

// StringProperty carries free-form string values.
type StringProperty struct {
	propertyBase
	callback func(value string)
}

func newStringProperty(pub *Publisher, id string, opts PropertyOptions) *StringProperty {
	return &StringProperty{propertyBase: newPropertyBase(pub, id, DatatypeString, "", opts)}
}

// Update publishes the value if it differs from the last published one.
func (p *StringProperty) Update(value string) error {
	return p.publishValue(value)
}

// Subscribe registers the update callback (replacing any prior) and
// republishes $settable=true. Returns the property to allow chaining.
func (p *StringProperty) Subscribe(callback func(value string)) *StringProperty {
	p.mu.Lock()
	p.callback = callback
	p.mu.Unlock()
	p.markSettable()
	return p
}

// HandleSet delivers an inbound set payload to the subscriber.
func (p *StringProperty) HandleSet(raw string) error {
	p.mu.Lock()
	cb := p.callback
	p.mu.Unlock()
	if cb != nil {
		cb(raw)
	}
	return nil
}

// IntegerProperty carries int64 values with an optional closed range.
type IntegerProperty struct {
	propertyBase
	rng      *IntRange
	callback func(value int64)
}

func newIntegerProperty(pub *Publisher, id string, rng *IntRange, opts PropertyOptions) (*IntegerProperty, error) {
	format := ""
	if rng != nil {
		if rng.Min > rng.Max {
			return nil, fmt.Errorf("%w: %d:%d", ErrInvalidRange, rng.Min, rng.Max)
		}
		format = fmt.Sprintf("%d:%d", rng.Min, rng.Max)
		r := *rng
		rng = &r
	}
	return &IntegerProperty{
		propertyBase: newPropertyBase(pub, id, DatatypeInteger, format, opts),
		rng:          rng,
	}, nil
}

// Update validates the value against the configured range and publishes it
// if it differs from the last published one. Out-of-range values fail
// before anything is published.
func (p *IntegerProperty) Update(value int64) error {
	if p.rng != nil && (value < p.rng.Min || value > p.rng.Max) {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrOutOfRange, value, p.rng.Min, p.rng.Max)
	}
	return p.publishValue(strconv.FormatInt(value, 10))
}

// Subscribe registers the update callback (replacing any prior) and
// republishes $settable=true. Returns the property to allow chaining.
func (p *IntegerProperty) Subscribe(callback func(value int64)) *IntegerProperty {
	p.mu.Lock()
	p.callback = callback
	p.mu.Unlock()
	p.markSettable()
	return p
}

// HandleSet parses an inbound payload as a decimal integer and delivers
// it to the subscriber.
func (p *IntegerProperty) HandleSet(raw string) error {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not an integer", ErrInvalidPayload, raw)
	}

	p.mu.Lock()
	cb := p.callback
	p.mu.Unlock()
	if cb != nil {
		cb(value)
	}
	return nil
}

// FloatProperty carries float64 values with an optional closed range.
type FloatProperty struct {
	propertyBase
	rng      *FloatRange
	callback func(value float64)
}

func newFloatProperty(pub *Publisher, id string, rng *FloatRange, opts PropertyOptions) (*FloatProperty, error) {
	format := ""
	if rng != nil {
		if rng.Min > rng.Max {
			return nil, fmt.Errorf("%w: %g:%g", ErrInvalidRange, rng.Min, rng.Max)
		}
		format = fmt.Sprintf("%s:%s", formatFloat(rng.Min), formatFloat(rng.Max))
		r := *rng
		rng = &r
	}
	return &FloatProperty{
		propertyBase: newPropertyBase(pub, id, DatatypeFloat, format, opts),
		rng:          rng,
	}, nil
}

// Update validates the value against the configured range and publishes it
// if it differs from the last published one.
func (p *FloatProperty) Update(value float64) error {
	if p.rng != nil && (value < p.rng.Min || value > p.rng.Max) {
		return fmt.Errorf("%w: %g not in [%g,%g]", ErrOutOfRange, value, p.rng.Min, p.rng.Max)
	}
	return p.publishValue(formatFloat(value))
}

// Subscribe registers the update callback (replacing any prior) and
// republishes $settable=true. Returns the property to allow chaining.
func (p *FloatProperty) Subscribe(callback func(value float64)) *FloatProperty {
	p.mu.Lock()
	p.callback = callback
	p.mu.Unlock()
	p.markSettable()
	return p
}

// HandleSet parses an inbound payload as a float and delivers it to the
// subscriber.
func (p *FloatProperty) HandleSet(raw string) error {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a float", ErrInvalidPayload, raw)
	}

	p.mu.Lock()
	cb := p.callback
	p.mu.Unlock()
	if cb != nil {
		cb(value)
	}
	return nil
}

// BooleanProperty carries boolean values; wire form is "true"/"false".
type BooleanProperty struct {
	propertyBase
	callback func(value bool)
}

func newBooleanProperty(pub *Publisher, id string, opts PropertyOptions) *BooleanProperty {
	return &BooleanProperty{propertyBase: newPropertyBase(pub, id, DatatypeBoolean, "", opts)}
}

// Update publishes the value if it differs from the last published one.
func (p *BooleanProperty) Update(value bool) error {
	return p.publishValue(strconv.FormatBool(value))
}

// Subscribe registers the update callback (replacing any prior) and
// republishes $settable=true. Returns the property to allow chaining.
func (p *BooleanProperty) Subscribe(callback func(value bool)) *BooleanProperty {
	p.mu.Lock()
	p.callback = callback
	p.mu.Unlock()
	p.markSettable()
	return p
}

// HandleSet parses an inbound payload as "true" or "false" (exact match
// per the convention) and delivers it to the subscriber.
func (p *BooleanProperty) HandleSet(raw string) error {
	var value bool
	switch raw {
	case "true":
		value = true
	case "false":
		value = false
	default:
		return fmt.Errorf("%w: %q is not a boolean", ErrInvalidPayload, raw)
	}

	p.mu.Lock()
	cb := p.callback
	p.mu.Unlock()
	if cb != nil {
		cb(value)
	}
	return nil
}

// EnumProperty carries one of a fixed set of string values. $format is the
// comma-joined value list in declaration order.
type EnumProperty struct {
	propertyBase
	values  []string
	allowed map[string]struct{}

	callback func(value string)
}

func newEnumProperty(pub *Publisher, id string, values []string, opts PropertyOptions) (*EnumProperty, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: property %q", ErrNoEnumValues, id)
	}

	vals := make([]string, len(values))
	copy(vals, values)
	allowed := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		allowed[v] = struct{}{}
	}

	return &EnumProperty{
		propertyBase: newPropertyBase(pub, id, DatatypeEnum, strings.Join(vals, ","), opts),
		values:       vals,
		allowed:      allowed,
	}, nil
}

// Values returns the allowed enum values in declaration order.
func (p *EnumProperty) Values() []string {
	vals := make([]string, len(p.values))
	copy(vals, p.values)
	return vals
}

// Update publishes the value if it differs from the last published one.
// Values outside the declared set fail before anything is published.
func (p *EnumProperty) Update(value string) error {
	if _, ok := p.allowed[value]; !ok {
		return fmt.Errorf("%w: %q not in [%s]", ErrUnknownEnumValue, value, p.format)
	}
	return p.publishValue(value)
}

// Subscribe registers the update callback (replacing any prior) and
// republishes $settable=true. Returns the property to allow chaining.
func (p *EnumProperty) Subscribe(callback func(value string)) *EnumProperty {
	p.mu.Lock()
	p.callback = callback
	p.mu.Unlock()
	p.markSettable()
	return p
}

// HandleSet maps an inbound wire string through the exact-match value set
// and delivers it to the subscriber. Unmapped strings fail at parse time.
func (p *EnumProperty) HandleSet(raw string) error {
	if _, ok := p.allowed[raw]; !ok {
		return fmt.Errorf("%w: %q not in [%s]", ErrUnknownEnumValue, raw, p.format)
	}

	p.mu.Lock()
	cb := p.callback
	p.mu.Unlock()
	if cb != nil {
		cb(raw)
	}
	return nil
}

// RGBProperty carries RGB color values; $format is "rgb".
type RGBProperty struct {
	propertyBase
	callback func(value RGB)
}

func newRGBProperty(pub *Publisher, id string, opts PropertyOptions) *RGBProperty {
	return &RGBProperty{propertyBase: newPropertyBase(pub, id, DatatypeColor, "rgb", opts)}
}

// Update publishes the color if it differs from the last published one.
func (p *RGBProperty) Update(value RGB) error {
	return p.publishValue(value.String())
}

// Subscribe registers the update callback (replacing any prior) and
// republishes $settable=true. Returns the property to allow chaining.
func (p *RGBProperty) Subscribe(callback func(value RGB)) *RGBProperty {
	p.mu.Lock()
	p.callback = callback
	p.mu.Unlock()
	p.markSettable()
	return p
}

// HandleSet parses an inbound "r,g,b" payload and delivers it to the
// subscriber.
func (p *RGBProperty) HandleSet(raw string) error {
	value, err := ParseRGB(raw)
	if err != nil {
		return err
	}

	p.mu.Lock()
	cb := p.callback
	p.mu.Unlock()
	if cb != nil {
		cb(value)
	}
	return nil
}

// HSVProperty carries HSV color values; $format is "hsv".
type HSVProperty struct {
	propertyBase
	callback func(value HSV)
}

func newHSVProperty(pub *Publisher, id string, opts PropertyOptions) *HSVProperty {
	return &HSVProperty{propertyBase: newPropertyBase(pub, id, DatatypeColor, "hsv", opts)}
}

// Update publishes the color if it differs from the last published one.
func (p *HSVProperty) Update(value HSV) error {
	return p.publishValue(value.String())
}

// Subscribe registers the update callback (replacing any prior) and
// republishes $settable=true. Returns the property to allow chaining.
func (p *HSVProperty) Subscribe(callback func(value HSV)) *HSVProperty {
	p.mu.Lock()
	p.callback = callback
	p.mu.Unlock()
	p.markSettable()
	return p
}

// HandleSet parses an inbound "h,s,v" payload and delivers it to the
// subscriber.
func (p *HSVProperty) HandleSet(raw string) error {
	value, err := ParseHSV(raw)
	if err != nil {
		return err
	}

	p.mu.Lock()
	cb := p.callback
	p.mu.Unlock()
	if cb != nil {
		cb(value)
	}
	return nil
}

// formatFloat renders a float in the shortest round-trippable decimal form.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
