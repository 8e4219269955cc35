package homie

import (
	"errors"
	"testing"
)

// testNode builds a node rooted at "foo" over a fresh fake transport.
func testNode(t *testing.T, id, name, nType string) (*Node, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	return newNode(NewPublisher(tr, id), id, name, nType), tr
}

func TestPropertyUpdateDeduplication(t *testing.T) {
	n, tr := testNode(t, "foo", "bar", "baz")

	t.Run("same value publishes exactly once", func(t *testing.T) {
		p, err := n.AddString("greeting", PropertyOptions{})
		if err != nil {
			t.Fatalf("AddString() error = %v", err)
		}
		tr.reset()

		if err := p.Update("hello"); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if err := p.Update("hello"); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		if got := tr.count("foo/greeting"); got != 1 {
			t.Errorf("publish count = %d, want 1", got)
		}
	})

	t.Run("distinct values publish once each in order", func(t *testing.T) {
		p, err := n.AddInteger("counter", nil, PropertyOptions{})
		if err != nil {
			t.Fatalf("AddInteger() error = %v", err)
		}
		tr.reset()

		for _, v := range []int64{1, 2, 2, 3, 1} {
			if err := p.Update(v); err != nil {
				t.Fatalf("Update(%d) error = %v", v, err)
			}
		}

		got := tr.payloads("foo/counter")
		want := []string{"1", "2", "3", "1"}
		if len(got) != len(want) {
			t.Fatalf("payloads = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("payloads[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("retained flag follows construction", func(t *testing.T) {
		retained := false
		p, err := n.AddBoolean("motion", PropertyOptions{Retained: &retained})
		if err != nil {
			t.Fatalf("AddBoolean() error = %v", err)
		}
		tr.reset()

		if err := p.Update(true); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		msgs := tr.all()
		if len(msgs) != 1 || msgs[0].retained {
			t.Errorf("messages = %+v, want one non-retained publish", msgs)
		}
	})
}

func TestPropertyPublishConfig(t *testing.T) {
	t.Run("full attribute order", func(t *testing.T) {
		n, tr := testNode(t, "foo", "bar", "baz")
		p, err := n.AddInteger("level", &IntRange{Min: 0, Max: 10},
			PropertyOptions{Name: "Level", Unit: "%"})
		if err != nil {
			t.Fatalf("AddInteger() error = %v", err)
		}
		tr.reset()

		if err := p.PublishConfig(); err != nil {
			t.Fatalf("PublishConfig() error = %v", err)
		}

		want := []publishedMessage{
			{"foo/level/$name", "Level", true},
			{"foo/level/$settable", "false", true},
			{"foo/level/$retained", "true", true},
			{"foo/level/$unit", "%", true},
			{"foo/level/$datatype", "integer", true},
			{"foo/level/$format", "0:10", true},
		}
		got := tr.all()
		if len(got) != len(want) {
			t.Fatalf("got %d messages %v, want %d", len(got), got, len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("messages[%d] = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("optional attributes omitted", func(t *testing.T) {
		n, tr := testNode(t, "foo", "bar", "baz")
		p, err := n.AddString("plain", PropertyOptions{})
		if err != nil {
			t.Fatalf("AddString() error = %v", err)
		}
		tr.reset()

		if err := p.PublishConfig(); err != nil {
			t.Fatalf("PublishConfig() error = %v", err)
		}

		for _, m := range tr.all() {
			switch m.topic {
			case "foo/plain/$name", "foo/plain/$unit", "foo/plain/$format":
				t.Errorf("unexpected attribute publish: %+v", m)
			}
		}
		if got, _ := tr.last("foo/plain/$datatype"); got != "string" {
			t.Errorf("$datatype = %q, want %q", got, "string")
		}
	})
}

func TestPropertySubscribe(t *testing.T) {
	n, tr := testNode(t, "foo", "bar", "baz")

	t.Run("no subscriber publishes settable false", func(t *testing.T) {
		p, err := n.AddString("readonly", PropertyOptions{})
		if err != nil {
			t.Fatalf("AddString() error = %v", err)
		}
		tr.reset()
		if err := p.PublishConfig(); err != nil {
			t.Fatalf("PublishConfig() error = %v", err)
		}
		if got, _ := tr.last("foo/readonly/$settable"); got != "false" {
			t.Errorf("$settable = %q, want %q", got, "false")
		}
	})

	t.Run("subscribe republishes settable true immediately", func(t *testing.T) {
		p, err := n.AddString("writable", PropertyOptions{})
		if err != nil {
			t.Fatalf("AddString() error = %v", err)
		}
		tr.reset()

		got := p.Subscribe(func(string) {})
		if got != p {
			t.Error("Subscribe() did not return the property for chaining")
		}
		if v, ok := tr.last("foo/writable/$settable"); !ok || v != "true" {
			t.Errorf("$settable = %q (published %v), want true", v, ok)
		}
		if !p.Settable() {
			t.Error("Settable() = false after Subscribe")
		}
	})

	t.Run("subscribe replaces prior callback", func(t *testing.T) {
		p, err := n.AddInteger("target", nil, PropertyOptions{})
		if err != nil {
			t.Fatalf("AddInteger() error = %v", err)
		}

		var first, second []int64
		p.Subscribe(func(v int64) { first = append(first, v) })
		p.Subscribe(func(v int64) { second = append(second, v) })

		if err := p.HandleSet("7"); err != nil {
			t.Fatalf("HandleSet() error = %v", err)
		}
		if len(first) != 0 {
			t.Errorf("replaced callback invoked: %v", first)
		}
		if len(second) != 1 || second[0] != 7 {
			t.Errorf("second = %v, want [7]", second)
		}
	})
}

func TestNumericRange(t *testing.T) {
	n, tr := testNode(t, "foo", "bar", "baz")

	t.Run("integer out of range fails before publish", func(t *testing.T) {
		p, err := n.AddInteger("dim", &IntRange{Min: 0, Max: 10}, PropertyOptions{})
		if err != nil {
			t.Fatalf("AddInteger() error = %v", err)
		}
		tr.reset()

		if err := p.Update(11); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Update(11) error = %v, want ErrOutOfRange", err)
		}
		if got := tr.count("foo/dim"); got != 0 {
			t.Errorf("publish count = %d, want 0", got)
		}
		if _, ok := p.LastValue(); ok {
			t.Error("LastValue() set after rejected update")
		}

		if err := p.Update(5); err != nil {
			t.Fatalf("Update(5) error = %v", err)
		}
		if got, _ := tr.last("foo/dim"); got != "5" {
			t.Errorf("published %q, want %q", got, "5")
		}
	})

	t.Run("rejected update preserves prior value", func(t *testing.T) {
		p, err := n.AddFloat("temp", &FloatRange{Min: -40, Max: 85}, PropertyOptions{})
		if err != nil {
			t.Fatalf("AddFloat() error = %v", err)
		}
		if err := p.Update(21.5); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if err := p.Update(200); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Update(200) error = %v, want ErrOutOfRange", err)
		}
		if v, _ := p.LastValue(); v != "21.5" {
			t.Errorf("LastValue() = %q, want %q", v, "21.5")
		}
	})

	t.Run("inverted range rejected at construction", func(t *testing.T) {
		if _, err := n.AddInteger("bad", &IntRange{Min: 5, Max: 1}, PropertyOptions{}); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("AddInteger() error = %v, want ErrInvalidRange", err)
		}
	})

	t.Run("float format uses shortest form", func(t *testing.T) {
		p, err := n.AddFloat("ratio", &FloatRange{Min: 0, Max: 1.5}, PropertyOptions{})
		if err != nil {
			t.Fatalf("AddFloat() error = %v", err)
		}
		if p.Format() != "0:1.5" {
			t.Errorf("Format() = %q, want %q", p.Format(), "0:1.5")
		}
	})
}

func TestEnumProperty(t *testing.T) {
	n, tr := testNode(t, "foo", "bar", "baz")
	p, err := n.AddEnum("mode", []string{"off", "heat", "cool"}, PropertyOptions{})
	if err != nil {
		t.Fatalf("AddEnum() error = %v", err)
	}

	t.Run("format is comma-joined declaration order", func(t *testing.T) {
		if p.Format() != "off,heat,cool" {
			t.Errorf("Format() = %q", p.Format())
		}
	})

	t.Run("update rejects undeclared value", func(t *testing.T) {
		tr.reset()
		if err := p.Update("defrost"); !errors.Is(err, ErrUnknownEnumValue) {
			t.Fatalf("Update() error = %v, want ErrUnknownEnumValue", err)
		}
		if got := tr.count("foo/mode"); got != 0 {
			t.Errorf("publish count = %d, want 0", got)
		}
	})

	t.Run("inbound unmapped string fails at parse time", func(t *testing.T) {
		var received []string
		p.Subscribe(func(v string) { received = append(received, v) })

		if err := p.HandleSet("defrost"); !errors.Is(err, ErrUnknownEnumValue) {
			t.Fatalf("HandleSet() error = %v, want ErrUnknownEnumValue", err)
		}
		if len(received) != 0 {
			t.Errorf("callback invoked for unmapped value: %v", received)
		}

		if err := p.HandleSet("heat"); err != nil {
			t.Fatalf("HandleSet() error = %v", err)
		}
		if len(received) != 1 || received[0] != "heat" {
			t.Errorf("received = %v, want [heat]", received)
		}
	})

	t.Run("empty value set rejected", func(t *testing.T) {
		if _, err := n.AddEnum("empty", nil, PropertyOptions{}); !errors.Is(err, ErrNoEnumValues) {
			t.Errorf("AddEnum() error = %v, want ErrNoEnumValues", err)
		}
	})
}

func TestHandleSetParsing(t *testing.T) {
	n, _ := testNode(t, "foo", "bar", "baz")

	t.Run("no subscriber is a silent no-op", func(t *testing.T) {
		p, err := n.AddInteger("orphan", nil, PropertyOptions{})
		if err != nil {
			t.Fatalf("AddInteger() error = %v", err)
		}
		if err := p.HandleSet("42"); err != nil {
			t.Errorf("HandleSet() error = %v, want nil", err)
		}
	})

	t.Run("boolean requires exact true or false", func(t *testing.T) {
		p, err := n.AddBoolean("power", PropertyOptions{})
		if err != nil {
			t.Fatalf("AddBoolean() error = %v", err)
		}
		var got []bool
		p.Subscribe(func(v bool) { got = append(got, v) })

		for _, in := range []string{"True", "1", "yes", "ON"} {
			if err := p.HandleSet(in); !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("HandleSet(%q) error = %v, want ErrInvalidPayload", in, err)
			}
		}
		if err := p.HandleSet("true"); err != nil {
			t.Fatalf("HandleSet(true) error = %v", err)
		}
		if len(got) != 1 || !got[0] {
			t.Errorf("got = %v, want [true]", got)
		}
	})

	t.Run("malformed integer payload", func(t *testing.T) {
		p, err := n.AddInteger("count", nil, PropertyOptions{})
		if err != nil {
			t.Fatalf("AddInteger() error = %v", err)
		}
		p.Subscribe(func(int64) {})
		if err := p.HandleSet("4.2"); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("HandleSet() error = %v, want ErrInvalidPayload", err)
		}
	})

	t.Run("color set delivers parsed triple", func(t *testing.T) {
		p, err := n.AddHSV("tint", PropertyOptions{})
		if err != nil {
			t.Fatalf("AddHSV() error = %v", err)
		}
		var got []HSV
		p.Subscribe(func(v HSV) { got = append(got, v) })

		if err := p.HandleSet("120,100,50"); err != nil {
			t.Fatalf("HandleSet() error = %v", err)
		}
		if len(got) != 1 || got[0] != (HSV{H: 120, S: 100, V: 50}) {
			t.Errorf("got = %v", got)
		}
	})
}

func TestColorProperties(t *testing.T) {
	n, tr := testNode(t, "foo", "bar", "baz")

	t.Run("rgb publishes comma-joined triple", func(t *testing.T) {
		p, err := n.AddRGB("glow", PropertyOptions{})
		if err != nil {
			t.Fatalf("AddRGB() error = %v", err)
		}
		if p.Format() != "rgb" {
			t.Errorf("Format() = %q, want %q", p.Format(), "rgb")
		}
		tr.reset()

		if err := p.Update(RGB{R: 10, G: 20, B: 30}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if err := p.Update(RGB{R: 10, G: 20, B: 30}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		got := tr.payloads("foo/glow")
		if len(got) != 1 || got[0] != "10,20,30" {
			t.Errorf("payloads = %v, want [10,20,30] once", got)
		}
	})

	t.Run("hsv format tag", func(t *testing.T) {
		p, err := n.AddHSV("shade", PropertyOptions{})
		if err != nil {
			t.Fatalf("AddHSV() error = %v", err)
		}
		if p.Format() != "hsv" {
			t.Errorf("Format() = %q, want %q", p.Format(), "hsv")
		}
	})
}
