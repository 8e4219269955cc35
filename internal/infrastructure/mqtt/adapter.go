package mqtt

// Adapter bridges the connected Client onto the homie package's
// transport interfaces (homie.Transport and homie.SetSubscriber).
//
// Publishes use the configured default QoS; set-topic subscriptions use
// QoS 1 so commands survive brief broker hiccups.
type Adapter struct {
	client *Client
}

// NewAdapter wraps a connected client for use by the Homie device model.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// Publish implements homie.Transport.
func (a *Adapter) Publish(topic string, payload string, retained bool) error {
	return a.client.PublishString(topic, payload, retained)
}

// Subscribe implements homie.SetSubscriber. The handler receives the raw
// payload as a string; delivery runs on paho's goroutines.
func (a *Adapter) Subscribe(topic string, handler func(payload string)) error {
	return a.client.Subscribe(topic, 1, func(_ string, payload []byte) error {
		handler(string(payload))
		return nil
	})
}
