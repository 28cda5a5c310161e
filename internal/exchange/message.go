package exchange

// Message carries a payload and its headers through a route. The payload
// stays untyped until a processor coerces it through the converter
// registry. The back-reference to the owning exchange is informational
// only and never extends its lifetime.
type Message struct {
	body     interface{}
	headers  map[string]interface{}
	exchange *Exchange
}

func NewMessage() *Message {
	return &Message{headers: make(map[string]interface{})}
}

func (m *Message) Body() interface{} { return m.body }

func (m *Message) SetBody(body interface{}) { m.body = body }

// Header returns the named header value. Header names are case-sensitive.
func (m *Message) Header(name string) (interface{}, bool) {
	v, ok := m.headers[name]
	return v, ok
}

func (m *Message) SetHeader(name string, value interface{}) {
	if m.headers == nil {
		m.headers = make(map[string]interface{})
	}
	m.headers[name] = value
}

func (m *Message) RemoveHeader(name string) {
	delete(m.headers, name)
}

// Headers returns a copy of the header map. Mutating the copy does not
// affect the message.
func (m *Message) Headers() map[string]interface{} {
	out := make(map[string]interface{}, len(m.headers))
	for k, v := range m.headers {
		out[k] = v
	}
	return out
}

// Exchange returns the exchange this message currently belongs to, or nil
// for a detached message.
func (m *Message) Exchange() *Exchange { return m.exchange }

// Copy returns a detached copy with its own header map. The body is shared:
// payloads are treated as immutable values by processors, which replace the
// body rather than mutate it in place.
func (m *Message) Copy() *Message {
	c := NewMessage()
	c.body = m.body
	for k, v := range m.headers {
		c.headers[k] = v
	}
	return c
}
