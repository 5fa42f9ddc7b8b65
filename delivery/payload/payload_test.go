package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("success - valid object", func(t *testing.T) {
		p, err := Parse([]byte(`{"event_type": "user.created", "data": {"id": 1}}`))
		require.NoError(t, err)
		et, ok := p.EventType()
		assert.True(t, ok)
		assert.Equal(t, "user.created", et)
	})

	t.Run("success - non-object payload", func(t *testing.T) {
		p, err := Parse([]byte(`[1, 2, 3]`))
		require.NoError(t, err)
		_, ok := p.EventType()
		assert.False(t, ok)
	})

	t.Run("error - invalid JSON", func(t *testing.T) {
		_, err := Parse([]byte(`{invalid json}`))
		require.Error(t, err)
	})

	t.Run("error - empty body", func(t *testing.T) {
		_, err := Parse([]byte(``))
		require.Error(t, err)
	})

	t.Run("error - trailing data", func(t *testing.T) {
		_, err := Parse([]byte(`{"a": 1} {"b": 2}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "trailing data")
	})

	t.Run("raw bytes preserved", func(t *testing.T) {
		raw := []byte(`{ "a" :  1 }`)
		p, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, p.Raw())
	})
}

func TestEventType(t *testing.T) {
	t.Run("present as string", func(t *testing.T) {
		p, err := Parse([]byte(`{"event_type": "order.paid"}`))
		require.NoError(t, err)
		et, ok := p.EventType()
		assert.True(t, ok)
		assert.Equal(t, "order.paid", et)
	})

	t.Run("absent", func(t *testing.T) {
		p, err := Parse([]byte(`{"data": {"id": 1}}`))
		require.NoError(t, err)
		_, ok := p.EventType()
		assert.False(t, ok)
	})

	t.Run("present but not a string", func(t *testing.T) {
		p, err := Parse([]byte(`{"event_type": 42}`))
		require.NoError(t, err)
		_, ok := p.EventType()
		assert.False(t, ok)
	})
}

func TestCanonical(t *testing.T) {
	t.Run("key order does not matter", func(t *testing.T) {
		p1, err := Parse([]byte(`{"b": 2, "a": 1}`))
		require.NoError(t, err)
		p2, err := Parse([]byte(`{"a": 1, "b": 2}`))
		require.NoError(t, err)

		c1, err := p1.Canonical()
		require.NoError(t, err)
		c2, err := p2.Canonical()
		require.NoError(t, err)
		assert.Equal(t, c1, c2)
	})

	t.Run("whitespace does not matter", func(t *testing.T) {
		p1, err := Parse([]byte(`{ "a" : 1 ,  "b" : "x" }`))
		require.NoError(t, err)
		p2, err := Parse([]byte(`{"a":1,"b":"x"}`))
		require.NoError(t, err)

		c1, err := p1.Canonical()
		require.NoError(t, err)
		c2, err := p2.Canonical()
		require.NoError(t, err)
		assert.Equal(t, c1, c2)
	})

	t.Run("keys sorted lexicographically", func(t *testing.T) {
		p, err := Parse([]byte(`{"zebra": 1, "apple": 2, "mango": 3}`))
		require.NoError(t, err)

		c, err := p.Canonical()
		require.NoError(t, err)
		assert.Equal(t, `{"apple":2,"mango":3,"zebra":1}`, string(c))
	})

	t.Run("numeric literals preserved", func(t *testing.T) {
		p, err := Parse([]byte(`{"price": 10.50, "big": 12345678901234567890}`))
		require.NoError(t, err)

		c, err := p.Canonical()
		require.NoError(t, err)
		assert.Equal(t, `{"big":12345678901234567890,"price":10.50}`, string(c))
	})

	t.Run("no HTML escaping", func(t *testing.T) {
		p, err := Parse([]byte(`{"url": "https://example.com/a?b=1&c=2"}`))
		require.NoError(t, err)

		c, err := p.Canonical()
		require.NoError(t, err)
		assert.Equal(t, `{"url":"https://example.com/a?b=1&c=2"}`, string(c))
	})

	t.Run("no trailing newline", func(t *testing.T) {
		p, err := Parse([]byte(`{"a": 1}`))
		require.NoError(t, err)

		c, err := p.Canonical()
		require.NoError(t, err)
		assert.NotContains(t, string(c), "\n")
	})

	t.Run("nested objects sorted too", func(t *testing.T) {
		p, err := Parse([]byte(`{"outer": {"z": 1, "a": 2}}`))
		require.NoError(t, err)

		c, err := p.Canonical()
		require.NoError(t, err)
		assert.Equal(t, `{"outer":{"a":2,"z":1}}`, string(c))
	})
}
