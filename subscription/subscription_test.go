package subscription_test

import (
	"testing"

	"github.com/marcelsud/webhook-courier/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("success - https target", func(t *testing.T) {
		sub := subscription.Subscription{TargetURL: "https://example.com/hooks"}
		require.NoError(t, sub.Validate())
	})

	t.Run("success - http target", func(t *testing.T) {
		sub := subscription.Subscription{TargetURL: "http://localhost:9000/receive"}
		require.NoError(t, sub.Validate())
	})

	t.Run("error - empty target", func(t *testing.T) {
		sub := subscription.Subscription{}
		err := sub.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target_url cannot be empty")
	})

	t.Run("error - unsupported scheme", func(t *testing.T) {
		sub := subscription.Subscription{TargetURL: "ftp://example.com/hooks"}
		err := sub.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be http or https")
	})

	t.Run("error - not a URL", func(t *testing.T) {
		sub := subscription.Subscription{TargetURL: "not a url"}
		require.Error(t, sub.Validate())
	})

	t.Run("error - missing host", func(t *testing.T) {
		sub := subscription.Subscription{TargetURL: "https:///path-only"}
		require.Error(t, sub.Validate())
	})
}

func TestAccepts(t *testing.T) {
	t.Run("empty allow-list accepts everything", func(t *testing.T) {
		sub := subscription.Subscription{TargetURL: "https://example.com"}
		assert.False(t, sub.Filters())
		assert.True(t, sub.Accepts("user.created"))
		assert.True(t, sub.Accepts(""))
	})

	t.Run("allow-list accepts listed types only", func(t *testing.T) {
		sub := subscription.Subscription{
			TargetURL:  "https://example.com",
			EventTypes: []string{"order.created", "order.paid"},
		}
		assert.True(t, sub.Filters())
		assert.True(t, sub.Accepts("order.created"))
		assert.True(t, sub.Accepts("order.paid"))
		assert.False(t, sub.Accepts("order.cancelled"))
		assert.False(t, sub.Accepts(""))
	})

	t.Run("matching is exact, not prefix", func(t *testing.T) {
		sub := subscription.Subscription{
			TargetURL:  "https://example.com",
			EventTypes: []string{"order"},
		}
		assert.False(t, sub.Accepts("order.created"))
	})
}
