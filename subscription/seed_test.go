package subscription_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-courier/subscription"
	"github.com/marcelsud/webhook-courier/subscription/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subscriptions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSeed(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		path := writeSeedFile(t, `
subscriptions:
  - id: 0d1b3b3f-9a7e-4b7d-8c59-2f33a9e7c001
    target_url: https://billing.example.com/hooks
    secret: s3cret
    event_types:
      - invoice.created
      - invoice.paid
  - target_url: https://audit.example.com/hooks
`)

		subs, err := subscription.LoadSeed(path)
		require.NoError(t, err)
		require.Len(t, subs, 2)

		assert.Equal(t, "0d1b3b3f-9a7e-4b7d-8c59-2f33a9e7c001", subs[0].ID)
		assert.Equal(t, "https://billing.example.com/hooks", subs[0].TargetURL)
		assert.Equal(t, "s3cret", subs[0].Secret)
		assert.Equal(t, []string{"invoice.created", "invoice.paid"}, subs[0].EventTypes)
		assert.False(t, subs[0].CreatedAt.IsZero())

		// Entradas sem id recebem um uuid gerado
		_, err = uuid.Parse(subs[1].ID)
		assert.NoError(t, err)
	})

	t.Run("error - missing file", func(t *testing.T) {
		_, err := subscription.LoadSeed(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading seed file")
	})

	t.Run("error - invalid YAML", func(t *testing.T) {
		path := writeSeedFile(t, "subscriptions: [not: valid: yaml")
		_, err := subscription.LoadSeed(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing seed YAML")
	})

	t.Run("error - invalid target url", func(t *testing.T) {
		path := writeSeedFile(t, `
subscriptions:
  - id: bad-entry
    target_url: ftp://nope.example.com
`)
		_, err := subscription.LoadSeed(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validating seed subscription bad-entry")
	})
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	t.Run("inserts missing subscriptions", func(t *testing.T) {
		store := mocks.NewStore(t)
		sub := subscription.Subscription{ID: "sub-1", TargetURL: "https://a.example.com/hooks"}
		store.On("Select", ctx, "sub-1").Return(subscription.Subscription{}, subscription.ErrNotFound)
		store.On("Insert", ctx, sub).Return(nil)

		err := subscription.ApplySeed(ctx, store, []subscription.Subscription{sub}, log)
		assert.NoError(t, err)
	})

	t.Run("skips subscriptions that already exist", func(t *testing.T) {
		store := mocks.NewStore(t)
		sub := subscription.Subscription{ID: "sub-1", TargetURL: "https://a.example.com/hooks"}
		store.On("Select", ctx, "sub-1").Return(sub, nil)

		err := subscription.ApplySeed(ctx, store, []subscription.Subscription{sub}, log)
		assert.NoError(t, err)
		store.AssertNotCalled(t, "Insert", ctx, sub)
	})

	t.Run("error - store lookup fails", func(t *testing.T) {
		store := mocks.NewStore(t)
		sub := subscription.Subscription{ID: "sub-1", TargetURL: "https://a.example.com/hooks"}
		store.On("Select", ctx, "sub-1").Return(subscription.Subscription{}, errors.New("connection refused"))

		err := subscription.ApplySeed(ctx, store, []subscription.Subscription{sub}, log)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checking seed subscription sub-1")
	})
}
