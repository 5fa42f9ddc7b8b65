package subscription

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

/* Seed loading registers subscriptions from a YAML file at startup.
 * Useful for static deployments where targets are known ahead of time.
 */

// SeedFile represents the structure of the subscriptions YAML file
type SeedFile struct {
	Subscriptions []SeedEntry `yaml:"subscriptions"`
}

// SeedEntry represents a single subscription in the YAML file
type SeedEntry struct {
	ID         string   `yaml:"id"`
	TargetURL  string   `yaml:"target_url"`
	Secret     string   `yaml:"secret"`
	EventTypes []string `yaml:"event_types"`
}

// LoadSeed reads and parses the subscriptions YAML file.
// Entries without an id get a generated one.
func LoadSeed(filePath string) ([]Subscription, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing seed YAML: %w", err)
	}

	now := time.Now().UTC()
	subs := make([]Subscription, 0, len(file.Subscriptions))
	for _, entry := range file.Subscriptions {
		id := entry.ID
		if id == "" {
			id = uuid.New().String()
		}

		sub := Subscription{
			ID:         id,
			TargetURL:  entry.TargetURL,
			Secret:     entry.Secret,
			EventTypes: entry.EventTypes,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := sub.Validate(); err != nil {
			return nil, fmt.Errorf("validating seed subscription %s: %w", id, err)
		}
		subs = append(subs, sub)
	}

	return subs, nil
}

// ApplySeed inserts seed subscriptions that are not already registered.
// Existing rows are left untouched so operator edits survive restarts.
func ApplySeed(ctx context.Context, store Store, subs []Subscription, log zerolog.Logger) error {
	for _, sub := range subs {
		_, err := store.Select(ctx, sub.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("checking seed subscription %s: %w", sub.ID, err)
		}

		if err := store.Insert(ctx, sub); err != nil {
			return fmt.Errorf("inserting seed subscription %s: %w", sub.ID, err)
		}
		log.Info().Str("subscription_id", sub.ID).Str("target_url", sub.TargetURL).Msg("seed subscription registered")
	}
	return nil
}
