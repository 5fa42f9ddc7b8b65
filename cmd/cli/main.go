package main

import (
	"context"
	"fmt"
	"os"

	"github.com/marcelsud/webhook-courier/subscription"
	"github.com/marcelsud/webhook-courier/subscription/sqlite"
	"github.com/rs/zerolog"
)

/*
CLI - Exemplo de uso do repositório SQLite

Este CLI demonstra:
- Como conectar ao SQLite
- Como usar o sqlite.Repository
- Como usar o subscription.Service
- Como executar operações CRUD

Execute com:
  go run cmd/cli/main.go
*/

func main() {
	ctx := context.Background()
	log := zerolog.New(os.Stdout)

	repo, err := sqlite.NewRepository("courier-cli.db")
	if err != nil {
		fmt.Printf("❌ Error opening SQLite: %v\n", err)
		return
	}
	defer repo.Close(ctx)

	if err := repo.CreateTable(ctx); err != nil {
		fmt.Printf("❌ Error creating table: %v\n", err)
		return
	}
	fmt.Println("✅ Connected to SQLite!")

	directory := subscription.NewDirectory(repo, nil, 0, log)
	s := subscription.NewService(repo, directory, log)

	fmt.Println("\n📝 Creating a new subscription...")
	sub, err := s.Create(ctx, "https://example.com/hooks", "s3cr3t", []string{"order.created", "order.paid"})
	if err != nil {
		fmt.Printf("❌ Error creating subscription: %v\n", err)
		return
	}

	fmt.Println("✅ Subscription created successfully!")
	fmt.Printf("   ID:          %s\n", sub.ID)
	fmt.Printf("   Target URL:  %s\n", sub.TargetURL)
	fmt.Printf("   Event Types: %v\n", sub.EventTypes)

	fmt.Println("\n📚 All subscriptions:")
	subs, err := s.List(ctx, 0, 50)
	if err != nil {
		fmt.Printf("❌ Error listing subscriptions: %v\n", err)
		return
	}
	for _, sb := range subs {
		fmt.Printf("   [%s] %s %v\n", sb.ID, sb.TargetURL, sb.EventTypes)
	}

	fmt.Printf("\n✏️  Updating subscription %s...\n", sub.ID)
	updated, err := s.Update(ctx, sub.ID, "https://example.com/hooks/v2", "s3cr3t", []string{"order.created"})
	if err != nil {
		fmt.Printf("❌ Error updating subscription: %v\n", err)
		return
	}
	fmt.Printf("✅ Subscription updated! New target: %s\n", updated.TargetURL)

	fmt.Printf("\n🗑️  Deleting subscription %s...\n", sub.ID)
	if err := s.Delete(ctx, sub.ID); err != nil {
		fmt.Printf("❌ Error deleting subscription: %v\n", err)
		return
	}
	fmt.Println("✅ Subscription deleted!")

	fmt.Println("\n✅ CLI completed successfully!")
}
