package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcelsud/webhook-courier/subscription"
)

/* validate-seed - Standalone CLI tool to validate a subscriptions seed file
 * Usage: go run cmd/validate-seed/main.go [subscriptions.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	seedFile := "subscriptions.yaml"
	if len(os.Args) > 1 {
		seedFile = os.Args[1]
	}

	fmt.Printf("Validating seed file: %s\n", seedFile)
	fmt.Println(strings.Repeat("-", 50))

	subs, err := subscription.LoadSeed(seedFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d subscription(s):\n", len(subs))

	for i, sub := range subs {
		fmt.Printf("\n%d. Subscription: %s\n", i+1, sub.ID)
		fmt.Printf("   Target URL:  %s\n", sub.TargetURL)
		if sub.Secret != "" {
			fmt.Printf("   Secret:      (set)\n")
		} else {
			fmt.Printf("   Secret:      (none, signature check disabled)\n")
		}
		if sub.Filters() {
			fmt.Printf("   Event Types: %s\n", strings.Join(sub.EventTypes, ", "))
		} else {
			fmt.Printf("   Event Types: (all)\n")
		}
	}

	fmt.Printf("\n✓ All subscriptions are valid!\n")
	os.Exit(0)
}
