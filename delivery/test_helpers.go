package delivery

import "github.com/stretchr/testify/mock"

// MatchWebhook creates a custom matcher for webhook arguments in mocks
func MatchWebhook(matcher func(Webhook) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchAttempt creates a custom matcher for attempt arguments in mocks
func MatchAttempt(matcher func(Attempt) bool) interface{} {
	return mock.MatchedBy(matcher)
}
