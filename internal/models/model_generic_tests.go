// This package contains test intended to be used by the implementations of the
// ChatCompleter interface
package models

import (
	"context"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

// ChatCompleter_Test ensures that a stream started by s is closed once the
// context is cancelled, so that a consumer which only reads the first reply
// never leaks the producer.
func ChatCompleter_Test(t *testing.T, s ChatCompleter) {
	t.Helper()
	testboil.ReturnsOnContextCancel(t, func(ctx context.Context) {
		ch, err := s.StreamCompletions(ctx, pub_models.Chat{
			Messages: []pub_models.Message{pub_models.NewUserMessage("hello")},
		}, &pub_models.Settings{ServiceID: s.ServiceID()})
		if err != nil {
			return
		}
		for range ch {
		}
	}, time.Second)
}
