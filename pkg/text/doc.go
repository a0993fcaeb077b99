// Package text exposes a small public API for getting chat replies from
// the services configured in a kernagent kernel config.
//
// Typical usage is to construct a FullResponse querier and issue a chat
// style request:
//
//	ctx := context.Background()
//	q := text.NewFullResponseQuerier(text.WithServiceID("claude"))
//	if err := q.Setup(ctx); err != nil {
//	    // handle error
//	}
//	chat := models.Chat{ /* populate chat with messages */ }
//	reply, err := q.Query(ctx, chat)
//	if err != nil {
//	    // handle error
//	}
//	_ = reply
//
// Callers with their own registry can skip the config entirely with
// WithRegistry.
package text
