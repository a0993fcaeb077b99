// agent bridges a generic multi-agent message flow to a chat completion
// kernel.
//
// A ChatCompletionAgent holds nothing but its name and the id of the
// service it prefers. For every call it converts the incoming messages
// into a chat history, asks the supplied Registry for a chat completion
// service plus execution settings, starts a streamed completion and returns
// the first reply produced. The remainder of the stream is cancelled.
//
//	a := agent.New("planner", agent.WithServiceID("gpt"))
//	reply, err := a.GenerateReply(ctx, msgs, kernel, models.NewArguments())
package agent
