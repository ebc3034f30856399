// Package client is the entry point for sending prompts. A [Client] wraps one
// [ai.ChatAdapter] with an immutable middleware chain and exposes the three
// call shapes: [Client.Chat] for text prompts, [Client.ChatWithImage] for
// vision prompts and [Client.SubmitBatch]/[Client.PollBatch] for vendor batches.
//
// The primary entry point is [New], which accepts an adapter and functional
// options ([WithObserver], [WithMiddleware]). For typed decoding of the output,
// use [RequestAs].
package client
