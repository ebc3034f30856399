// Package utils provides shared low-level helpers used by the provider
// adapters: synchronous JSON and multipart HTTP round-trips that map vendor
// failures to the ai error kinds ([DoPostSync], [DoGetSync], [DoGetRaw],
// [DoPostMultipart]), string helpers for log-safe output, and [Ptr].
package utils
