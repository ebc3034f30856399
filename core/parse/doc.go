// Package parse turns raw model output text into structured values.
//
// [Output] is the lenient entry point used by the normalizer: only text that is
// itself a JSON object or array is decoded, everything else comes back
// unchanged. With repair enabled, malformed JSON goes through jsonrepair first.
// [As] is the strict, typed variant; it also strips markdown code fences.
package parse
