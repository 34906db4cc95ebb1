// Package speech provides Vietnamese text-to-speech for idiom practice.
//
// A [Provider] turns prepared text into audio. The HTTP proxy composes the
// upstream client with a [Breaker] and a [Cache] so repeated phrases are
// served from memory and a failing upstream is bypassed quickly, letting
// clients fall back to on-device speech synthesis.
package speech
