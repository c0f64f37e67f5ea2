/* This program is free software. It comes without any warranty, to
 * the extent permitted by applicable law. You can redistribute it
 * and/or modify it under the terms of the Do What The Fuck You Want
 * To Public License, Version 2, as published by Sam Hocevar. See
 * http://sam.zoy.org/wtfpl/COPYING for more details. */

// Package backing provides memory providers suitable for handing to
// tlsf.Control.AddPool: plain heap-backed slices for ordinary Go programs,
// and anonymous mmap regions for callers that want pool memory outside the
// GC-scanned heap.
//
// The tlsf core never allocates its own backing memory. A Control only ever
// manages memory a caller explicitly hands it via AddPool.
// This package supplies that memory; it has no knowledge of block headers,
// free lists, or any other tlsf internals.
package backing
