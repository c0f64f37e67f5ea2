/* This program is free software. It comes without any warranty, to
 * the extent permitted by applicable law. You can redistribute it
 * and/or modify it under the terms of the Do What The Fuck You Want
 * To Public License, Version 2, as published by Sam Hocevar. See
 * http://sam.zoy.org/wtfpl/COPYING for more details. */

// Package tlsfwrap adapts a *tlsf.Control into a synchronized
// malloc/calloc/memalign/realloc/free surface, the Go analogue of the
// embedded tlsf-malloc.c wrapper that brackets every call with
// irq_disable/irq_restore.
package tlsfwrap

import "sync"

// Token is whatever state Disable needs to hand back to Restore in order to
// undo it, the Go analogue of the saved interrupt mask irq_disable()
// returns in the source. Guards that don't need to save anything (a plain
// mutex, for instance) can use the zero Token.
type Token any

// InterruptGuard brackets a critical section, generalizing the source's
// irq_disable/irq_restore pair to any host-supplied mutual exclusion
// primitive: interrupt masking on bare metal, a mutex on a hosted,
// multi-goroutine build, or nothing at all for a single-goroutine caller.
//
// Disable must not be called recursively on the same goroutine without an
// intervening Restore, and every Disable must be paired with exactly one
// Restore of the token it returned, even if the guarded operation panics.
// Wrapper's Realloc, Free and Walk defer Restore immediately after Disable;
// its Malloc, Calloc and Memalign call Restore directly once the core call
// returns, without a defer.
type InterruptGuard interface {
	Disable() Token
	Restore(Token)
}

// NoGuard is a no-op InterruptGuard for single-goroutine use, where the
// caller already knows no concurrent access to the wrapped Control is
// possible. Using it from more than one goroutine is a data race.
type NoGuard struct{}

func (NoGuard) Disable() Token { return nil }
func (NoGuard) Restore(Token)  {}

// MutexGuard is an InterruptGuard backed by a sync.Mutex, for sharing one
// Control across multiple goroutines. Its token carries no information;
// Restore just unlocks.
type MutexGuard struct {
	mu sync.Mutex
}

func (g *MutexGuard) Disable() Token {
	g.mu.Lock()
	return nil
}

func (g *MutexGuard) Restore(Token) {
	g.mu.Unlock()
}
