// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package syncx provides synchronization primitives beyond package sync.
package syncx

import "sync"

// KeyedMutex provides one mutex per key. The zero value is ready to use.
type KeyedMutex struct {
	m sync.Map // key -> *sync.Mutex
}

// Lock locks the mutex for key and returns its unlock function.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	v, _ := k.m.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
