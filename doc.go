// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package okmongo is a low-level, allocation-conscious client library for the
// MongoDB wire protocol and the BSON document format it carries.  It provides
// a Writer that builds nested BSON documents into a single growable buffer
// with back-patched length prefixes, and a reentrant Reader that turns an
// arbitrary sequence of byte chunks into a stream of BSON events without ever
// buffering a whole document.
//
// ResponseReader understands the fixed 36-byte wire-protocol reply header
// and the framing of the documents that follow it, driving a Reader over
// each one in turn and extracting it directly into a structured Result --
// the ok/n/nModified fields and any write or write-concern errors an
// insert/update/delete command reply carries -- using a constant-memory
// trie matcher instead of a map lookup for the handful of field names it
// cares about. The command.go helpers build the OP_QUERY/OP_GET_MORE/
// OP_KILL_CURSORS messages a client sends the other direction.
//
// Networking and connection pooling are out of scope: callers supply their
// own byte slices (from a net.Conn, a TLS session, whatever) and drain
// Result values; this package only understands bytes already in hand.
//
// Concurrency
//
// Writer and Reader are single-owner, non-blocking objects: nothing in this
// package spawns goroutines, blocks, or shares mutable state across a Writer
// or Reader boundary. Driving a Reader from multiple goroutines concurrently
// is undefined; distinct Readers are fully independent.
//
// Testing
//
// The codec is tested for round-trip fidelity against literal byte vectors,
// for chunk invariance (feeding the same document through the parser split at
// every possible boundary yields identical events), and with go test -fuzz
// against arbitrary input seeded with valid documents to make sure the
// parser never panics or reads out of bounds.
package okmongo
