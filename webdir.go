// Copyright 2015 Matthew Holt and The Caddy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package webdir implements a static HTTP/HTTPS file server: safe path
// resolution, conditional and ranged GET/HEAD handling, multipart/byteranges
// responses, and streaming directory listings.
package webdir

import (
	"fmt"
	"path/filepath"
)

// WebDir is the immutable, shared configuration for one served directory
// tree. It is constructed once and referenced by every request; nothing
// about it changes for the lifetime of the process.
type WebDir struct {
	// root is the canonical absolute directory this WebDir serves.
	root string

	// index controls whether a directory request is satisfied by
	// <dir>/index.html (when it exists as a regular file) instead of a
	// directory listing.
	index bool
}

// New builds a WebDir rooted at root. A relative root is rejected with an
// error; an absolute one is cleaned. New does not check that root exists
// or is a directory.
func New(root string, index bool) (*WebDir, error) {
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("webdir: root must be absolute: %q", root)
	}
	return &WebDir{
		root:  filepath.Clean(root),
		index: index,
	}, nil
}

// Root returns the canonical absolute directory this WebDir serves.
func (w *WebDir) Root() string { return w.root }

// Index reports whether directory requests should be satisfied by
// index.html when present.
func (w *WebDir) Index() bool { return w.index }
