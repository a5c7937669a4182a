// Copyright 2025 Poiesic Systems
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

package session

import (
	"context"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/tmc/langchaingo/vectorstores"
)

// Router sends personal scopes to one IndexManager and the shared scope to another.
type Router struct {
	personal IndexManager
	shared   IndexManager
}

// NewRouter creates a Router. A nil shared manager routes everything to personal.
func NewRouter(personal, shared IndexManager) (*Router, error) {
	if personal == nil {
		return nil, ErrIndexManagerRequired
	}
	if shared == nil {
		shared = personal
	}
	return &Router{personal: personal, shared: shared}, nil
}

// VectorStore implements IndexManager.
func (r *Router) VectorStore(ctx context.Context, scope core.IndexScope, owner string) (vectorstores.VectorStore, error) {
	if scope == core.ScopeShared {
		return r.shared.VectorStore(ctx, scope, owner)
	}
	return r.personal.VectorStore(ctx, scope, owner)
}
