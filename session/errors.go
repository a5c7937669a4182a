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

import "errors"

var (
	// ErrNoActiveSession is returned when a user has not logged in.
	ErrNoActiveSession = errors.New("no active session")

	// ErrUserRequired is returned when a session is requested for an empty user.
	ErrUserRequired = errors.New("user required")

	// ErrIndexManagerRequired is returned when a router has no personal backend.
	ErrIndexManagerRequired = errors.New("index manager required")
)
