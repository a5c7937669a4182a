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

// Package textsplit cuts page text into overlapping fragments for embedding.
//
// The Splitter places each cut at the last paragraph break, sentence end or
// whitespace that fits in the window, in that order of preference, and falls
// back to a hard cut. Every fragment after the first starts with exactly
// ChunkOverlap runes taken from the end of the fragment before it, so
// Reconstruct can rebuild the input byte for byte.
//
// Splitter implements langchaingo's textsplitter.TextSplitter and can be
// passed to textsplitter.SplitDocuments directly; SplitPages does that and
// numbers the fragments.
package textsplit
