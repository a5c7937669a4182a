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

// Package pdf extracts per-page text from PDF files.
//
// Extraction runs through langchaingo's documentloaders.PDF. Large inputs are
// first spooled to a temporary file so the parser reads from disk instead of
// a second in-memory copy; the file is removed before Extract returns, on
// every path including a parser panic.
//
// Every failure wraps ErrExtraction:
//
//	pages, err := extractor.Extract(ctx, data)
//	if errors.Is(err, pdf.ErrExtraction) {
//	    // corrupt, encrypted, empty or text-less file
//	}
package pdf
