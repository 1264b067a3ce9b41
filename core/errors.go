// Copyright 2025 Substrate Systems
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

package core

import "errors"

// Domain errors
var (
	// ErrUnsupportedType indicates a filename extension outside the
	// classification table. Rejected before any storage I/O.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrInvalidCategory indicates a Category value outside the defined set.
	ErrInvalidCategory = errors.New("invalid content category")

	// ErrEmptyContent indicates an upload with no bytes.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyIdentity indicates a missing uploader identity.
	ErrEmptyIdentity = errors.New("uploader identity cannot be empty")
)
