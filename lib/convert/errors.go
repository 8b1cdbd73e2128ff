// Copyright 2023 Silvio Böhler
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package convert

import "errors"

var (
	// ErrUnknownAccountType is returned for an account type without a
	// top-level category.
	ErrUnknownAccountType = errors.New("unknown account type")

	// ErrUnmappedAccount is returned when a split refers to an account
	// which has not been declared.
	ErrUnmappedAccount = errors.New("split references undeclared account")

	// ErrEmptyCommodity is returned when an empty symbol is normalized.
	ErrEmptyCommodity = errors.New("empty commodity symbol")
)
