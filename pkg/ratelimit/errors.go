// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import "errors"

var (
	// ErrRateLimitExceeded is returned when a rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	ErrInvalidIdentifier = errors.New("identifier cannot be empty")
)

// RateLimitError carries the check result that denied a request.
type RateLimitError struct {
	Message string
	Result  *CheckResult
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimitExceeded
}

// NewRateLimitError creates a new RateLimitError from a CheckResult.
func NewRateLimitError(result *CheckResult) *RateLimitError {
	message := "rate limit exceeded"
	if result != nil && result.Reason != "" {
		message = result.Reason
	}
	return &RateLimitError{Message: message, Result: result}
}
