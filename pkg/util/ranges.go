// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBitRange parses a comma-separated bit selection such as "0,2,4-7",
// where a-b denotes the inclusive contiguous range, into a set of offsets.
func ParseBitRange(str string) (map[uint]bool, error) {
	result := make(map[uint]bool)
	//
	for _, token := range strings.Split(str, ",") {
		token = strings.TrimSpace(token)
		//
		if token == "" {
			continue
		}
		//
		if start, end, ok := strings.Cut(token, "-"); ok {
			first, err := strconv.ParseUint(start, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid bit range %q: %w", token, err)
			}
			//
			last, err := strconv.ParseUint(end, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid bit range %q: %w", token, err)
			}
			//
			if first > last {
				return nil, fmt.Errorf("invalid bit range %q: start exceeds end", token)
			}
			//
			for i := first; i <= last; i++ {
				result[uint(i)] = true
			}
			//
			continue
		}
		//
		offset, err := strconv.ParseUint(token, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid bit offset %q: %w", token, err)
		}
		//
		result[uint(offset)] = true
	}
	//
	return result, nil
}

// ParseNamedBitRanges parses semicolon-separated register selections of the
// form "name1=range;name2=range", e.g. "plaintext=0,2,4-7;iv=0-63".
func ParseNamedBitRanges(str string) (map[string]map[uint]bool, error) {
	result := make(map[string]map[uint]bool)
	//
	for _, block := range strings.Split(str, ";") {
		block = strings.TrimSpace(block)
		//
		if block == "" {
			continue
		}
		//
		name, rangeStr, ok := strings.Cut(block, "=")
		if !ok {
			return nil, fmt.Errorf("invalid selection %q: expected name=range", block)
		}
		//
		bits, err := ParseBitRange(rangeStr)
		if err != nil {
			return nil, err
		}
		//
		result[name] = bits
	}
	//
	return result, nil
}
