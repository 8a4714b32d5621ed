/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package abe

// Match reports whether the attributes satisfy the policy, that is
// whether the rows labeled by the attributes span [1, 0,..., 0] over
// Z_p. A malformed policy is never satisfied.
func (s *Scheme) Match(attributes []string, policy *AccessPolicy) bool {
	_, _, err := Reconstruct(attributes, policy, s.P)
	return err == nil
}
