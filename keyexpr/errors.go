// Meshfabric
// Copyright (C) 2019-2026+ The Meshfabric project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package keyexpr

import "fmt"

// ScopedKeyExprError is returned when code tries to convert a scoped
// KeyExpr straight to a plain string without resolving the scope first.
type ScopedKeyExprError struct {
	KeyExpr KeyExpr
}

func (e *ScopedKeyExprError) Error() string {
	return fmt.Sprintf("scoped key expression (scope %d, suffix %q) has no plain string form", e.KeyExpr.Scope, e.KeyExpr.Suffix)
}

// SuffixedKeyExprError is returned when code tries to convert a suffixed
// KeyExpr to a bare scope id.
type SuffixedKeyExprError struct {
	KeyExpr KeyExpr
}

func (e *SuffixedKeyExprError) Error() string {
	return fmt.Sprintf("suffixed key expression (scope %d, suffix %q) has no bare id form", e.KeyExpr.Scope, e.KeyExpr.Suffix)
}
