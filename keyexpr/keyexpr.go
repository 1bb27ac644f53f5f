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

// Package keyexpr implements the string-algebra used to decide whether two
// hierarchical topic names share a concrete key (intersection), and whether
// one denotes a superset of another (inclusion). It is pure and side-effect
// free: no I/O, no locking, no package-level state.
package keyexpr

import (
	"fmt"
	"strings"
)

// AdminPrefix isolates management topics from application topics. A key
// expression whose textual form begins with this prefix never matches one
// that doesn't (see Matches), regardless of what Intersect would say.
const AdminPrefix = "/@/"

// ReservedChars lists the characters that MUST NOT appear in a valid
// concrete (wildcard-free) key. Only '*' and '**' are defined wildcards;
// the rest are reserved for future use.
const ReservedChars = "*?[]#"

// KeyExpr is a key expression: either an inline character sequence (Scope
// == 0) or a scoped form where Scope refers to a previously registered
// expression whose body lives in an external registry and must be
// substituted before matching. Suffix may be empty.
type KeyExpr struct {
	Scope  uint64 // 0 means global / no scope
	Suffix string
}

// New builds an unscoped KeyExpr from a plain string.
func New(s string) KeyExpr {
	return KeyExpr{Suffix: s}
}

// NewScoped builds a scoped KeyExpr. A suffix may still be attached; it is
// appended to whatever the scope resolves to at match time.
func NewScoped(scope uint64, suffix string) KeyExpr {
	return KeyExpr{Scope: scope, Suffix: suffix}
}

// HasSuffix reports whether this expression carries a non-empty suffix.
func (k KeyExpr) HasSuffix() bool {
	return k.Suffix != ""
}

// String returns the plain textual form of the expression. It fails if the
// expression is scoped, since a scoped expression can't be rendered without
// resolving the scope through an external registry first.
func (k KeyExpr) String() (string, error) {
	if k.Scope != 0 {
		return "", &ScopedKeyExprError{KeyExpr: k}
	}
	return k.Suffix, nil
}

// MustString is like String but panics on error. Use only where the caller
// already knows the expression is unscoped.
func (k KeyExpr) MustString() string {
	s, err := k.String()
	if err != nil {
		panic(err)
	}
	return s
}

// ID returns the scope identifier. It fails if the expression carries a
// suffix, mirroring the Rust original's try_as_id: a suffixed expression
// can't be collapsed back down to a bare scope id.
func (k KeyExpr) ID() (uint64, error) {
	if k.HasSuffix() {
		return 0, &SuffixedKeyExprError{KeyExpr: k}
	}
	return k.Scope, nil
}

// IDAndSuffix returns the raw (scope, suffix) pair with no validation,
// useful for callers that are about to resolve the scope themselves.
func (k KeyExpr) IDAndSuffix() (uint64, string) {
	return k.Scope, k.Suffix
}

// WithSuffix appends more text to the expression's suffix.
func (k KeyExpr) WithSuffix(suffix string) KeyExpr {
	k.Suffix = k.Suffix + suffix
	return k
}

// IsAdmin reports whether s begins with AdminPrefix.
func IsAdmin(s string) bool {
	return strings.HasPrefix(s, AdminPrefix)
}

// Lookup resolves a non-zero scope id to the inline expression body it was
// registered under. Implementations live outside this package (see
// sessionreg.Registry) since the scope table is a session-level concern,
// not part of the matching core.
type Lookup func(scope uint64) (string, bool)

// Resolve substitutes k's scope (if any) through lookup and returns the
// fully inline textual form, ready to be passed to Intersect/Include/
// Matches. If k is already unscoped, lookup is never called.
func Resolve(k KeyExpr, lookup Lookup) (string, error) {
	if k.Scope == 0 {
		return k.Suffix, nil
	}
	if lookup == nil {
		return "", fmt.Errorf("cannot resolve scoped key expression %d: no lookup provided", k.Scope)
	}
	base, ok := lookup(k.Scope)
	if !ok {
		return "", fmt.Errorf("cannot resolve scoped key expression: unknown scope %d", k.Scope)
	}
	return base + k.Suffix, nil
}

// Valid reports whether s contains none of the reserved characters,
// including the wildcards '*' and '**'. It is intended for
// concrete keys (publications), not key expressions (which legitimately
// contain '*').
func Valid(s string) bool {
	for _, r := range s {
		if strings.ContainsRune(ReservedChars, r) {
			return false
		}
	}
	return true
}
