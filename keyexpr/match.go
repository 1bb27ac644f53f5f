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

import "strings"

// Both Intersect and Include are built from one shared recursive template,
// instantiated twice: once at chunk level (matching literal characters
// within a single '/'-delimited segment) and once at resource level
// (matching whole segments, where '**' may span '/'). Go has no macros, so
// the two levels are plain function values passed as primitives instead of
// being generated from a single macro body.

// primitives bundles the three functions a matcher needs to know about one
// level (chunk or resource) of the key expression grammar.
type primitives struct {
	end  func(s string) bool
	wild func(s string) bool
	next func(s string) string
}

// chunk-level primitives: operate one character at a time within a segment.
func cend(s string) bool   { return s == "" || s[0] == '/' }
func cwild(s string) bool  { return strings.HasPrefix(s, "*") }
func cnext(s string) string { return s[1:] }

// cequal compares the leading character of two chunk positions. Both sides
// are known non-end at the call site, so indexing [0:1] is always safe.
func cequal(s1, s2 string) bool {
	return strings.HasPrefix(s1, s2[0:1])
}

var chunkPrims = primitives{end: cend, wild: cwild, next: cnext}

// resource-level primitives: operate one '/'-delimited chunk at a time.
func rend(s string) bool  { return s == "" }
func rwild(s string) bool { return strings.HasPrefix(s, "**/") || s == "**" }
func rnext(s string) string {
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		return s[idx+1:]
	}
	return ""
}

var resourcePrims = primitives{end: rend, wild: rwild, next: rnext}

// intersectRec is the shared template behind DEFINE_INTERSECT in the
// original: both ended -> true; a wildcard opposite an ended side advances
// past the wildcard; a wildcard on either side branches between consuming
// it and advancing the other side one position; one ended without the
// other -> false; otherwise the elem predicate must hold and both sides
// advance.
func intersectRec(p primitives, elem func(a, b string) bool, a, b string) bool {
	switch {
	case p.end(a) && p.end(b):
		return true
	case p.wild(a) && p.end(b):
		return intersectRec(p, elem, p.next(a), b)
	case p.end(a) && p.wild(b):
		return intersectRec(p, elem, a, p.next(b))
	case p.wild(a):
		if p.end(p.next(a)) {
			return true // tail wildcard always satisfies
		}
		if intersectRec(p, elem, p.next(a), b) {
			return true
		}
		return intersectRec(p, elem, a, p.next(b))
	case p.wild(b):
		if p.end(p.next(b)) {
			return true
		}
		// Same recursive shape as the wild(a) branch above: intersect is
		// symmetric, so advancing "a" past one position is tried first,
		// falling back to advancing "b" past the wildcard.
		if intersectRec(p, elem, p.next(a), b) {
			return true
		}
		return intersectRec(p, elem, a, p.next(b))
	case p.end(a) || p.end(b):
		return false
	case elem(a, b):
		return intersectRec(p, elem, p.next(a), p.next(b))
	default:
		return false
	}
}

// chunkIntersect is the resource level's elem predicate: do two chunks
// intersect. It rejects a (ended, non-ended) pair up front so that a bare '*' can
// never span the '/' boundary into the next chunk.
func chunkIntersect(c1, c2 string) bool {
	if cend(c1) != cend(c2) {
		return false
	}
	return intersectRec(chunkPrims, cequal, c1, c2)
}

// Intersect returns true iff there exists some concrete wildcard-free key
// matched by both a and b.
func Intersect(a, b string) bool {
	return intersectRec(resourcePrims, chunkIntersect, a, b)
}

// includeRec is the shared template behind DEFINE_INCLUDE. It is
// asymmetric: a wildcard on the "this" (super) side may swallow
// arbitrarily much of "sub", but a wildcard appearing on the sub side can
// never be included by a literal position on this.
func includeRec(p primitives, elem func(this, sub string) bool, this, sub string) bool {
	switch {
	case p.end(this) && p.end(sub):
		return true
	case p.wild(this) && p.end(sub):
		return includeRec(p, elem, p.next(this), sub)
	case p.wild(this):
		if p.end(p.next(this)) {
			return true
		}
		if includeRec(p, elem, p.next(this), sub) {
			return true
		}
		return includeRec(p, elem, this, p.next(sub))
	case p.wild(sub):
		return false
	case p.end(this) || p.end(sub):
		return false
	case elem(this, sub):
		return includeRec(p, elem, p.next(this), p.next(sub))
	default:
		return false
	}
}

func chunkInclude(this, sub string) bool {
	return includeRec(chunkPrims, cequal, this, sub)
}

// Include returns true iff every concrete key matched by sub is also
// matched by super.
func Include(super, sub string) bool {
	return includeRec(resourcePrims, chunkInclude, super, sub)
}

// Matches is Intersect, except that expressions on either side of the
// admin namespace boundary (AdminPrefix) never match each other, even if
// Intersect would otherwise say they overlap.
func Matches(a, b string) bool {
	if IsAdmin(a) != IsAdmin(b) {
		return false
	}
	return Intersect(a, b)
}
