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

package errwrap

import (
	"fmt"
	"testing"
)

func TestWrapfNil(t *testing.T) {
	if err := Wrapf(nil, "whatever: %d", 42); err != nil {
		t.Errorf("expected nil result, got: %v", err)
	}
}

func TestWrapfReal(t *testing.T) {
	base := fmt.Errorf("base")
	err := Wrapf(base, "context")
	if err == nil {
		t.Fatal("expected a non-nil result")
	}
	if got := err.Error(); got != "context: base" {
		t.Errorf("got %q", got)
	}
}

func TestAppendBothNil(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Errorf("expected nil result")
	}
}

func TestAppendRetNilErrReal(t *testing.T) {
	e := fmt.Errorf("e")
	if got := Append(nil, e); got != e {
		t.Errorf("expected Append to pass through the non-nil error unchanged")
	}
}

func TestAppendRetRealErrNil(t *testing.T) {
	ret := fmt.Errorf("ret")
	if got := Append(ret, nil); got != ret {
		t.Errorf("expected Append to pass through the existing error unchanged")
	}
}

func TestAppendBothReal(t *testing.T) {
	ret := fmt.Errorf("ret")
	e := fmt.Errorf("e")
	got := Append(ret, e)
	if got == nil {
		t.Fatal("expected a non-nil result")
	}
}

func TestStringNil(t *testing.T) {
	if s := String(nil); s != "" {
		t.Errorf("got %q, want empty string", s)
	}
}

func TestStringReal(t *testing.T) {
	if s := String(fmt.Errorf("boom")); s != "boom" {
		t.Errorf("got %q, want boom", s)
	}
}
