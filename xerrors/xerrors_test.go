package xerrors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	base := New("base failure")

	wrapped := Wrap(base, "doing something")
	if !Is(wrapped, base) {
		t.Errorf("wrapped error should match base via Is")
	}
	if wrapped.Error() != "doing something: base failure" {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}

	if Wrap(nil, "noop") != nil {
		t.Errorf("Wrap(nil) should return nil")
	}
}

func TestWrapf(t *testing.T) {
	base := New("base failure")
	wrapped := Wrapf(base, "op %s failed", "publish")
	if wrapped.Error() != "op publish failed: base failure" {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
	if Wrapf(nil, "noop") != nil {
		t.Errorf("Wrapf(nil) should return nil")
	}
}

func TestCombine(t *testing.T) {
	e1 := New("first")
	e2 := New("second")

	if Combine() != nil {
		t.Errorf("Combine() should be nil")
	}
	if Combine(nil, nil) != nil {
		t.Errorf("Combine(nil, nil) should be nil")
	}
	if Combine(e1) != e1 {
		t.Errorf("Combine with one error should return it unchanged")
	}

	combined := Combine(e1, nil, e2)
	var multi *MultiError
	if !As(combined, &multi) {
		t.Fatalf("expected MultiError, got %T", combined)
	}
	if len(multi.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d", len(multi.Errors))
	}
	if !Is(combined, e1) || !Is(combined, e2) {
		t.Errorf("combined error should match both via Is")
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	if c.Err() != nil {
		t.Errorf("empty collector should return nil")
	}

	e1 := New("first")
	e2 := New("second")
	c.Collect(nil)
	c.Collect(e1)
	c.Collect(nil)
	c.Collect(e2)

	err := c.Err()
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Errorf("collector should retain all errors")
	}
}
