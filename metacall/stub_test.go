//go:build !metacall || !cgo

package metacall

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/polycall/errors"
)

func TestStub(t *testing.T) {
	if Available() {
		t.Fatal("stub reports available")
	}
	rt, err := New()
	if rt != nil {
		t.Fatal("stub returned a runtime")
	}
	var perr *errors.Error
	if !stderrors.As(err, &perr) || perr.Kind != errors.KindUnavailable {
		t.Fatalf("err = %v, want unavailable", err)
	}
}
