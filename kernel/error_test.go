package kernel

import "testing"

func TestKernelError(t *testing.T) {
	err := &Error{
		Module:  "hal",
		Message: "no framebuffer",
	}

	if err.Error() != err.Message {
		t.Fatalf("expected to err.Error() to return %q; got %q", err.Message, err.Error())
	}

	var iface error = err
	if got := iface.Error(); got != "no framebuffer" {
		t.Fatalf("expected error interface to report %q; got %q", "no framebuffer", got)
	}
}
