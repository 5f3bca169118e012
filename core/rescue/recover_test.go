package rescue

import (
	"testing"
)

func division(a float64, b float64) float64 {
	defer Recover()

	if b == 0 {
		panic("division by zero")
	}

	return a / b
}

func TestRecover(t *testing.T) {
	division(1, 0)
}

func TestRecoverRunsCleanups(t *testing.T) {
	cleaned := false
	func() {
		defer Recover(func() { cleaned = true })
		panic("boom")
	}()
	if !cleaned {
		t.Fatal("cleanup was not run")
	}
}
