package service

import (
	"testing"

	"go.uber.org/goleak"
)

// BulkGenerate fans out goroutines; every one must be joined before return.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
