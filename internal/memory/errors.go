package memory

import "errors"

// ErrPersist wraps every snapshot write failure. When it is returned the
// mutation that triggered the write has already been rolled back in memory.
var ErrPersist = errors.New("memory: snapshot write failed")
