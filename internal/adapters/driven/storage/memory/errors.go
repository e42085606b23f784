package memory

import "errors"

var errWriteLimit = errors.New("memory: write limit reached")
