package record

import "errors"

// ErrIndexOutOfRange indicates an out-of-bounds index into a record.
var ErrIndexOutOfRange = errors.New("record: index out of range")
