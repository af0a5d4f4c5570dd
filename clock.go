package vni

import "time"

// nowMs samples a monotonic millisecond clock, anchored to when the Context
// was constructed. Using time.Since keeps this immune to wall-clock jumps.
func (c *Context) nowMs() int64 {
	return time.Since(c.processStart).Milliseconds()
}
