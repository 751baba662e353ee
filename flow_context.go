package tlshake

// FlowContext carries the outcome of a single call into the engine.
// The first error reported sticks, later ones are dropped so the root
// cause is what the caller sees.
type FlowContext struct {
	err error
}

// NewFlowContext returns an empty context ready to be passed into the
// engine.
func NewFlowContext() *FlowContext {
	return &FlowContext{}
}

// Fail records err if no earlier error was recorded.
func (c *FlowContext) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Failed reports whether an error has been recorded.
func (c *FlowContext) Failed() bool {
	return c.err != nil
}

// Err returns the first recorded error, or nil.
func (c *FlowContext) Err() error {
	return c.err
}
