package pipeline

// Incrementer hands out a fresh seed for every cross validation, so the
// optimizer doesn't overfit a single fold partition.
type Incrementer struct {
	i int64
}

// NewIncrementer returns an Incrementer whose first seed is start+1.
func NewIncrementer(start int64) *Incrementer {
	return &Incrementer{i: start}
}

// Increment advances the counter and returns the new value.
func (c *Incrementer) Increment() int64 {
	c.i++

	return c.i
}

// Value returns the last value handed out, or the start value.
func (c *Incrementer) Value() int64 {
	return c.i
}
