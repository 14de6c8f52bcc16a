package rules

// PipelineContext is the per-evaluation scratch state that flows through the
// rule pipeline. It is created per request and discarded after the pipeline
// returns; it is not safe for concurrent use.
type PipelineContext struct {
	tenantID string
	data     map[string]any
	metadata map[string]any
}

// NewPipelineContext creates a context for evaluating rules against the
// given target tenant.
func NewPipelineContext(tenantID string) *PipelineContext {
	return &PipelineContext{
		tenantID: tenantID,
		data:     make(map[string]any),
		metadata: make(map[string]any),
	}
}

// TenantID returns the target tenant the pipeline is evaluating for.
func (c *PipelineContext) TenantID() string { return c.tenantID }

// SetData stores a value in the data bag.
func (c *PipelineContext) SetData(key string, value any) { c.data[key] = value }

// Data returns a value from the data bag, or nil.
func (c *PipelineContext) Data(key string) any { return c.data[key] }

// AllData returns a copy of the data bag.
func (c *PipelineContext) AllData() map[string]any {
	out := make(map[string]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

// SetMetadata stores a value in the metadata bag.
func (c *PipelineContext) SetMetadata(key string, value any) { c.metadata[key] = value }

// Metadata returns a value from the metadata bag, or nil.
func (c *PipelineContext) Metadata(key string) any { return c.metadata[key] }
