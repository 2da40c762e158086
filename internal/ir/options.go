package ir

// ModuleCallOptions is the normalized form of a `with` clause (spec.md
// §3, §4.8): every field is optional because a call may set any subset
// of the accepted option names. Produced by internal/options from the
// raw ast.Option list carried on a ModuleCall node.
type ModuleCallOptions struct {
	Retry          *int
	TimeoutMs      *int64
	DelayMs        *int64
	Backoff        string
	FallbackNodeID string
	CacheMs        *int64
	CacheBackend   string
	ThrottleCount  *int
	ThrottlePerMs  *int64
	Concurrency    *int
	OnError        string
	Lazy           *bool
	Priority       *int
	Batch          *int
	BatchTimeoutMs *int64
	Window         string
	CheckpointMs   *int64
	Join           string
}

// IsEmpty reports whether no option was set, per spec.md §4.7 ("if
// options are non-empty, store them under module_id").
func (o *ModuleCallOptions) IsEmpty() bool {
	if o == nil {
		return true
	}
	return *o == ModuleCallOptions{}
}
