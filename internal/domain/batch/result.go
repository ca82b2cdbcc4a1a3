package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of processing one item in a batch operation.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts item outcomes.
type Summary struct {
	Succeeded int
	Failed    int
	// FirstErr is the first item error in input order.
	FirstErr error
}

// Summarize counts the outcomes in results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.status == StatusOK {
			s.Succeeded++
			continue
		}
		s.Failed++
		if s.FirstErr == nil {
			s.FirstErr = r.err
		}
	}
	return s
}

// FailAll marks every id as failed with err.
func FailAll(ids []string, err error) []Result {
	out := make([]Result, len(ids))
	for i, id := range ids {
		out[i] = NewError(id, err)
	}
	return out
}
