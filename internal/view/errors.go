package view

// EmptyResultWarning is non-fatal: the filter or grouping produced no rows and
// downstream results are zero-valued.
type EmptyResultWarning struct {
	Operation string
}

func (w *EmptyResultWarning) Error() string {
	if w.Operation == "" {
		return "empty result: no rows match"
	}
	return "empty result: no rows match for " + w.Operation
}
