package harness

// Result is the outcome of running one case.
type Result struct {
	// Name is the case name.
	Name string `json:"name"`

	// Pass indicates every expectation matched.
	Pass bool `json:"pass"`

	// SQL is the produced fragment, empty on failure.
	SQL string `json:"sql,omitempty"`

	// ErrorKind is the failure kind, empty on success.
	ErrorKind string `json:"error_kind,omitempty"`

	// Digest is the payload digest.
	Digest string `json:"digest"`

	// Errors contains mismatch descriptions.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Outcome renders the result the way golden files store it.
func (r *Result) Outcome() string {
	if r.ErrorKind != "" {
		return "error: " + r.ErrorKind + "\n"
	}
	return "sql: " + r.SQL + "\n"
}
