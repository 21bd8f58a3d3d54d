// Package diag defines the core's internal diagnostic representation,
// kept distinct from the wire (protocol) diagnostic shape per spec.md 7 —
// the server package bridges between the two, the way the teacher's
// document.go convertAnalyzerDiagnostics bridges analyzer.Diagnostic to
// protocol.Diagnostic.
package diag

// Severity mirrors LSP DiagnosticSeverity values.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// Position is zero-based line/column (converted to/from UTF-16 columns at
// the wire boundary, spec.md 6).
type Position struct {
	Line, Column int
}

// Range is a half-open [Start, End) span.
type Range struct {
	Start, End Position
}

// Diagnostic is one user-visible issue attached to a file.
type Diagnostic struct {
	Range    Range
	Message  string
	Severity Severity
	Source   string
}

// Sink collects diagnostics for one package. A package has two sinks
// (spec.md "Diagnostic sinks" design note): the user-visible Diag and a
// Trash sink for speculative (completion/hover) compiles, so transient
// failures during those queries never perturb what the user sees.
type Sink struct {
	ByFile map[string][]Diagnostic
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{ByFile: make(map[string][]Diagnostic)}
}

// Clear removes every diagnostic for file (spec.md 4.6.3 step 1: "Remove
// existing diagnostics for the package").
func (s *Sink) Clear(file string) {
	delete(s.ByFile, file)
}

// ClearAll empties the sink.
func (s *Sink) ClearAll() {
	s.ByFile = make(map[string][]Diagnostic)
}

// Add appends a diagnostic for file.
func (s *Sink) Add(file string, d Diagnostic) {
	s.ByFile[file] = append(s.ByFile[file], d)
}

// For returns file's diagnostics.
func (s *Sink) For(file string) []Diagnostic {
	return s.ByFile[file]
}

// HasErrors reports whether any diagnostic in the sink is SeverityError.
func (s *Sink) HasErrors() bool {
	for _, ds := range s.ByFile {
		for _, d := range ds {
			if d.Severity == SeverityError {
				return true
			}
		}
	}
	return false
}
