// Package harness orchestrates a golden-test session: it collects every
// declared reference-data requirement, drives the oracle once, and serves
// validated records to individual tests.
package harness

import (
	"context"
	"fmt"
	"sync"

	"epqref/internal/cache"
	"epqref/internal/oracle"
	"epqref/internal/refschema"
	"epqref/internal/request"
	"epqref/internal/validator"
)

// State tracks the session's one-way lifecycle.
type State int

// Session states. Populate moves Idle through Scanning and Batching to
// Done (or DoneEmpty when nothing was declared); the session then takes no
// further action for the rest of the run.
const (
	StateIdle State = iota
	StateScanning
	StateBatching
	StateDone
	StateDoneEmpty
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateBatching:
		return "batching"
	case StateDone:
		return "done"
	case StateDoneEmpty:
		return "done-empty"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Declaration is one test's oracle dependency: a module name plus the
// concrete argument combinations the test will run with.
type Declaration struct {
	Module string
	Combos [][]request.Pair
}

// MissingDeclarationError reports a fetch for a module no test declared.
// Calling the retrieval path without opting in is a usage error.
type MissingDeclarationError struct {
	Module string
}

func (e *MissingDeclarationError) Error() string {
	return fmt.Sprintf("module %q was never declared; register it before fetching reference data", e.Module)
}

// ErrSessionStarted rejects declarations that arrive after collection.
var ErrSessionStarted = fmt.Errorf("session already populated; declarations are collection-time only")

// ErrNotPopulated rejects fetches before Populate has run.
var ErrNotPopulated = fmt.Errorf("session not populated; call Populate before fetching")

// Session ties the request model, oracle adapter, cache, and validator
// together for one test run. It is constructed once per session and
// passed explicitly; there is no package-global state.
type Session struct {
	mu     sync.Mutex
	state  State
	runner oracle.BatchRunner
	cache  *cache.Cache
	valid  *validator.Validator
	decls  map[string]*Declaration
}

// NewSession builds an idle session.
func NewSession(runner oracle.BatchRunner, c *cache.Cache, registry *refschema.Registry) *Session {
	return &Session{
		state:  StateIdle,
		runner: runner,
		cache:  c,
		valid:  validator.New(registry),
		decls:  make(map[string]*Declaration),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Register records one test's declaration. Declarations for the same
// module accumulate; duplicate combinations are deduplicated later by
// request canonicalization.
func (s *Session) Register(d Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrSessionStarted
	}
	if d.Module == "" {
		return fmt.Errorf("declaration missing module name")
	}
	if existing, ok := s.decls[d.Module]; ok {
		existing.Combos = append(existing.Combos, d.Combos...)
		return nil
	}
	decl := d
	s.decls[d.Module] = &decl
	return nil
}

// Populate runs the session's one oracle batch: scan declarations into a
// deduplicated request set, invoke the oracle once, and bulk-load the
// cache. With nothing declared the oracle is never launched. Any failure
// aborts the whole session; an oracle failure is not attributable to a
// single test.
func (s *Session) Populate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrSessionStarted
	}

	s.state = StateScanning
	reqs, err := s.scanLocked()
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		s.state = StateDoneEmpty
		return nil
	}

	s.state = StateBatching
	tables, err := s.runner.RunBatch(ctx, reqs)
	if err != nil {
		return err
	}
	if err := s.cache.Populate(tables); err != nil {
		return err
	}
	s.state = StateDone
	return nil
}

// Requests returns the deduplicated request set the session would (or
// did) batch, in canonical order. The report writer uses it.
func (s *Session) Requests() ([]request.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanLocked()
}

// scanLocked builds one Request per declared combination; the map keyed by
// canonical wire line performs the dedup.
func (s *Session) scanLocked() ([]request.Request, error) {
	seen := make(map[string]request.Request)
	for _, decl := range s.decls {
		for _, combo := range decl.Combos {
			req, err := request.New(decl.Module, combo)
			if err != nil {
				return nil, err
			}
			seen[req.Key()] = req
		}
	}
	reqs := make([]request.Request, 0, len(seen))
	for _, req := range seen {
		reqs = append(reqs, req)
	}
	request.SortByKey(reqs)
	return reqs, nil
}

// Fetch reconstructs the request for one test invocation, looks it up in
// the session cache, and returns schema-validated records. The
// reconstruction goes through the same canonicalization as collection, so
// declared argument order never matters.
func (s *Session) Fetch(module string, pairs []request.Pair) ([]validator.Record, error) {
	s.mu.Lock()
	_, declared := s.decls[module]
	state := s.state
	s.mu.Unlock()

	if !declared {
		return nil, &MissingDeclarationError{Module: module}
	}
	if state != StateDone && state != StateDoneEmpty {
		return nil, ErrNotPopulated
	}
	req, err := request.New(module, pairs)
	if err != nil {
		return nil, err
	}
	table, err := s.cache.Lookup(req)
	if err != nil {
		return nil, err
	}
	return s.valid.ValidateModule(module, table)
}
