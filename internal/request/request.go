// Package request defines the canonical identity of one reference-data
// request sent to the dump oracle.
package request

import (
	"fmt"
	"sort"
	"strings"
)

// Pair is a single key=value argument.
type Pair struct {
	Key   string
	Value string
}

// Request identifies one dump invocation: a module name plus key=value
// arguments. Arguments are sorted by key at construction, so any
// permutation of the same argument set produces the same Key and the same
// wire line.
type Request struct {
	module string
	args   []Pair
}

// DuplicateArgError reports a repeated argument key in one request.
type DuplicateArgError struct {
	Module string
	Key    string
}

func (e *DuplicateArgError) Error() string {
	return fmt.Sprintf("request %s: duplicate argument key %q", e.Module, e.Key)
}

// SyntaxError reports a module or argument token that cannot appear on a
// wire line.
type SyntaxError struct {
	Token  string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("request token %q: %s", e.Token, e.Reason)
}

// New builds a canonical Request. Keys and values must be non-empty and
// free of '=' and whitespace; keys must be unique. The wire grammar has no
// quoting, so these are construction-time errors rather than encode-time
// surprises.
func New(module string, args []Pair) (Request, error) {
	if err := checkToken(module); err != nil {
		return Request{}, err
	}
	sorted := make([]Pair, len(args))
	copy(sorted, args)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	for i, arg := range sorted {
		if err := checkToken(arg.Key); err != nil {
			return Request{}, err
		}
		if err := checkToken(arg.Value); err != nil {
			return Request{}, err
		}
		if i > 0 && sorted[i-1].Key == arg.Key {
			return Request{}, &DuplicateArgError{Module: module, Key: arg.Key}
		}
	}
	return Request{module: module, args: sorted}, nil
}

// MustNew is New for statically known requests; it panics on error.
func MustNew(module string, args ...Pair) Request {
	req, err := New(module, args)
	if err != nil {
		panic(err)
	}
	return req
}

// Module returns the dump module name.
func (r Request) Module() string { return r.module }

// Args returns the arguments in canonical (key-sorted) order.
func (r Request) Args() []Pair {
	out := make([]Pair, len(r.args))
	copy(out, r.args)
	return out
}

// WireLine renders the request as a batch-input line:
// "<module> <k1>=<v1> <k2>=<v2> ...". The canonical argument order makes
// the line a stable, human-readable identity.
func (r Request) WireLine() string {
	var b strings.Builder
	b.WriteString(r.module)
	for _, arg := range r.args {
		b.WriteByte(' ')
		b.WriteString(arg.Key)
		b.WriteByte('=')
		b.WriteString(arg.Value)
	}
	return b.String()
}

// Key is the cache key for this request. It equals WireLine; two requests
// built from any permutation of the same argument set share one key.
func (r Request) Key() string { return r.WireLine() }

func (r Request) String() string { return r.WireLine() }

// Equal reports whether two requests identify the same dump invocation.
func (r Request) Equal(other Request) bool {
	if r.module != other.module || len(r.args) != len(other.args) {
		return false
	}
	for i, arg := range r.args {
		if other.args[i] != arg {
			return false
		}
	}
	return true
}

// ParseWireLine parses "<module> k=v ..." back into a Request. The oracle
// echoes arguments in whatever order it chose, so parsing re-sorts before
// the Key is derived.
func ParseWireLine(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Request{}, &SyntaxError{Token: line, Reason: "empty request line"}
	}
	args := make([]Pair, 0, len(fields)-1)
	for _, tok := range fields[1:] {
		idx := strings.IndexByte(tok, '=')
		if idx <= 0 || idx == len(tok)-1 {
			return Request{}, &SyntaxError{Token: tok, Reason: "expected key=value"}
		}
		args = append(args, Pair{Key: tok[:idx], Value: tok[idx+1:]})
	}
	return New(fields[0], args)
}

func checkToken(tok string) error {
	if tok == "" {
		return &SyntaxError{Token: tok, Reason: "empty token"}
	}
	if strings.ContainsAny(tok, "= \t\n\r") {
		return &SyntaxError{Token: tok, Reason: "contains '=' or whitespace"}
	}
	return nil
}

// SortByKey orders requests by canonical wire line, giving batch input and
// reports a deterministic layout.
func SortByKey(reqs []Request) {
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Key() < reqs[j].Key() })
}
