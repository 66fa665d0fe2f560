package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mcncl/psetkit/internal/config"
	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/psets"
	"github.com/mcncl/psetkit/internal/value"
)

// Regex patterns for special string and number values
var (
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// Time format patterns (ordered by specificity - most specific first)
	rfc3339NanoRegex   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{9}(Z|[+-]\d{2}:\d{2})$`)             // 2006-01-02T15:04:05.999999999Z
	rfc3339Regex       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)            // 2006-01-02T15:04:05Z
	iso8601Regex       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?([+-]\d{2}:\d{2}|Z|[+-]\d{4})?$`) // ISO8601 variants
	dateOnlyRegex      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                                         // 2006-01-02
	dateTimeRegex      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`)                               // 2006-01-02 15:04:05
	unixTimestampRegex = regexp.MustCompile(`^1[0-9]{9}$`)                                                                 // Unix timestamp (seconds since 1970)
	unixMilliRegex     = regexp.MustCompile(`^1[0-9]{12}$`)                                                                // Unix timestamp in milliseconds
)

var timeRegexes = []*regexp.Regexp{rfc3339NanoRegex, rfc3339Regex, iso8601Regex, dateOnlyRegex, dateTimeRegex}

// Value classes reported for opaque leaves. The JSON kinds are reported by
// name; these refine strings and integers.
const (
	ClassUUID     = "uuid"
	ClassTime     = "time"
	ClassUnixTime = "unix_time"
)

// Report summarises the structure of a property set tree
type Report struct {
	Root     psets.Kind
	Psets    int // Pset leaves
	PsetIDs  int // PsetID leaves
	Nested   int // nested nodes, including the root when it is nested
	Values   int // opaque leaves
	MaxDepth int // longest key path to a leaf

	// Classes counts Pset leaves by class name
	Classes map[string]int
	// ValueTypes counts the value-type tags of Pset leaves; untagged sets
	// are counted under the empty string
	ValueTypes map[string]int
	// ValueKinds counts opaque leaves by kind, with strings and integers
	// refined by ClassifyValue
	ValueKinds map[string]int

	Addresses  int // distinct flattened addresses
	Collisions []Collision
}

// Collision is a flattened address produced by more than one key path
type Collision struct {
	Address string
	Paths   [][]string
}

// Analyzer inspects property set trees
type Analyzer struct {
	// config holds configuration settings for analysis
	config *config.Config
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		config: config.NewConfig(), // Use default config if none provided
	}
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	return &Analyzer{config: cfg}
}

// Analyze walks p once and builds its Report. Addresses are joined with the
// configured flatten delimiter.
func (a *Analyzer) Analyze(p psets.Psets) Report {
	r := Report{
		Root:       p.Kind(),
		Classes:    make(map[string]int),
		ValueTypes: make(map[string]int),
		ValueKinds: make(map[string]int),
	}

	a.countNodes(p, &r)

	paths := make(map[string][][]string)
	var order []string
	p.Walk(func(path []string, v psets.FlattenedValue) {
		if len(path) > r.MaxDepth {
			r.MaxDepth = len(path)
		}
		switch v.Kind() {
		case psets.KindPset:
			set, _ := v.Pset()
			r.Psets++
			r.Classes[set.Class]++
			valueType := ""
			if set.ValueType != nil {
				valueType = *set.ValueType
			}
			r.ValueTypes[valueType]++
		case psets.KindPsetID:
			r.PsetIDs++
		case psets.KindValue:
			leaf, _ := v.Value()
			r.Values++
			r.ValueKinds[ClassifyValue(leaf)]++
		}

		addr := psets.JoinAddress(path, a.config.Flatten.Delimiter)
		if _, seen := paths[addr]; !seen {
			order = append(order, addr)
		}
		paths[addr] = append(paths[addr], path)
	})

	r.Addresses = len(order)
	for _, addr := range order {
		if len(paths[addr]) > 1 {
			r.Collisions = append(r.Collisions, Collision{Address: addr, Paths: paths[addr]})
		}
	}
	sort.Slice(r.Collisions, func(i, j int) bool {
		return r.Collisions[i].Address < r.Collisions[j].Address
	})
	return r
}

// countNodes counts nested nodes. Leaves are counted by the walk in Analyze.
func (a *Analyzer) countNodes(p psets.Psets, r *Report) {
	stack := []psets.Psets{p}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node.Kind() != psets.KindNested {
			continue
		}
		r.Nested++
		for _, e := range node.Entries() {
			if sub, ok := e.Value.Psets(); ok {
				stack = append(stack, sub)
			}
		}
	}
}

// CheckCollisions returns an analysis error listing every collision.
func (r Report) CheckCollisions() error {
	if len(r.Collisions) == 0 {
		return nil
	}
	parts := make([]string, 0, len(r.Collisions))
	for _, c := range r.Collisions {
		parts = append(parts, fmt.Sprintf("%q (%d paths)", c.Address, len(c.Paths)))
	}
	return errors.NewAnalysisError(
		fmt.Sprintf("%d flattened addresses are ambiguous: %s", len(r.Collisions), strings.Join(parts, ", ")),
		errors.ErrAddressCollision,
	)
}

// ClassifyValue names the kind of an opaque leaf. Strings that look like
// UUIDs or timestamps and integers that look like Unix times get their own
// class.
func ClassifyValue(v value.Value) string {
	switch v.Kind() {
	case value.KindString:
		s, _ := v.AsString()
		return classifyString(s)
	case value.KindInt:
		return classifyInt(v)
	default:
		return v.Kind().String()
	}
}

func classifyString(s string) string {
	if uuidRegex.MatchString(s) {
		return ClassUUID
	}
	for _, re := range timeRegexes {
		if re.MatchString(s) {
			return ClassTime
		}
	}
	return value.KindString.String()
}

func classifyInt(v value.Value) string {
	i, ok := v.AsInt()
	if !ok {
		return value.KindInt.String()
	}
	// Unix timestamps are a common pattern for modification dates
	numStr := strconv.FormatInt(i, 10)
	if unixTimestampRegex.MatchString(numStr) || unixMilliRegex.MatchString(numStr) {
		return ClassUnixTime
	}
	return value.KindInt.String()
}
