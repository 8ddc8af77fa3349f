package completion

import (
	"slices"
	"strings"

	"github.com/oakwood-commons/kvfilter/internal/text"
	"github.com/oakwood-commons/kvfilter/internal/typectx"
	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

// DefaultMaxComposites bounds the flag combinations offered after an
// operator.
const DefaultMaxComposites = 256

type operator struct {
	text, description string
}

var (
	opEq    = operator{"=", "equals"}
	opNe    = operator{"!=", "does not equal"}
	opLt    = operator{"<", "less than"}
	opLe    = operator{"<=", "less than or equal"}
	opGt    = operator{">", "greater than"}
	opGe    = operator{">=", "greater than or equal"}
	opRegex = operator{"~", "matches regular expression"}
	opFlag  = operator{"~", "has flag"}

	equality = []operator{opEq, opNe}
	ordering = []operator{opEq, opNe, opLt, opLe, opGt, opGe}

	conjunctions = []Completion{
		{Text: ",", Kind: CompletionConjunction, Description: "and (next clause)"},
		{Text: "|", Kind: CompletionConjunction, Description: "or"},
		{Text: "&", Kind: CompletionConjunction, Description: "and"},
	}
	group = Completion{Text: "(", Kind: CompletionGroup, Description: "sub-filter"}
)

// Generator is the Provider for filter expressions. It is stateless apart
// from its configuration and may be shared.
type Generator struct {
	// MaxComposites caps flag combinations; zero selects DefaultMaxComposites.
	MaxComposites int
	// Classifier memoizes type categories; nil uses the shared one.
	Classifier *typeinfo.Classifier
}

// NewGenerator returns a Generator with default settings.
func NewGenerator() *Generator {
	return &Generator{MaxComposites: DefaultMaxComposites}
}

func (g *Generator) classify(d typeinfo.Descriptor) typeinfo.Category {
	if g.Classifier != nil {
		return g.Classifier.Classify(d)
	}
	return typeinfo.Classify(d)
}

// Candidates implements Provider.
func (g *Generator) Candidates(prev *text.Lexeme, rec typectx.Record) []Completion {
	if prev == nil {
		return g.members(rec.Nearest)
	}
	switch prev.Category {
	case text.Operator:
		return g.literals(rec.Nearest)
	case text.Intrinsic:
		if in, ok := typectx.LookupIntrinsic(prev.Text); ok && (in == typectx.Any || in == typectx.All) {
			if el, ok := rec.Nearest.Element(); ok {
				return g.members(el)
			}
		}
		return g.members(rec.Nearest)
	case text.Symbol:
		if prev.Text == ")" {
			return slices.Clone(conjunctions)
		}
		return g.members(rec.Enclosing)
	case text.Identifier:
		if rec.Value {
			return slices.Clone(conjunctions)
		}
		return g.members(rec.Nearest)
	}
	return slices.Clone(conjunctions)
}

// members is the member-candidate set of d: what may follow a resolved
// member.
func (g *Generator) members(d typeinfo.Descriptor) []Completion {
	if !d.Valid() {
		return nil
	}
	var out []Completion
	if el, ok := d.Element(); ok {
		out = g.body(el)
		for _, info := range typectx.Intrinsics {
			if info.Intrinsic.OnSequence() {
				out = append(out, Completion{Text: info.Name, Kind: CompletionIntrinsic, Description: info.Description})
			}
		}
	} else {
		out = g.body(d)
	}
	if d.Nullable() {
		for _, op := range equality {
			if !slices.ContainsFunc(out, func(c Completion) bool {
				return c.Kind == CompletionOperator && c.Text == op.text
			}) {
				out = append(out, opCompletion(op))
			}
		}
	}
	return append(out, group)
}

func (g *Generator) body(d typeinfo.Descriptor) []Completion {
	var out []Completion
	for _, m := range d.Members() {
		out = append(out, Completion{
			Text:        m.Name,
			Kind:        CompletionMember,
			Detail:      m.Type.String(),
			Description: m.Description,
		})
	}
	cat := g.classify(d.Underlying())
	for _, op := range operatorsFor(cat) {
		out = append(out, opCompletion(op))
	}
	if cat.IsFloat() {
		for _, info := range typectx.Intrinsics {
			if info.Intrinsic.Rounding() {
				out = append(out, Completion{Text: info.Name, Kind: CompletionIntrinsic, Description: info.Description})
			}
		}
	}
	return out
}

func opCompletion(op operator) Completion {
	return Completion{Text: op.text, Kind: CompletionOperator, Description: op.description}
}

// operatorsFor returns the comparison operators valid for a category.
func operatorsFor(cat typeinfo.Category) []operator {
	switch {
	case cat == typeinfo.String:
		return append(slices.Clone(ordering), opRegex)
	case cat == typeinfo.Flags:
		return append(slices.Clone(ordering), opFlag)
	case cat == typeinfo.Bool, cat == typeinfo.Equatable:
		return equality
	case cat.IsNumeric(), cat == typeinfo.Enumerated, cat == typeinfo.Ordered:
		return ordering
	}
	return nil
}

// literals lists the values offered after an operator compared against d.
func (g *Generator) literals(d typeinfo.Descriptor) []Completion {
	if !d.Valid() {
		return nil
	}
	var out []Completion
	u := d.Underlying()
	switch cat := g.classify(u); cat {
	case typeinfo.Bool:
		out = append(out,
			Completion{Text: "true", Kind: CompletionLiteral, Detail: "bool"},
			Completion{Text: "false", Kind: CompletionLiteral, Detail: "bool"},
		)
	case typeinfo.Enumerated, typeinfo.Flags:
		e, _ := u.Enum()
		for _, m := range e.Members {
			out = append(out, Completion{Text: m.Name, Kind: CompletionLiteral, Detail: u.String(), Description: m.Description})
		}
		if cat == typeinfo.Flags {
			out = append(out, g.composites(e, u.String())...)
		}
	}
	fixed := len(out) > 0
	if d.Nullable() {
		out = append(out, Completion{Text: "null", Kind: CompletionLiteral, Description: "absent value"})
	}
	if !fixed {
		out = append(out, Completion{Kind: CompletionPlaceholder, Detail: u.String(), Description: u.String() + " value"})
	}
	return out
}

// composites renders every unnamed combination of two or more single-bit
// members as a quoted literal, smaller sets first.
func (g *Generator) composites(e *typeinfo.Enum, detail string) []Completion {
	limit := g.MaxComposites
	if limit <= 0 {
		limit = DefaultMaxComposites
	}
	bits := e.Bits()
	var out []Completion
	idx := make([]int, 0, len(bits))
	var combine func(start, size int) bool
	combine = func(start, size int) bool {
		if len(idx) == size {
			var v int64
			names := make([]string, len(idx))
			for i, j := range idx {
				v |= bits[j].Value
				names[i] = bits[j].Name
			}
			if !e.Named(v) {
				out = append(out, Completion{
					Text:   `"` + strings.Join(names, ",") + `"`,
					Kind:   CompletionLiteral,
					Detail: detail,
				})
			}
			return len(out) < limit
		}
		for j := start; j < len(bits); j++ {
			idx = append(idx, j)
			more := combine(j+1, size)
			idx = idx[:len(idx)-1]
			if !more {
				return false
			}
		}
		return true
	}
	for size := 2; size <= len(bits); size++ {
		if !combine(0, size) {
			break
		}
	}
	return out
}
