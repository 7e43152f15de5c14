// Package ranking defines the Ranking value shared by every ranking problem:
// an ordered list of object identifiers and the relations between consecutive
// positions.
package ranking

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// Relation is the operator between two consecutive objects of a Ranking.
//
// The base alphabet is single-digit. A bracket immediately followed by an
// ordered relation can be fused into a two-digit composite code, bracket*10 +
// ordered (e.g. CloseGroup then Ordered → 53).
type Relation int

const (
	Incomparable Relation = 1
	Equal        Relation = 2
	Ordered      Relation = 3
	OpenGroup    Relation = 4
	CloseGroup   Relation = 5
)

var relationSymbols = map[Relation]string{
	Incomparable: "|",
	Equal:        "=",
	Ordered:      ">",
	OpenGroup:    "(",
	CloseGroup:   ")",
}

// Fuse combines a bracket relation with the ordered relation into a composite code.
func Fuse(bracket, next Relation) (Relation, error) {
	if (bracket != OpenGroup && bracket != CloseGroup) || next != Ordered {
		return 0, errors.NewValueError("ranking.Fuse",
			fmt.Sprintf("only a bracket followed by an ordered relation can be fused, got %d and %d", bracket, next))
	}
	return bracket*10 + next, nil
}

// Split returns the components of r. Simple relations return themselves.
func (r Relation) Split() []Relation {
	if r >= 10 {
		return []Relation{r / 10, r % 10}
	}
	return []Relation{r}
}

// IsComposite reports whether r is a fused two-digit code.
func (r Relation) IsComposite() bool {
	return r >= 10
}

// Valid reports whether r is a base relation or a well-formed composite code.
func (r Relation) Valid() bool {
	if r.IsComposite() {
		_, err := Fuse(r/10, r%10)
		return err == nil
	}
	_, ok := relationSymbols[r]
	return ok
}

func (r Relation) String() string {
	var b strings.Builder
	for _, part := range r.Split() {
		if s, ok := relationSymbols[part]; ok {
			b.WriteString(s)
		} else {
			b.WriteString("?")
		}
	}
	return b.String()
}

// Ranking is an ordered list of object ids with len(Objects)-1 relations for a
// linear ranking. Rankings may cover only a subset of all objects.
type Ranking struct {
	Objects   []int
	Relations []Relation
}

// New builds a ranking and validates it.
func New(objects []int, relations []Relation) (*Ranking, error) {
	r := &Ranking{Objects: objects, Relations: relations}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewLinear builds a total order over objects, first object on top.
func NewLinear(objects ...int) *Ranking {
	relations := make([]Relation, 0, len(objects))
	for i := 1; i < len(objects); i++ {
		relations = append(relations, Ordered)
	}
	return &Ranking{Objects: append([]int(nil), objects...), Relations: relations}
}

// Validate checks the relation count, the relation codes and that no object repeats.
func (r *Ranking) Validate() error {
	if len(r.Objects) == 0 {
		if len(r.Relations) != 0 {
			return errors.NewValueError("Ranking.Validate", "relations given for an empty ranking")
		}
		return nil
	}
	if len(r.Relations) != len(r.Objects)-1 {
		return errors.NewDimensionError("Ranking.Validate", len(r.Objects)-1, len(r.Relations), 1)
	}
	for _, rel := range r.Relations {
		if !rel.Valid() {
			return errors.NewValueError("Ranking.Validate", fmt.Sprintf("unknown relation code %d", rel))
		}
	}
	seen := make(map[int]struct{}, len(r.Objects))
	for _, o := range r.Objects {
		if _, dup := seen[o]; dup {
			return errors.NewValueError("Ranking.Validate", fmt.Sprintf("object %d appears twice", o))
		}
		seen[o] = struct{}{}
	}
	return nil
}

// IsTotalOrder reports whether every relation is Ordered.
func (r *Ranking) IsTotalOrder() bool {
	for _, rel := range r.Relations {
		if rel != Ordered {
			return false
		}
	}
	return true
}

// Len returns the number of ranked objects.
func (r *Ranking) Len() int {
	return len(r.Objects)
}

// Position returns the 0-indexed position of object, or -1.
func (r *Ranking) Position(object int) int {
	for i, o := range r.Objects {
		if o == object {
			return i
		}
	}
	return -1
}

// Contains reports whether object is ranked.
func (r *Ranking) Contains(object int) bool {
	return r.Position(object) >= 0
}

// Copy returns a deep copy.
func (r *Ranking) Copy() *Ranking {
	if r == nil {
		return nil
	}
	return &Ranking{
		Objects:   append([]int(nil), r.Objects...),
		Relations: append([]Relation(nil), r.Relations...),
	}
}

// Equal compares objects and relations.
func (r *Ranking) Equal(other *Ranking) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.Objects) != len(other.Objects) || len(r.Relations) != len(other.Relations) {
		return false
	}
	for i := range r.Objects {
		if r.Objects[i] != other.Objects[i] {
			return false
		}
	}
	for i := range r.Relations {
		if r.Relations[i] != other.Relations[i] {
			return false
		}
	}
	return true
}

// String renders the ranking as "2 > 0 = 1".
func (r *Ranking) String() string {
	var b strings.Builder
	for i, o := range r.Objects {
		if i > 0 {
			b.WriteString(" ")
			b.WriteString(r.Relations[i-1].String())
			b.WriteString(" ")
		}
		b.WriteString(strconv.Itoa(o))
	}
	return b.String()
}

// Parse reads the String form. Only single-symbol relations are accepted.
func Parse(s string) (*Ranking, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return &Ranking{}, nil
	}
	if len(fields)%2 == 0 {
		return nil, errors.NewValueError("ranking.Parse", fmt.Sprintf("malformed ranking %q", s))
	}

	r := &Ranking{}
	for i, f := range fields {
		if i%2 == 0 {
			o, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrapf(err, "ranking.Parse: object %q", f)
			}
			r.Objects = append(r.Objects, o)
			continue
		}
		rel, ok := parseSymbol(f)
		if !ok {
			return nil, errors.NewValueError("ranking.Parse", fmt.Sprintf("unknown relation %q", f))
		}
		r.Relations = append(r.Relations, rel)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func parseSymbol(s string) (Relation, bool) {
	for rel, sym := range relationSymbols {
		if sym == s {
			return rel, true
		}
	}
	return 0, false
}
