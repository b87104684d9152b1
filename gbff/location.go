package gbff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrrlab/geneticker/bio"
)

// Location operators.
const (
	OpJoin       = "join"
	OpOrder      = "order"
	OpComplement = "complement"
)

// Location is a feature location. It is either an interval (Op is
// empty) or an operator applied to child locations.
type Location struct {
	Op       string
	Children []*Location

	// From and To are 1-based inclusive positions.
	From, To int
	// Between marks a site between two bases (from^to).
	Between bool
	// Partial5 and Partial3 are set for '<' and '>' markers.
	Partial5, Partial3 bool
	// Remote is the accession of an interval in another record.
	Remote string
}

// ParseLocation parses a location string, e.g.
// "complement(join(<1..200,300..>450))".
func ParseLocation(s string) (*Location, error) {
	s = strings.Join(strings.Fields(s), "")
	p := &locParser{s: s}
	loc, err := p.parse()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("unexpected %q at position %d of location %q", p.s[p.pos:], p.pos, s)
	}
	return loc, nil
}

type locParser struct {
	s   string
	pos int
}

func (p *locParser) parse() (*Location, error) {
	for _, op := range []string{OpJoin, OpOrder, OpComplement} {
		if !strings.HasPrefix(p.s[p.pos:], op+"(") {
			continue
		}
		p.pos += len(op) + 1
		loc := &Location{Op: op}
		for {
			child, err := p.parse()
			if err != nil {
				return nil, err
			}
			loc.Children = append(loc.Children, child)
			if p.pos >= len(p.s) {
				return nil, fmt.Errorf("unbalanced parentheses in location %q", p.s)
			}
			c := p.s[p.pos]
			p.pos++
			if c == ')' {
				break
			}
			if c != ',' {
				return nil, fmt.Errorf("unexpected %q in location %q", c, p.s)
			}
		}
		if op == OpComplement && len(loc.Children) != 1 {
			// complement(a,b) is a shorthand for complement(join(a,b))
			loc.Children = []*Location{{Op: OpJoin, Children: loc.Children}}
		}
		return loc, nil
	}
	return p.interval()
}

// interval parses [acc:]a, [acc:]a..b or a^b.
func (p *locParser) interval() (*Location, error) {
	end := p.pos
	for end < len(p.s) && p.s[end] != ',' && p.s[end] != ')' {
		end++
	}
	tok := p.s[p.pos:end]
	p.pos = end
	if tok == "" {
		return nil, fmt.Errorf("empty interval in location %q", p.s)
	}

	loc := &Location{}
	if i := strings.IndexByte(tok, ':'); i >= 0 {
		loc.Remote = tok[:i]
		tok = tok[i+1:]
	}

	var err error
	if i := strings.IndexByte(tok, '^'); i >= 0 {
		loc.Between = true
		if loc.From, _, err = point(tok[:i]); err != nil {
			return nil, err
		}
		if loc.To, _, err = point(tok[i+1:]); err != nil {
			return nil, err
		}
		return loc, nil
	}

	from, to := tok, tok
	if i := strings.Index(tok, ".."); i >= 0 {
		from, to = tok[:i], tok[i+2:]
	}
	var mark byte
	if loc.From, mark, err = point(from); err != nil {
		return nil, err
	}
	loc.Partial5 = mark == '<'
	loc.Partial3 = mark == '>'
	if loc.To, mark, err = point(to); err != nil {
		return nil, err
	}
	if mark == '>' {
		loc.Partial3 = true
	} else if mark == '<' {
		loc.Partial5 = true
	}
	return loc, nil
}

// point parses a position with an optional partial marker.
func point(s string) (int, byte, error) {
	var mark byte
	if len(s) > 0 && (s[0] == '<' || s[0] == '>') {
		mark = s[0]
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("bad location position %q", s)
	}
	return n, mark, nil
}

// Extract returns the sequence spanned by the location. Complemented
// parts are reverse complemented, joined and ordered parts are
// concatenated.
func (l *Location) Extract(seq string) (string, error) {
	switch l.Op {
	case OpJoin, OpOrder:
		var b strings.Builder
		for _, c := range l.Children {
			s, err := c.Extract(seq)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
		return b.String(), nil
	case OpComplement:
		s, err := l.Children[0].Extract(seq)
		if err != nil {
			return "", err
		}
		return bio.ReverseComplement(s), nil
	}

	if l.Remote != "" {
		return "", fmt.Errorf("cannot extract interval %d..%d from remote sequence %s", l.From, l.To, l.Remote)
	}
	if l.Between {
		return "", nil
	}
	if l.From > l.To {
		return "", fmt.Errorf("interval %d..%d is reversed", l.From, l.To)
	}
	if l.To > len(seq) {
		return "", fmt.Errorf("interval %d..%d is out of the sequence range (length %d)", l.From, l.To, len(seq))
	}
	return seq[l.From-1 : l.To], nil
}

// Len returns the number of bases covered by the location.
func (l *Location) Len() (n int) {
	if l.Op != "" {
		for _, c := range l.Children {
			n += c.Len()
		}
		return
	}
	if l.Between || l.From > l.To {
		return 0
	}
	return l.To - l.From + 1
}

func (l *Location) String() string {
	if l.Op != "" {
		parts := make([]string, len(l.Children))
		for i, c := range l.Children {
			parts[i] = c.String()
		}
		return l.Op + "(" + strings.Join(parts, ",") + ")"
	}
	var b strings.Builder
	if l.Remote != "" {
		b.WriteString(l.Remote + ":")
	}
	if l.Between {
		fmt.Fprintf(&b, "%d^%d", l.From, l.To)
		return b.String()
	}
	if l.From == l.To {
		if l.Partial5 {
			b.WriteByte('<')
		} else if l.Partial3 {
			b.WriteByte('>')
		}
		b.WriteString(strconv.Itoa(l.From))
		return b.String()
	}
	if l.Partial5 {
		b.WriteByte('<')
	}
	b.WriteString(strconv.Itoa(l.From))
	b.WriteString("..")
	if l.Partial3 {
		b.WriteByte('>')
	}
	b.WriteString(strconv.Itoa(l.To))
	return b.String()
}
