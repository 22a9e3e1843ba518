// SPDX-License-Identifier: Apache-2.0

package patchgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
)

// Rename is a disambiguated name0/name1 pair accepted from an answer line.
type Rename struct {
	Name0 string
	Name1 string
}

// Answer is the parsed, validated result of an answer line to a Doubt
// prompt: every name in Names0 and Names1 accounted for exactly once as
// a create, unchanged, rename, or drop.
type Answer struct {
	Create    []string
	Unchanged []string
	Rename    []Rename
	Drop      []string
}

// parseAnswer tokenizes and validates an answer line against a Doubt.
// Tokens are any combination of "create N", "unchanged N", "rename
// N0/N1", "drop N". The operands of "create" and "rename" may reference
// suggestions by 1-based index in place of N/N0/N1 (e.g. "rename 1/b"
// resolves "1" against suggestions[0].Name0); "unchanged" and "drop" take
// their operand as a literal name. Malformed or incomplete lines raise
// AnswerError; the caller re-prompts indefinitely, with no maximum retry
// count.
func parseAnswer(line string, d Doubt, suggestions []Suggestion) (*Answer, error) {
	ans := &Answer{}
	seen := make(map[string]string) // name -> token kind that claimed it

	resolveToken := func(tok string, wantName0 bool) (string, bool) {
		if idx, err := strconv.Atoi(tok); err == nil {
			if idx < 1 || idx > len(suggestions) {
				return "", false
			}
			s := suggestions[idx-1]
			if wantName0 {
				return s.Name0, true
			}
			return s.Name1, true
		}
		return tok, true
	}

	fields := strings.Fields(line)
	i := 0
	for i < len(fields) {
		verb := strings.ToLower(fields[i])
		switch verb {
		case "create":
			if i+1 >= len(fields) {
				return nil, enginerr.NewAnswerError(`"create" requires a name`)
			}
			name, ok := resolveToken(fields[i+1], false)
			if !ok {
				return nil, enginerr.NewAnswerError(fmt.Sprintf("invalid suggestion index %q", fields[i+1]))
			}
			if err := claim(seen, name, "create"); err != nil {
				return nil, err
			}
			ans.Create = append(ans.Create, name)
			i += 2

		case "unchanged":
			if i+1 >= len(fields) {
				return nil, enginerr.NewAnswerError(`"unchanged" requires a name`)
			}
			name := fields[i+1]
			if err := claim(seen, name, "unchanged"); err != nil {
				return nil, err
			}
			ans.Unchanged = append(ans.Unchanged, name)
			i += 2

		case "drop":
			if i+1 >= len(fields) {
				return nil, enginerr.NewAnswerError(`"drop" requires a name`)
			}
			name := fields[i+1]
			if err := claim(seen, name, "drop"); err != nil {
				return nil, err
			}
			ans.Drop = append(ans.Drop, name)
			i += 2

		case "rename":
			if i+1 >= len(fields) {
				return nil, enginerr.NewAnswerError(`"rename" requires "name0/name1"`)
			}
			parts := strings.SplitN(fields[i+1], "/", 2)
			if len(parts) != 2 {
				return nil, enginerr.NewAnswerError(fmt.Sprintf("malformed rename pair %q, expected name0/name1", fields[i+1]))
			}
			name0, ok0 := resolveToken(parts[0], true)
			name1, ok1 := resolveToken(parts[1], false)
			if !ok0 || !ok1 {
				return nil, enginerr.NewAnswerError(fmt.Sprintf("invalid suggestion index in rename pair %q", fields[i+1]))
			}
			if err := claim(seen, name0, "rename"); err != nil {
				return nil, err
			}
			if err := claim(seen, name1, "rename"); err != nil {
				return nil, err
			}
			ans.Rename = append(ans.Rename, Rename{Name0: name0, Name1: name1})
			i += 2

		default:
			return nil, enginerr.NewAnswerError(fmt.Sprintf("unrecognized token %q", fields[i]))
		}
	}

	if err := validateCoverage(ans, d); err != nil {
		return nil, err
	}
	return ans, nil
}

func claim(seen map[string]string, name, kind string) error {
	if prior, ok := seen[name]; ok {
		return enginerr.NewAnswerError(fmt.Sprintf("name %q claimed twice (%s then %s)", name, prior, kind))
	}
	seen[name] = kind
	return nil
}

// validateCoverage enforces that each name in Names0 and Names1 is
// accounted for exactly once.
func validateCoverage(ans *Answer, d Doubt) error {
	need := make(map[string]bool)
	for _, n := range d.Names0 {
		need[n] = true
	}
	for _, n := range d.Names1 {
		need[n] = true
	}

	claimed := make(map[string]bool)
	mark := func(n string) error {
		if claimed[n] {
			return enginerr.NewAnswerError(fmt.Sprintf("name %q accounted for more than once", n))
		}
		claimed[n] = true
		return nil
	}

	for _, n := range ans.Create {
		if _, in1 := indexOf(d.Names1, n); !in1 {
			return enginerr.NewAnswerError(fmt.Sprintf("%q created but absent from names1", n))
		}
		if err := mark(n); err != nil {
			return err
		}
	}
	for _, n := range ans.Drop {
		if _, in0 := indexOf(d.Names0, n); !in0 {
			return enginerr.NewAnswerError(fmt.Sprintf("%q dropped but absent from names0", n))
		}
		if err := mark(n); err != nil {
			return err
		}
	}
	for _, n := range ans.Unchanged {
		_, in0 := indexOf(d.Names0, n)
		_, in1 := indexOf(d.Names1, n)
		if !in0 || !in1 {
			return enginerr.NewAnswerError(fmt.Sprintf("%q marked unchanged but not present in both names0 and names1", n))
		}
		if err := mark(n); err != nil {
			return err
		}
	}
	for _, r := range ans.Rename {
		_, in0 := indexOf(d.Names0, r.Name0)
		_, in1 := indexOf(d.Names1, r.Name1)
		if !in0 || !in1 {
			return enginerr.NewAnswerError(fmt.Sprintf("rename %s/%s references a name outside names0/names1", r.Name0, r.Name1))
		}
		if err := mark(r.Name0); err != nil {
			return err
		}
		if err := mark(r.Name1); err != nil {
			return err
		}
	}

	for n := range need {
		if !claimed[n] {
			return enginerr.NewAnswerError(fmt.Sprintf("name %q left unaccounted for", n))
		}
	}
	return nil
}

func indexOf(list []string, name string) (int, bool) {
	for i, n := range list {
		if n == name {
			return i, true
		}
	}
	return -1, false
}
