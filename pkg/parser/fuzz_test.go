package parser

import (
	"testing"
)

// FuzzParse checks that parsing never panics and that every accepted
// program renders back to source that parses to the same tree.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"_",
		`"hello"`,
		`_[0:3]`,
		`"a"+"b"+"c"`,
		`$"_"`,
		`($_)[1:]+"x"`,
		`"unterminated`,
		`_[`,
		`(((`,
		`\"`,
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, src string) {
		prog, err := Parse(src, WithMaxDepth(64))
		if err != nil {
			return
		}
		rendered := prog.AST().String()
		again, err := Parse(rendered, WithMaxDepth(64))
		if err != nil {
			t.Fatalf("rendered %q of %q does not parse: %v", rendered, src, err)
		}
		if !prog.AST().Equal(again.AST()) {
			t.Fatalf("rendered %q of %q parses to a different tree", rendered, src)
		}
	})
}
