package rdf

import (
	"fmt"
	"strings"
)

// Encode serializes a term into the same canonical byte form used for
// hashing, and is what the term dictionary persists under a term's
// key. Decode reverses it exactly, so that for every term T,
// Decode(Encode(T)) == T (the store's round-trip invariant).
func Encode(t Term) []byte { return t.Canonical() }

// Decode reverses Encode.
func Decode(b []byte) (Term, error) {
	if len(b) == 0 {
		return Term{}, fmt.Errorf("rdf: empty term encoding")
	}
	switch b[0] {
	case 'I':
		return IRI(string(b[1:])), nil
	case 'B':
		return BNode(string(b[1:])), nil
	case 'L':
		rest := b[1:]
		if i := indexNulTag(rest); i >= 0 {
			lex := string(rest[:i])
			tag := rest[i+1:]
			switch {
			case len(tag) > 0 && tag[0] == '@':
				return LangLiteral(lex, string(tag[1:])), nil
			case len(tag) > 0 && tag[0] == '^':
				return TypedLiteral(lex, string(tag[1:])), nil
			}
		}
		return PlainLiteral(string(rest)), nil
	default:
		return Term{}, fmt.Errorf("rdf: unknown term tag %q", b[0])
	}
}

func indexNulTag(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

// MustDecode is Decode but panics on error; used only for invariants
// that the store itself guarantees (decoding bytes it wrote itself).
func MustDecode(b []byte) Term {
	t, err := Decode(b)
	if err != nil {
		panic(err)
	}
	return t
}

// SplitFragment splits an IRI into its base and #fragment, if any.
func SplitFragment(iri string) (base, frag string, hasFrag bool) {
	if i := strings.IndexByte(iri, '#'); i >= 0 {
		return iri[:i], iri[i+1:], true
	}
	return iri, "", false
}
