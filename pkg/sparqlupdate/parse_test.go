package sparqlupdate

import (
	"testing"

	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/stretchr/testify/require"
)

func TestParseDeleteData(t *testing.T) {
	op, err := Parse(`DELETE DATA { <urn:a> <urn:p> "hi" . }`)
	require.NoError(t, err)
	require.Empty(t, op.Insert)
	require.Empty(t, op.Where)
	require.Len(t, op.Delete, 1)
	require.Equal(t, rdf.IRI("urn:a"), op.Delete[0].S.Bound)
	require.Equal(t, rdf.IRI("urn:p"), op.Delete[0].P.Bound)
	require.Equal(t, rdf.PlainLiteral("hi"), op.Delete[0].O.Bound)
}

func TestParseInsertData(t *testing.T) {
	op, err := Parse(`INSERT DATA { <urn:a> <urn:p> "hi"@en . }`)
	require.NoError(t, err)
	require.Len(t, op.Insert, 1)
	require.Equal(t, rdf.LangLiteral("hi", "en"), op.Insert[0].O.Bound)
}

func TestParseMultipleStatementsInOneBlock(t *testing.T) {
	op, err := Parse(`DELETE DATA { <urn:a> <urn:p1> "1" . <urn:a> <urn:p2> "2" . }`)
	require.NoError(t, err)
	require.Len(t, op.Delete, 2)
}

func TestParseDeleteInsertWhere(t *testing.T) {
	op, err := Parse(`DELETE { <urn:a> <urn:p> ?o . } INSERT { <urn:a> <urn:p> "new" . } WHERE { <urn:a> <urn:p> ?o . }`)
	require.NoError(t, err)
	require.Len(t, op.Delete, 1)
	require.Len(t, op.Insert, 1)
	require.Len(t, op.Where, 1)
	require.True(t, op.Delete[0].O.IsVariable())
	require.Equal(t, "o", op.Delete[0].O.Var)
}

func TestParseTypedLiteralAndBNode(t *testing.T) {
	op, err := Parse(`INSERT DATA { _:b1 a <urn:Thing> . <urn:a> <urn:count> "3"^^<urn:xsd:integer> . }`)
	require.NoError(t, err)
	require.Len(t, op.Insert, 2)
	require.Equal(t, rdf.BNode("b1"), op.Insert[0].S.Bound)
	require.Equal(t, rdf.RDFType, op.Insert[0].P.Bound)
	require.Equal(t, rdf.TypedLiteral("3", "urn:xsd:integer"), op.Insert[1].O.Bound)
}

func TestParseRejectsMissingClauses(t *testing.T) {
	_, err := Parse(`WHERE { <urn:a> <urn:p> ?o . }`)
	require.Error(t, err)
}

func TestParseRejectsTrailingContent(t *testing.T) {
	_, err := Parse(`DELETE DATA { <urn:a> <urn:p> "1" . } garbage`)
	require.Error(t, err)
}

func TestParseDotInsideIRIAndLiteralIsNotAStatementBoundary(t *testing.T) {
	op, err := Parse(`INSERT DATA { <urn:a.b> <urn:p> "a.b.c" . }`)
	require.NoError(t, err)
	require.Len(t, op.Insert, 1)
	require.Equal(t, rdf.IRI("urn:a.b"), op.Insert[0].S.Bound)
	require.Equal(t, rdf.PlainLiteral("a.b.c"), op.Insert[0].O.Bound)
}
