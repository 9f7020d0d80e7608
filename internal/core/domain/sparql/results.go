// Package sparql models the SPARQL 1.1 JSON results envelope returned by the query endpoint.
package sparql

// Results is the top-level envelope: {"head": {...}, "results": {"bindings": [...]}}.
type Results struct {
	Head    Head     `json:"head"`
	Results Bindings `json:"results"`
}

type Head struct {
	Vars []string `json:"vars"`
}

type Bindings struct {
	Bindings []Row `json:"bindings"`
}

// Row maps a variable name to its bound term. Unbound variables are absent.
type Row map[string]Term

// Term is one bound RDF value.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Rows returns the bindings, tolerating a nil envelope.
func (r *Results) Rows() []Row {
	if r == nil {
		return nil
	}
	return r.Results.Bindings
}

// First returns the first row, or an empty row when there is none.
func (r *Results) First() Row {
	rows := r.Rows()
	if len(rows) == 0 {
		return Row{}
	}
	return rows[0]
}

// Value returns the bound value of name, or "" when unbound.
func (row Row) Value(name string) string {
	return row[name].Value
}
