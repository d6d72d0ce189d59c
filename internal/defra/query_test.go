package defra

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"bae-5f1c9a3e-0000-4000-8000-000000000000", false},
		{"movie_1", false},
		{"", true},
		{`bad"id`, true},
		{"has space", true},
		{strings.Repeat("a", 501), true},
	}
	for _, tt := range tests {
		err := ValidateID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}

func TestQueryBuilder_Build(t *testing.T) {
	q, vars := NewQuery("Movie").
		FilterIn("_docID", []string{"a", "b"}).
		Filter("genre", "Drama").
		Fields("_docID", "title").
		OrderBy("title", Asc).
		Limit(10).
		Build()

	want := `query($v0: [ID!], $v1: String) { Movie(filter: {_docID: {_in: $v0}, genre: {_eq: $v1}}, order: {title: ASC}, limit: 10) { _docID title } }`
	if q != want {
		t.Errorf("Build() query =\n%s\nwant\n%s", q, want)
	}
	if !reflect.DeepEqual(vars["v0"], []string{"a", "b"}) {
		t.Errorf("v0 = %v", vars["v0"])
	}
	if vars["v1"] != "Drama" {
		t.Errorf("v1 = %v", vars["v1"])
	}
}

func TestQueryBuilder_BuildNoFilters(t *testing.T) {
	q, vars := NewQuery("User").Build()
	if q != "{ User { _docID } }" {
		t.Errorf("Build() = %s", q)
	}
	if len(vars) != 0 {
		t.Errorf("vars = %v, want empty", vars)
	}
}

func TestQueryBuilder_Execute(t *testing.T) {
	var got GQLRequest
	srv := gqlServer(t, `{"data":{"Movie":[{"_docID":"a"},{"_docID":"b"},"junk"]}}`, &got)

	resp, err := NewQuery("Movie").Filter("title", "Heat").Execute(context.Background(), NewClient(srv.URL))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if docs := resp.Docs("Movie"); len(docs) != 2 {
		t.Errorf("Docs() len = %d, want 2", len(docs))
	}
	if got.Variables["v0"] != "Heat" {
		t.Errorf("variables = %v", got.Variables)
	}
}

func TestQueryBuilder_ExecuteGraphQLError(t *testing.T) {
	srv := gqlServer(t, `{"errors":[{"message":"unknown field"}]}`, nil)

	_, err := NewQuery("Movie").Execute(context.Background(), NewClient(srv.URL))
	if err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Errorf("Execute() error = %v, want unknown field", err)
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"count", `{"data":{"_count":7}}`, 7, false},
		{"empty", `{"data":{"_count":0}}`, 0, false},
		{"graphql error", `{"errors":[{"message":"no collection"}]}`, 0, true},
		{"missing count", `{"data":{}}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got GQLRequest
			srv := gqlServer(t, tt.body, &got)

			n, err := Count(context.Background(), NewClient(srv.URL), "Movie")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Count() error = %v, wantErr %v", err, tt.wantErr)
			}
			if n != tt.want {
				t.Errorf("Count() = %d, want %d", n, tt.want)
			}
			if got.Query != "{ _count(Movie: {}) }" {
				t.Errorf("query = %q", got.Query)
			}
		})
	}
}
