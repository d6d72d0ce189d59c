package structured

import (
	"reflect"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n[\"a\",\"b\"]\n```", `["a","b"]`},
		{"bare fence", "```\n{\"genre\":\"Drama\"}\n```", `{"genre":"Drama"}`},
		{"single line fence", "```json [\"a\"] ```", `["a"]`},
		{"fence without label on content line", "```[\"a\"]```", `["a"]`},
		{"no fence", `  ["a"]  `, `["a"]`},
		{"unterminated fence", "```json\n[\"a\"]", `["a"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFences(tt.in)
			if got != tt.want {
				t.Errorf("StripFences() = %q, want %q", got, tt.want)
			}
			if again := StripFences(got); again != got {
				t.Errorf("StripFences is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestIDs(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		limit     int
		want      []string
		status    Status
		dropped   int
		truncated int
	}{
		{
			name:   "plain array",
			raw:    `["b","a"]`,
			limit:    5,
			want:   []string{"b", "a"},
			status: StatusOK,
		},
		{
			name:   "fenced array",
			raw:    "```json\n[\"m1\", \"m2\", \"m3\"]\n```",
			limit:    5,
			want:   []string{"m1", "m2", "m3"},
			status: StatusOK,
		},
		{
			name:   "array inside prose",
			raw:    "Here are my picks: [\"m1\",\"m2\"] Enjoy!",
			limit:    5,
			want:   []string{"m1", "m2"},
			status: StatusOK,
		},
		{
			name:   "bracket in prose after the array",
			raw:    "Sure: [\"a\",\"b\"] (see note [1])",
			limit:  5,
			want:   []string{"a", "b"},
			status: StatusOK,
		},
		{
			name:   "non-JSON bracket before the array",
			raw:    "[Note] my picks: [\"m1\",\"m2\"] and {more} later",
			limit:  5,
			want:   []string{"m1", "m2"},
			status: StatusOK,
		},
		{
			name:   "plain prose",
			raw:    "I think you would enjoy a nice comedy tonight.",
			limit:    5,
			want:   []string{},
			status: StatusMalformed,
		},
		{
			name:   "object instead of array",
			raw:    `{"ids":["m1"]}`,
			limit:    5,
			want:   []string{},
			status: StatusMalformed,
		},
		{
			name:   "empty output",
			raw:    "   ",
			limit:    5,
			want:   []string{},
			status: StatusMalformed,
		},
		{
			name:    "non-conforming elements dropped",
			raw:     `["m1", 42, "", "has space", null, {"id":"m2"}, "m3"]`,
			limit:     5,
			want:    []string{"m1", "m3"},
			status:  StatusPartial,
			dropped: 5,
		},
		{
			name:    "unicode whitespace inside ids",
			raw:     `["a\u00a0b", "c\u2003d", "e\u000bf", "ok"]`,
			limit:   5,
			want:    []string{"ok"},
			status:  StatusPartial,
			dropped: 3,
		},
		{
			name:    "duplicates keep first position",
			raw:     `["m2","m1","m2"]`,
			limit:     5,
			want:    []string{"m2", "m1"},
			status:  StatusPartial,
			dropped: 1,
		},
		{
			name:      "truncated to cap",
			raw:       `["a","b","c","d","e","f","g"]`,
			limit:       5,
			want:      []string{"a", "b", "c", "d", "e"},
			status:    StatusOK,
			truncated: 2,
		},
		{
			name:   "no cap",
			raw:    `["a","b","c"]`,
			limit:    0,
			want:   []string{"a", "b", "c"},
			status: StatusOK,
		},
		{
			name:   "empty array",
			raw:    `[]`,
			limit:    5,
			want:   []string{},
			status: StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IDs(tt.raw, tt.limit)
			if !reflect.DeepEqual(got.IDs, tt.want) {
				t.Errorf("IDs = %v, want %v", got.IDs, tt.want)
			}
			if got.Status != tt.status {
				t.Errorf("Status = %s, want %s (issue: %s)", got.Status, tt.status, got.Issue)
			}
			if got.Dropped != tt.dropped {
				t.Errorf("Dropped = %d, want %d", got.Dropped, tt.dropped)
			}
			if got.Truncated != tt.truncated {
				t.Errorf("Truncated = %d, want %d", got.Truncated, tt.truncated)
			}
		})
	}
}

func TestDraft_OnlyGenre(t *testing.T) {
	got := Draft(`{"genre":"Action"}`)
	if got.Status != StatusOK {
		t.Fatalf("Status = %s (%s)", got.Status, got.Issue)
	}
	if got.Draft.Genre == nil || *got.Draft.Genre != "Action" {
		t.Errorf("Genre = %v", got.Draft.Genre)
	}
	if got.Draft.Description != nil || got.Draft.ReleaseDate != nil || got.Draft.Rating != nil {
		t.Errorf("absent fields must stay nil: %+v", got.Draft)
	}
}

func TestDraft_Full(t *testing.T) {
	raw := "```json\n" + `{
		"description": "A heist crew and a detective collide. Neither blinks.",
		"genre": " Crime ",
		"releaseDate": "1995-12-15",
		"rating": 8.3,
		"director": "ignored"
	}` + "\n```"

	got := Draft(raw)
	if got.Status != StatusOK || got.Draft.Fields() != 4 {
		t.Fatalf("Draft() = %+v", got)
	}
	if *got.Draft.Genre != "Crime" {
		t.Errorf("Genre = %q, want trimmed", *got.Draft.Genre)
	}
	if *got.Draft.Rating != 8.3 {
		t.Errorf("Rating = %v", *got.Draft.Rating)
	}
}

func TestDraft_FieldsDroppedIndependently(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		dropped []string
		kept    int
	}{
		{"rating as numeric text", `{"rating":"7.5"}`, nil, 1},
		{"rating out of range", `{"rating":11,"genre":"Drama"}`, []string{"rating"}, 1},
		{"rating word", `{"rating":"great","genre":"Drama"}`, []string{"rating"}, 1},
		{"date wrong layout", `{"releaseDate":"12/15/1995","genre":"Drama"}`, []string{"releaseDate"}, 1},
		{"date impossible", `{"releaseDate":"1995-02-30"}`, []string{"releaseDate"}, 0},
		{"genre not text", `{"genre":["Drama","Crime"],"description":"ok"}`, []string{"genre"}, 1},
		{"blank description", `{"description":"   ","rating":6}`, []string{"description"}, 1},
		{"no-break space genre", `{"genre":"\u00a0","rating":6}`, []string{"genre"}, 1},
		{"em space description", `{"description":"\u2003\u00a0","genre":"Drama"}`, []string{"description"}, 1},
		{"null fields are absent", `{"description":null,"genre":"Drama"}`, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Draft(tt.raw)
			if !reflect.DeepEqual(got.Dropped, tt.dropped) {
				t.Errorf("Dropped = %v, want %v", got.Dropped, tt.dropped)
			}
			if got.Draft.Fields() != tt.kept {
				t.Errorf("Fields() = %d, want %d", got.Draft.Fields(), tt.kept)
			}
			wantStatus := StatusOK
			if len(tt.dropped) > 0 {
				wantStatus = StatusPartial
			}
			if got.Status != wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, wantStatus)
			}
		})
	}
}

func TestDraft_Malformed(t *testing.T) {
	for _, raw := range []string{"", "Sorry, I don't know that film.", `["Drama"]`, `"Drama"`} {
		got := Draft(raw)
		if got.Status != StatusMalformed {
			t.Errorf("Draft(%q).Status = %s, want malformed", raw, got.Status)
		}
		if !got.Draft.Empty() {
			t.Errorf("Draft(%q) = %+v, want empty", raw, got.Draft)
		}
	}
}

func TestSchemas(t *testing.T) {
	s, err := Schemas()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"id_list.json", "id.json", "draft.json", "draft_fields.json"} {
		if len(s[name]) == 0 {
			t.Errorf("schema %s missing", name)
		}
	}
}
