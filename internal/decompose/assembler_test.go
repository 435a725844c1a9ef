package decompose

import (
	"reflect"
	"testing"

	"github.com/gcbaptista/go-query-decomposer/internal/stopwords"
	"github.com/gcbaptista/go-query-decomposer/model"
)

// groupView is a comparable rendering of a SplitGroup.
type groupView struct {
	SplitCount int
	Delimiter  bool
	Phrases    [][]string
}

func view(result model.DecompositionResult) []groupView {
	out := make([]groupView, 0, len(result.SplitGroups))
	for _, g := range result.SplitGroups {
		out = append(out, groupView{SplitCount: g.SplitCount, Delimiter: g.DelimiterDerived, Phrases: phrases(g.PhraseGroups)})
	}
	return out
}

func testStopWords() *stopwords.Set {
	return stopwords.New("compare", "vs", "and", "with", "the", "of", "in")
}

var maleFemaleThreeWay = groupView{
	SplitCount: 3,
	Phrases: [][]string{
		{"male", "population", "female population"},
		{"male", "population female", "population"},
		{"male population", "female", "population"},
	},
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []groupView
	}{
		{
			name:  "versus",
			query: "compare male population vs female population",
			want: []groupView{
				{SplitCount: 2, Delimiter: true, Phrases: [][]string{{"male population", "female population"}}},
				maleFemaleThreeWay,
			},
		},
		{
			name:  "quoted variables",
			query: `compare "male population" with "female population"`,
			want: []groupView{
				{SplitCount: 2, Delimiter: true, Phrases: [][]string{{"male population", "female population"}}},
				maleFemaleThreeWay,
			},
		},
		{
			name:  "only stop words",
			query: "the of",
			want:  []groupView{},
		},
		{
			name:  "single token",
			query: "population",
			want:  []groupView{},
		},
		{
			name:  "two tokens",
			query: "median income",
			want: []groupView{
				{SplitCount: 2, Phrases: [][]string{{"median", "income"}}},
			},
		},
		{
			name:  "delimited stop words only",
			query: "the, of",
			want:  []groupView{},
		},
		{
			name:  "segments that clean to nothing are dropped",
			query: "the, median income, poverty",
			want: []groupView{
				{SplitCount: 2, Delimiter: true, Phrases: [][]string{{"median income", "poverty"}}},
				{SplitCount: 3, Phrases: [][]string{{"median", "income", "poverty"}}},
			},
		},
		{
			name:  "repeated delimiter segments",
			query: "poverty vs poverty",
			want: []groupView{
				{SplitCount: 2, Delimiter: true, Phrases: [][]string{{"poverty", "poverty"}}},
			},
		},
		{
			name:  "delimiter group precedes lower split counts",
			query: "male, female, child population",
			want: []groupView{
				{SplitCount: 3, Delimiter: true, Phrases: [][]string{{"male", "female", "child population"}}},
				{SplitCount: 2, Phrases: [][]string{
					{"male", "female child population"},
					{"male female", "child population"},
					{"male female child", "population"},
				}},
				{SplitCount: 4, Phrases: [][]string{{"male", "female", "child", "population"}}},
			},
		},
		{
			name:  "single quoted phrase",
			query: `"median income" in texas`,
			want: []groupView{
				{SplitCount: 1, Delimiter: true, Phrases: [][]string{{"median income"}}},
				{SplitCount: 2, Phrases: [][]string{{"median", "income texas"}, {"median income", "texas"}}},
				{SplitCount: 3, Phrases: [][]string{{"median", "income", "texas"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decompose(tt.query, testStopWords())
			if got.SplitGroups == nil {
				t.Fatalf("Decompose(%q) returned nil split groups", tt.query)
			}
			if !reflect.DeepEqual(view(got), tt.want) {
				t.Errorf("Decompose(%q) =\n%+v\nwant\n%+v", tt.query, view(got), tt.want)
			}
		})
	}
}

func TestDecomposeWithLimit(t *testing.T) {
	query := "a1 b2 c3 d4 e5 f6"

	tests := []struct {
		name       string
		limit      int
		wantCounts map[int]int
	}{
		{"default cap", MaxSplitCount, map[int]int{2: 5, 3: 10, 4: 10}},
		{"lower cap", 2, map[int]int{2: 5}},
		{"three", 3, map[int]int{2: 5, 3: 10}},
		{"cap above maximum is clamped", 10, map[int]int{2: 5, 3: 10, 4: 10}},
		{"cap below minimum is clamped", 0, map[int]int{2: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecomposeWithLimit(query, nil, tt.limit)
			counts := make(map[int]int)
			for _, g := range got.SplitGroups {
				if g.DelimiterDerived {
					t.Fatalf("unexpected delimiter group %+v", g)
				}
				counts[g.SplitCount] = len(g.PhraseGroups)
			}
			if !reflect.DeepEqual(counts, tt.wantCounts) {
				t.Errorf("DecomposeWithLimit(%q, %d) counts = %v, want %v", query, tt.limit, counts, tt.wantCounts)
			}
		})
	}
}

func TestDecompose_Ordering(t *testing.T) {
	queries := []string{
		"compare male population vs female population",
		"male, female, child population",
		"median household income poverty rate unemployment",
		`"obesity" and "diabetes" in counties of california`,
		"income, poverty, obesity, diabetes, unemployment",
		"a; b; c; d; e; f; g",
	}

	for _, q := range queries {
		result := Decompose(q, testStopWords())
		last := 0
		for i, g := range result.SplitGroups {
			if g.SplitCount > MaxSplitCount {
				t.Errorf("%q: split count %d exceeds %d", q, g.SplitCount, MaxSplitCount)
			}
			if g.DelimiterDerived {
				if i != 0 {
					t.Errorf("%q: delimiter group at position %d", q, i)
				}
				if len(g.PhraseGroups) != 1 || g.PhraseGroups[0].Len() != g.SplitCount {
					t.Errorf("%q: malformed delimiter group %+v", q, g)
				}
				continue
			}
			if g.SplitCount <= last {
				t.Errorf("%q: split count %d after %d", q, g.SplitCount, last)
			}
			if g.SplitCount < MinSplitCount {
				t.Errorf("%q: split count %d out of range", q, g.SplitCount)
			}
			if len(g.PhraseGroups) == 0 {
				t.Errorf("%q: empty split group %d", q, g.SplitCount)
			}
			for _, pg := range g.PhraseGroups {
				if pg.Len() != g.SplitCount {
					t.Errorf("%q: phrase group %v in split group %d", q, pg, g.SplitCount)
				}
			}
			last = g.SplitCount
		}
	}
}

func TestDecompose_DelimiterGroupRespectsSplitCap(t *testing.T) {
	tests := []struct {
		name  string
		query string
		limit int
		want  []groupView
	}{
		{
			name:  "five delimited parts exceed the maximum",
			query: "income, poverty, obesity, diabetes, unemployment",
			limit: MaxSplitCount,
			want: []groupView{
				{SplitCount: 2, Phrases: [][]string{
					{"income", "poverty obesity diabetes unemployment"},
					{"income poverty", "obesity diabetes unemployment"},
					{"income poverty obesity", "diabetes unemployment"},
					{"income poverty obesity diabetes", "unemployment"},
				}},
				{SplitCount: 3, Phrases: [][]string{
					{"income", "poverty", "obesity diabetes unemployment"},
					{"income", "poverty obesity", "diabetes unemployment"},
					{"income", "poverty obesity diabetes", "unemployment"},
					{"income poverty", "obesity", "diabetes unemployment"},
					{"income poverty", "obesity diabetes", "unemployment"},
					{"income poverty obesity", "diabetes", "unemployment"},
				}},
				{SplitCount: 4, Phrases: [][]string{
					{"income", "poverty", "obesity", "diabetes unemployment"},
					{"income", "poverty", "obesity diabetes", "unemployment"},
					{"income", "poverty obesity", "diabetes", "unemployment"},
					{"income poverty", "obesity", "diabetes", "unemployment"},
				}},
			},
		},
		{
			name:  "three delimited parts under a cap of two",
			query: "median income, poverty, unemployment",
			limit: 2,
			want: []groupView{
				{SplitCount: 2, Phrases: [][]string{
					{"median", "income poverty unemployment"},
					{"median income", "poverty unemployment"},
					{"median income poverty", "unemployment"},
				}},
			},
		},
		{
			name:  "three delimited parts under the default cap",
			query: "median income, poverty, unemployment",
			limit: MaxSplitCount,
			want: []groupView{
				{SplitCount: 3, Delimiter: true, Phrases: [][]string{{"median income", "poverty", "unemployment"}}},
				{SplitCount: 2, Phrases: [][]string{
					{"median", "income poverty unemployment"},
					{"median income", "poverty unemployment"},
					{"median income poverty", "unemployment"},
				}},
				{SplitCount: 4, Phrases: [][]string{{"median", "income", "poverty", "unemployment"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecomposeWithLimit(tt.query, nil, tt.limit)
			if !reflect.DeepEqual(view(got), tt.want) {
				t.Errorf("DecomposeWithLimit(%q, %d) =\n%+v\nwant\n%+v", tt.query, tt.limit, view(got), tt.want)
			}
		})
	}
}

func TestDecompose_DefaultStopWords(t *testing.T) {
	got := Decompose("Compare the male population vs. female population, in counties!", stopwords.Default())
	want := []groupView{
		{SplitCount: 2, Delimiter: true, Phrases: [][]string{{"male population", "female population"}}},
		maleFemaleThreeWay,
	}
	if !reflect.DeepEqual(view(got), want) {
		t.Errorf("Decompose() =\n%+v\nwant\n%+v", view(got), want)
	}
}

func TestDecompose_Deterministic(t *testing.T) {
	query := "poverty rate, median income and unemployment in texas"
	first := Decompose(query, testStopWords())
	for i := 0; i < 10; i++ {
		if again := Decompose(query, testStopWords()); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, view(first), view(again))
		}
	}
}
