package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/hossamdev/portfolio-api/internal/modules/model"
)

func project(title, category, date string, tags ...string) model.Project {
	return model.Project{
		Title:    title,
		Category: category,
		Date:     date,
		Tags:     datatypes.NewJSONSlice(tags),
	}
}

func titles(projects []model.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Title)
	}
	return out
}

func sample() []model.Project {
	return []model.Project{
		project("Chat App", "web", "2023-05-01", "react", "websocket"),
		project("Portfolio Site", "web", "2024-01-15", "react", "design"),
		project("Trading Bot", "backend", "2022-11-20", "go", "finance"),
		project("ML Pipeline", "data", "2024-06-10", "python"),
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{
			name: "empty query returns everything in store order",
			q:    Query{},
			want: []string{"Chat App", "Portfolio Site", "Trading Bot", "ML Pipeline"},
		},
		{
			name: "search matches title case-insensitively",
			q:    Query{Search: "portfolio"},
			want: []string{"Portfolio Site"},
		},
		{
			name: "search matches tags",
			q:    Query{Search: "FINANCE"},
			want: []string{"Trading Bot"},
		},
		{
			name: "category all is a sentinel for everything",
			q:    Query{Category: CategoryAll},
			want: []string{"Chat App", "Portfolio Site", "Trading Bot", "ML Pipeline"},
		},
		{
			name: "category is exact",
			q:    Query{Category: "web"},
			want: []string{"Chat App", "Portfolio Site"},
		},
		{
			name: "tags are conjunctive",
			q:    Query{Tags: []string{"react", "design"}},
			want: []string{"Portfolio Site"},
		},
		{
			name: "filters combine with AND",
			q:    Query{Search: "app", Category: "web", Tags: []string{"react"}},
			want: []string{"Chat App"},
		},
		{
			name: "no match",
			q:    Query{Search: "blockchain"},
			want: []string{},
		},
		{
			name: "sort newest",
			q:    Query{Sort: SortNewest},
			want: []string{"ML Pipeline", "Portfolio Site", "Chat App", "Trading Bot"},
		},
		{
			name: "sort oldest",
			q:    Query{Sort: SortOldest},
			want: []string{"Trading Bot", "Chat App", "Portfolio Site", "ML Pipeline"},
		},
		{
			name: "sort by name",
			q:    Query{Sort: SortName},
			want: []string{"Chat App", "ML Pipeline", "Portfolio Site", "Trading Bot"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sample(), tt.q)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	in := sample()
	_ = Filter(in, Query{Sort: SortName, Category: "web"})
	assert.Equal(t, []string{"Chat App", "Portfolio Site", "Trading Bot", "ML Pipeline"}, titles(in))
}

func TestSort_MissingDatesSortOldest(t *testing.T) {
	in := []model.Project{
		project("Dated", "web", "2024-01-01"),
		project("Undated", "web", ""),
		project("Garbled", "web", "not-a-date"),
	}
	Sort(in, SortNewest)
	assert.Equal(t, "Dated", in[0].Title)

	Sort(in, SortOldest)
	assert.Equal(t, "Dated", in[2].Title)
}

func TestSort_NameIgnoresCase(t *testing.T) {
	in := []model.Project{
		project("zeta", "web", ""),
		project("Alpha", "web", ""),
		project("beta", "web", ""),
	}
	Sort(in, SortName)
	assert.Equal(t, []string{"Alpha", "beta", "zeta"}, titles(in))
}

func TestSort_UnknownKeyKeepsOrder(t *testing.T) {
	in := sample()
	Sort(in, "bogus")
	assert.Equal(t, []string{"Chat App", "Portfolio Site", "Trading Bot", "ML Pipeline"}, titles(in))
}

func TestTagUnion(t *testing.T) {
	got := TagUnion(sample())
	assert.Equal(t, []string{"react", "websocket", "design", "go", "finance", "python"}, got)

	assert.Empty(t, TagUnion(nil))
}
