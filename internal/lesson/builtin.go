package lesson

import (
	"fmt"
	"sort"

	"github.com/dataquill/tutorkit/internal/engine"
	"github.com/dataquill/tutorkit/internal/errors"
)

// Builtin returns the lessons compiled into the binary, keyed by name.
// External lesson files loaded with Load take the same shape.
func Builtin() map[string]*Lesson {
	lessons := []*Lesson{
		penguinsBasics(),
		imdbJoins(),
		pypiUDFs(),
	}
	m := make(map[string]*Lesson, len(lessons))
	for _, l := range lessons {
		m[l.Name] = l
	}
	return m
}

// Find resolves a lesson name against the built-in set.
func Find(name string) (*Lesson, error) {
	l, ok := Builtin()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrLessonUnknown, name)
	}
	return l, nil
}

// BuiltinNames lists the built-in lessons, sorted.
func BuiltinNames() []string {
	b := Builtin()
	names := make([]string, 0, len(b))
	for n := range b {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func penguinsBasics() *Lesson {
	return &Lesson{
		Name:   "penguins-basics",
		Title:  "Getting started: the penguins dataset",
		Family: "penguins",
		Steps: []Step{
			{
				Kind: StepNote,
				Text: "The penguins table holds measurements collected at Palmer Station,\nAntarctica. Let's look at a few rows.",
			},
			{
				Kind: StepQuery,
				SQL:  "SELECT * FROM penguins LIMIT 5",
			},
			{
				Kind: StepNote,
				Text: "You can also build a small in-memory table of your own and query it\nlike any other table.",
			},
			{
				Kind: StepExec,
				SQL: "CREATE TEMP TABLE field_notes AS\n" +
					"SELECT 'Adelie' AS species, 2007 AS first_seen UNION ALL\n" +
					"SELECT 'Gentoo', 2008 UNION ALL\n" +
					"SELECT 'Chinstrap', 2009",
			},
			{
				Kind: StepQuery,
				SQL:  "SELECT * FROM field_notes",
			},
			{
				Kind: StepNote,
				Text: "Filters work the way you'd expect. Saving a result gives it a name;\nthe most recent saved result is always available as _.",
			},
			{
				Kind: StepQuery,
				SQL:  "SELECT species, island, body_mass_g FROM penguins WHERE species = 'Adelie'",
				Save: "adelie",
			},
			{
				Kind: StepQuery,
				SQL:  "SELECT count(*) AS n_adelie FROM _",
			},
			{
				Kind: StepNote,
				Text: "Column selectors pick columns by name pattern or type instead of\nlisting them out.",
			},
			{
				Kind:    StepQuery,
				SQL:     "SELECT * FROM penguins LIMIT 5",
				Columns: &engine.Selector{Suffix: "_mm"},
			},
			{
				Kind: StepNote,
				Text: "Referencing a column that does not exist is an error. Note the exact\nmessage; you'll see it often.",
			},
			{
				Kind:          StepExpectError,
				SQL:           "SELECT speciez FROM penguins",
				ErrorContains: "no such column",
			},
			{
				Kind:          StepExpectError,
				SQL:           "SELECT CAST(bill_length_mm AS ) FROM penguins",
				ErrorContains: "syntax error",
			},
			{
				Kind:     StepExercise,
				Text:     "Exercise 01: using the saved adelie result, compute the mean body\nmass per island.",
				Exercise: "01",
				Inputs:   []string{"adelie"},
			},
		},
	}
}

func imdbJoins() *Lesson {
	return &Lesson{
		Name:   "imdb-joins",
		Title:  "Joining tables: IMDB titles and ratings",
		Family: "imdb",
		Steps: []Step{
			{
				Kind: StepNote,
				Text: "Two extracts this time: title_basics describes titles, title_ratings\nholds their ratings. They share the tconst key.",
			},
			{
				Kind: StepQuery,
				SQL:  "SELECT * FROM title_basics LIMIT 5",
			},
			{
				Kind: StepQuery,
				SQL:  "SELECT * FROM title_ratings LIMIT 5",
			},
			{
				Kind: StepNote,
				Text: "An inner join lines the two up.",
			},
			{
				Kind: StepQuery,
				SQL: "SELECT b.primary_title, r.average_rating, r.num_votes\n" +
					"FROM title_basics b JOIN title_ratings r USING (tconst)\n" +
					"ORDER BY r.average_rating DESC, r.num_votes DESC",
				Save: "rated",
			},
			{
				Kind: StepQuery,
				SQL:  "SELECT count(*) AS rated_titles FROM _",
			},
			{
				Kind:     StepExercise,
				Text:     "Exercise 01: from the saved rated result, keep titles with at least\n1000 votes and show the top 5 by rating.",
				Exercise: "01",
				Inputs:   []string{"rated"},
			},
		},
	}
}

func pypiUDFs() *Lesson {
	return &Lesson{
		Name:   "pypi-udf",
		Title:  "User-defined functions: package metadata",
		Family: "pypi",
		Steps: []Step{
			{
				Kind: StepNote,
				Text: "The packages extract lists a handful of package names. Plain SQL\nfirst.",
			},
			{
				Kind: StepQuery,
				SQL:  "SELECT * FROM packages LIMIT 5",
			},
			{
				Kind: StepNote,
				Text: "Registered Go functions are callable straight from SQL. These two\nconsult the live package index, so expect a little latency.",
			},
			{
				Kind: StepQuery,
				SQL:  "SELECT name, latest_release(name) AS latest FROM packages LIMIT 3",
			},
			{
				Kind: StepQuery,
				SQL:  "SELECT name, vulnerability_count(name) AS vulns FROM packages LIMIT 3",
			},
			{
				Kind:     StepExercise,
				Text:     "Exercise 01: count releases per package from the releases extract.",
				Exercise: "01",
				Inputs:   nil,
			},
		},
	}
}
