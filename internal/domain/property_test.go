package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestTruncateProperties verifies the bounds of Truncate for arbitrary text.
func TestTruncateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// Property: the result never exceeds the limit plus the ellipsis
	properties.Property("truncated length is bounded", prop.ForAll(
		func(s string) bool {
			return utf8.RuneCountInString(Truncate(s)) <= TruncateLength+utf8.RuneCountInString(Ellipsis)
		},
		gen.AnyString(),
	))

	// Property: short strings are unchanged, long strings keep their prefix
	properties.Property("truncation preserves the prefix", prop.ForAll(
		func(s string) bool {
			got := Truncate(s)
			runes := []rune(s)
			if len(runes) <= TruncateLength {
				return got == s
			}
			return got == string(runes[:TruncateLength])+Ellipsis
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// TestProgressBarProperties verifies the bar always has ten cells.
func TestProgressBarProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("bar has ten cells", prop.ForAll(
		func(percent float64) bool {
			bar := progressBar(percent)
			return utf8.RuneCountInString(bar) == 10 &&
				strings.Count(bar, "█")+strings.Count(bar, "░") == 10
		},
		gen.Float64Range(-50, 150),
	))

	properties.TestingRun(t)
}

// TestBoardStatsProperties verifies the distribution accounts for every card.
func TestBoardStatsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	lists := []List{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}}

	properties.Property("counts sum to total and are sorted", prop.ForAll(
		func(picks []int) bool {
			listIDs := []string{"a", "b", "c", "missing"}
			cards := make([]Card, 0, len(picks))
			for _, i := range picks {
				cards = append(cards, Card{IDList: listIDs[i]})
			}
			stats := ComputeBoardStats(cards, lists)

			sum := 0
			for i, entry := range stats.CardsByList {
				sum += entry.Count
				if i > 0 && stats.CardsByList[i-1].Count < entry.Count {
					return false
				}
			}
			return sum == stats.TotalCards && stats.TotalCards == len(picks)
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}

// TestCommitStatsProperties verifies the contributor count and totals.
func TestCommitStatsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("authors are distinct and counts sum to total", prop.ForAll(
		func(picks []int) bool {
			names := []string{"alice", "bob", "carol"}
			commits := make([]Commit, 0, len(picks))
			distinct := make(map[string]bool)
			for _, i := range picks {
				author := names[i]
				commits = append(commits, Commit{Commit: CommitDetail{Author: &CommitAuthor{Name: author}}})
				distinct[author] = true
			}
			stats := ComputeCommitStats("r", commits)

			sum := 0
			for _, entry := range stats.ByAuthor {
				sum += entry.Count
			}
			return sum == len(picks) && stats.TotalAuthors == len(distinct)
		},
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}
