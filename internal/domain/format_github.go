package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormatRepository renders repository metadata.
func FormatRepository(repo *Repository, loc *time.Location) string {
	lines := []string{
		fmt.Sprintf("📋 Repository: %s", repo.FullName),
		fmt.Sprintf("🔗 URL: %s", repo.HTMLURL),
		fmt.Sprintf("📝 Description: %s", orPlaceholder(repo.Description, PlaceholderDescription)),
		fmt.Sprintf("⭐ Stars: %d", repo.StargazersCount),
		fmt.Sprintf("🍴 Forks: %d", repo.ForksCount),
		fmt.Sprintf("🐛 Issues: %d", repo.OpenIssuesCount),
		fmt.Sprintf("📅 Created: %s", FormatDate(repo.CreatedAt, loc)),
		fmt.Sprintf("🔄 Last update: %s", FormatDate(repo.UpdatedAt, loc)),
		fmt.Sprintf("🌿 Main language: %s", orPlaceholder(repo.Language, PlaceholderUnknown)),
		fmt.Sprintf("🔒 Private: %s", yesNo(repo.Private)),
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatIssues renders a page of issues.
func FormatIssues(issues []Issue, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Repository issues (%d found):\n\n", len(issues))
	if len(issues) == 0 {
		b.WriteString("📭 No issues found.")
		return b.String()
	}

	for i, issue := range issues {
		description := PlaceholderDescription
		if issue.Body != "" {
			description = Truncate(issue.Body)
		}
		fmt.Fprintf(&b, "%d. 🐛 **%s**\n", i+1, issue.Title)
		fmt.Fprintf(&b, "   📝 %s\n", description)
		fmt.Fprintf(&b, "   👤 Author: %s\n", issueAuthor(issue))
		fmt.Fprintf(&b, "   🏷️ Labels: %s\n", labelNames(issue.Labels))
		fmt.Fprintf(&b, "   📅 Created: %s\n", FormatDate(issue.CreatedAt, loc))
		fmt.Fprintf(&b, "   🔗 URL: %s\n\n", issue.HTMLURL)
	}
	return b.String()
}

// FormatIssueCreated renders the confirmation of a created issue.
func FormatIssueCreated(issue *Issue) string {
	lines := []string{
		"✅ Issue created successfully!",
		fmt.Sprintf("📝 Title: %s", issue.Title),
		fmt.Sprintf("🔢 Number: #%d", issue.Number),
		fmt.Sprintf("🔗 URL: %s", issue.HTMLURL),
		fmt.Sprintf("👤 Author: %s", issueAuthor(*issue)),
		fmt.Sprintf("🏷️ Labels: %s", labelNames(issue.Labels)),
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatCommits renders a page of commits, one subject line each.
func FormatCommits(commits []Commit, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Repository commits (%d found):\n\n", len(commits))
	if len(commits) == 0 {
		b.WriteString("📭 No commits found.")
		return b.String()
	}

	for i, commit := range commits {
		date := PlaceholderUnknown
		if commit.Commit.Author != nil && commit.Commit.Author.Date != "" {
			date = FormatDateTime(commit.Commit.Author.Date, loc)
		}
		fmt.Fprintf(&b, "%d. 📝 **%s**\n", i+1, firstLine(commit.Commit.Message))
		fmt.Fprintf(&b, "   👤 Author: %s\n", commitAuthor(commit))
		fmt.Fprintf(&b, "   📅 Date: %s\n", date)
		fmt.Fprintf(&b, "   🔗 SHA: %s\n", shortSHA(commit.SHA))
		fmt.Fprintf(&b, "   🔗 URL: %s\n\n", commit.HTMLURL)
	}
	return b.String()
}

// AuthorCount is the number of commits by one author.
type AuthorCount struct {
	Author string
	Count  int
}

// CommitStats summarizes commit activity per author.
type CommitStats struct {
	Repository   string
	TotalCommits int
	TotalAuthors int
	// AveragePerAuthor is rounded to two decimals.
	AveragePerAuthor float64
	// ByAuthor is sorted by count, highest first; ties keep first-seen order.
	ByAuthor []AuthorCount
}

// commitStatsRankingSize is the number of authors listed by FormatCommitStats.
const commitStatsRankingSize = 10

// ComputeCommitStats counts commits per author.
func ComputeCommitStats(repository string, commits []Commit) CommitStats {
	var counts []AuthorCount
	index := make(map[string]int)
	for _, commit := range commits {
		author := commitAuthor(commit)
		i, seen := index[author]
		if !seen {
			i = len(counts)
			index[author] = i
			counts = append(counts, AuthorCount{Author: author})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })

	stats := CommitStats{
		Repository:   repository,
		TotalCommits: len(commits),
		TotalAuthors: len(counts),
		ByAuthor:     counts,
	}
	if len(counts) > 0 {
		stats.AveragePerAuthor = round2(float64(len(commits)) / float64(len(counts)))
	}
	return stats
}

// FormatCommitStats renders the contributor ranking.
func FormatCommitStats(stats CommitStats) string {
	if stats.TotalCommits == 0 {
		return fmt.Sprintf("📭 No commits found in %s.", stats.Repository)
	}

	lines := []string{
		fmt.Sprintf("📊 *Commit Statistics - %s*\n", stats.Repository),
		"📈 *Overview:*",
		fmt.Sprintf("• Commits analyzed: *%d*", stats.TotalCommits),
		fmt.Sprintf("• Contributors: *%d*", stats.TotalAuthors),
		fmt.Sprintf("• Average commits per contributor: *%s*\n", formatFloat(stats.AveragePerAuthor)),
		"👥 *Contributor ranking:*",
	}

	for i, entry := range stats.ByAuthor {
		if i == commitStatsRankingSize {
			break
		}
		percent := float64(entry.Count) / float64(stats.TotalCommits) * 100
		status := "📉 Below average"
		switch count := float64(entry.Count); {
		case count > stats.AveragePerAuthor:
			status = "🔥 Above average"
		case count == stats.AveragePerAuthor:
			status = "📊 Average"
		}
		lines = append(lines,
			fmt.Sprintf("%d. *%s*", i+1, entry.Author),
			fmt.Sprintf("   • Commits: %d (%.1f%%)", entry.Count, percent),
			fmt.Sprintf("   • Status: %s", status),
		)
	}

	if remaining := len(stats.ByAuthor) - commitStatsRankingSize; remaining > 0 {
		lines = append(lines, fmt.Sprintf("\n_... and %d more contributors_", remaining))
	}

	return strings.Join(lines, "\n")
}

// ActivitySummary combines recent GitHub and Trello activity.
type ActivitySummary struct {
	Days          int
	RecentCommits int
	TrelloCards   int
}

// CountCommitsSince returns the number of commits authored at or after since.
// Commits without a parseable author date are not counted.
func CountCommitsSince(commits []Commit, since time.Time) int {
	n := 0
	for _, commit := range commits {
		if commit.Commit.Author == nil {
			continue
		}
		t, ok := parseISO(commit.Commit.Author.Date)
		if ok && !t.Before(since) {
			n++
		}
	}
	return n
}

// FormatActivitySummary renders the activity summary with a short assessment.
func FormatActivitySummary(summary ActivitySummary) string {
	lines := []string{
		fmt.Sprintf("📊 *Activity summary (last %d days)*\n", summary.Days),
		"🐙 *GitHub:*",
		fmt.Sprintf("• Commits in the last %d days: *%d*\n", summary.Days, summary.RecentCommits),
		"📋 *Trello:*",
		fmt.Sprintf("• Active cards on the board: *%d*\n", summary.TrelloCards),
	}

	switch {
	case summary.RecentCommits > 20:
		lines = append(lines, "💪 *Assessment:* Very active development team!")
	case summary.RecentCommits > 10:
		lines = append(lines, "👍 *Assessment:* Good commit frequency.")
	case summary.RecentCommits > 0:
		lines = append(lines, "⚠️ *Assessment:* Few recent commits.")
	default:
		lines = append(lines, fmt.Sprintf("❌ *Assessment:* No commits in the last %d days.", summary.Days))
	}

	return strings.Join(lines, "\n")
}

func issueAuthor(issue Issue) string {
	if issue.User == nil {
		return PlaceholderUnknown
	}
	return orPlaceholder(issue.User.Login, PlaceholderUnknown)
}

func commitAuthor(commit Commit) string {
	if commit.Commit.Author == nil {
		return PlaceholderUnknown
	}
	return orPlaceholder(commit.Commit.Author.Name, PlaceholderUnknown)
}

func labelNames(labels []Label) string {
	if len(labels) == 0 {
		return PlaceholderNone
	}
	names := make([]string, 0, len(labels))
	for _, label := range labels {
		names = append(names, label.Name)
	}
	return strings.Join(names, ", ")
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
