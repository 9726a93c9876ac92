package application

import (
	"strings"
	"testing"

	"taskbridge-mcp-server/internal/domain"
)

func TestGitHubHandler_GetRepoInfo(t *testing.T) {
	env := newTestEnv(fullServices())

	resp := env.call(ToolGitHubGetRepoInfo, nil)
	if resp.IsError {
		t.Fatalf("unexpected error: %s", resp.Text())
	}
	if !strings.HasPrefix(resp.Text(), "📋 Repository: acme/widgets\n🔗 URL: https://github.com/acme/widgets\n") {
		t.Errorf("unexpected text: %q", resp.Text())
	}
	assertCalls(t, env.log, "github.GetRepository:acme/widgets")

	env.call(ToolGitHubGetRepoInfo, map[string]interface{}{"owner": "other", "repo": "thing"})
	if !env.log.contains("github.GetRepository:other/thing") {
		t.Errorf("expected explicit repository, got %v", env.log.snapshot())
	}
}

func TestGitHubHandler_ListIssues(t *testing.T) {
	env := newTestEnv(fullServices())

	resp := env.call(ToolGitHubListIssues, nil)
	assertText(t, resp, "📋 Repository issues (0 found):\n\n📭 No issues found.")
	if env.github.lastState != "open" || env.github.lastLimit != 20 {
		t.Errorf("expected open/20 defaults, got %s/%d", env.github.lastState, env.github.lastLimit)
	}

	env.call(ToolGitHubListIssues, map[string]interface{}{"state": "closed", "limit": 5.0})
	if env.github.lastState != "closed" || env.github.lastLimit != 5 {
		t.Errorf("expected closed/5, got %s/%d", env.github.lastState, env.github.lastLimit)
	}
}

func TestGitHubHandler_CreateIssue(t *testing.T) {
	env := newTestEnv(fullServices())

	resp := env.call(ToolGitHubCreateIssue, map[string]interface{}{
		"title":  "Crash on start",
		"body":   "Stack trace attached",
		"labels": []interface{}{"bug", "p1"},
	})
	assertText(t, resp, "✅ Issue created successfully!\n"+
		"📝 Title: Crash on start\n"+
		"🔢 Number: #42\n"+
		"🔗 URL: https://github.com/acme/widgets/issues/42\n"+
		"👤 Author: taskbridge-bot\n"+
		"🏷️ Labels: bug, p1\n")

	if len(env.github.created) != 1 {
		t.Fatalf("expected one issue, got %d", len(env.github.created))
	}
	if got := env.github.created[0]; got.Body != "Stack trace attached" || len(got.Labels) != 2 {
		t.Errorf("unexpected issue payload: %+v", got)
	}
}

func TestGitHubHandler_CreateIssueWithoutLabels(t *testing.T) {
	env := newTestEnv(fullServices())

	resp := env.call(ToolGitHubCreateIssue, map[string]interface{}{"title": "Crash"})
	if resp.IsError {
		t.Fatalf("unexpected error: %s", resp.Text())
	}
	if labels := env.github.created[0].Labels; labels == nil || len(labels) != 0 {
		t.Errorf("expected an empty label list, got %#v", labels)
	}
	if !strings.Contains(resp.Text(), "🏷️ Labels: None") {
		t.Errorf("unexpected text: %q", resp.Text())
	}
}

func TestGitHubHandler_ListCommits(t *testing.T) {
	env := newTestEnv(fullServices())

	env.call(ToolGitHubListCommits, nil)
	if env.github.lastBranch != "main" || env.github.lastLimit != 20 {
		t.Errorf("expected main/20 defaults, got %s/%d", env.github.lastBranch, env.github.lastLimit)
	}

	env.call(ToolGitHubListCommits, map[string]interface{}{"branch": "develop", "limit": 3.0})
	if env.github.lastBranch != "develop" || env.github.lastLimit != 3 {
		t.Errorf("expected develop/3, got %s/%d", env.github.lastBranch, env.github.lastLimit)
	}
}

func TestGitHubHandler_CommitStats(t *testing.T) {
	env := newTestEnv(fullServices())
	env.github.commits = []domain.Commit{
		commitAt("alice", "2024-01-10T00:00:00Z"),
		commitAt("alice", "2024-01-09T00:00:00Z"),
		commitAt("bob", "2024-01-08T00:00:00Z"),
	}

	resp := env.call(ToolGitHubCommitStats, nil)
	if resp.IsError {
		t.Fatalf("unexpected error: %s", resp.Text())
	}
	if env.github.lastBranch != "" || env.github.lastLimit != 100 {
		t.Errorf("expected default branch and limit 100, got %q/%d", env.github.lastBranch, env.github.lastLimit)
	}

	text := resp.Text()
	for _, want := range []string{
		"📊 *Commit Statistics - acme/widgets*",
		"• Commits analyzed: *3*",
		"• Contributors: *2*",
		"1. *alice*\n   • Commits: 2 (66.7%)\n   • Status: 🔥 Above average",
		"2. *bob*\n   • Commits: 1 (33.3%)\n   • Status: 📉 Below average",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}
}

func TestGitHubHandler_Errors(t *testing.T) {
	t.Run("no repository configured", func(t *testing.T) {
		services := fullServices()
		services.GitHub.Repo = ""
		env := newTestEnv(services)

		resp := env.call(ToolGitHubListIssues, nil)
		assertError(t, resp, "Error: no GitHub repository specified: pass repo or set GITHUB_REPO")
		assertCalls(t, env.log)
	})

	t.Run("no owner configured", func(t *testing.T) {
		services := fullServices()
		services.GitHub.Owner = ""
		env := newTestEnv(services)

		resp := env.call(ToolGitHubGetRepoInfo, nil)
		assertError(t, resp, "Error: no GitHub owner specified: pass owner or set GITHUB_OWNER")
	})

	t.Run("upstream failure", func(t *testing.T) {
		env := newTestEnv(fullServices())
		env.github.readErr = domain.NewHTTPError("GitHub", 500, "")

		resp := env.call(ToolGitHubListIssues, nil)
		assertError(t, resp, "Error: failed to list issues: GitHub API returned HTTP 500: Internal Server Error")
	})

	t.Run("missing credentials", func(t *testing.T) {
		services := fullServices()
		services.GitHub.Token = ""
		env := newTestEnv(services)

		resp := env.call(ToolGitHubCreateIssue, map[string]interface{}{"title": "Crash"})
		assertError(t, resp, "Error: GitHub credentials are not configured (missing GITHUB_TOKEN)")
		assertCalls(t, env.log)
	})

	t.Run("labels of the wrong type", func(t *testing.T) {
		env := newTestEnv(fullServices())

		resp := env.call(ToolGitHubCreateIssue, map[string]interface{}{"title": "Crash", "labels": 3.0})
		assertError(t, resp, "Error: parameter labels must be an array of strings")
		assertCalls(t, env.log)
	})
}

func commitAt(author, date string) domain.Commit {
	return domain.Commit{
		SHA: "0123456789abcdef",
		Commit: domain.CommitDetail{
			Message: "change",
			Author:  &domain.CommitAuthor{Name: author, Date: date},
		},
	}
}
