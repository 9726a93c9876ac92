package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskbridge-mcp-server/internal/domain"
)

// callLog records service calls across fakes in the order they happen.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

func (l *callLog) contains(call string) bool {
	for _, c := range l.snapshot() {
		if c == call {
			return true
		}
	}
	return false
}

type fakeTrello struct {
	log *callLog

	mu      sync.Mutex
	boards  []domain.Board
	board   *domain.Board
	cards   []domain.Card
	lists   []domain.List
	readErr error

	createErr error
	moveErr   error
	deleteErr error
	created   []domain.CardCreate
	deleted   []string
}

func (f *fakeTrello) GetBoards(context.Context) ([]domain.Board, error) {
	f.log.add("trello.GetBoards")
	return f.boards, f.readErr
}

func (f *fakeTrello) GetBoard(_ context.Context, boardID string) (*domain.Board, error) {
	f.log.add("trello.GetBoard:%s", boardID)
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.board, nil
}

func (f *fakeTrello) GetBoardCards(_ context.Context, boardID string) ([]domain.Card, error) {
	f.log.add("trello.GetBoardCards:%s", boardID)
	return f.cards, f.readErr
}

func (f *fakeTrello) GetBoardLists(_ context.Context, boardID string) ([]domain.List, error) {
	f.log.add("trello.GetBoardLists:%s", boardID)
	return f.lists, f.readErr
}

func (f *fakeTrello) CreateCard(_ context.Context, card *domain.CardCreate) (*domain.Card, error) {
	f.log.add("trello.CreateCard:%s", card.IDList)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	f.created = append(f.created, *card)
	f.mu.Unlock()
	return &domain.Card{
		ID:     "new-card",
		Name:   card.Name,
		Desc:   card.Desc,
		IDList: card.IDList,
		URL:    "https://trello.com/c/new-card",
	}, nil
}

func (f *fakeTrello) MoveCard(_ context.Context, cardID, listID string) (*domain.Card, error) {
	f.log.add("trello.MoveCard:%s:%s", cardID, listID)
	if f.moveErr != nil {
		return nil, f.moveErr
	}
	for _, card := range f.cards {
		if card.ID == cardID {
			card.IDList = listID
			return &card, nil
		}
	}
	return &domain.Card{ID: cardID, Name: cardID, IDList: listID}, nil
}

func (f *fakeTrello) DeleteCard(_ context.Context, cardID string) error {
	f.log.add("trello.DeleteCard:%s", cardID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, cardID)
	f.mu.Unlock()
	return nil
}

type fakeSlack struct {
	log *callLog

	channels []domain.Channel
	messages []domain.Message
	readErr  error
	postErr  error

	historyLimit int
	posted       []string
}

func (f *fakeSlack) ListChannels(context.Context) ([]domain.Channel, error) {
	f.log.add("slack.ListChannels")
	return f.channels, f.readErr
}

func (f *fakeSlack) ChannelHistory(_ context.Context, channelID string, limit int) ([]domain.Message, error) {
	f.log.add("slack.ChannelHistory:%s", channelID)
	f.historyLimit = limit
	return f.messages, f.readErr
}

func (f *fakeSlack) PostMessage(_ context.Context, channelID, text string) (*domain.PostedMessage, error) {
	f.log.add("slack.PostMessage:%s", channelID)
	if f.postErr != nil {
		return nil, f.postErr
	}
	f.posted = append(f.posted, text)
	return &domain.PostedMessage{Channel: channelID, TS: "1700000000.000100"}, nil
}

type fakeGitHub struct {
	log *callLog

	repo      *domain.Repository
	issues    []domain.Issue
	commits   []domain.Commit
	readErr   error
	createErr error

	lastState  string
	lastBranch string
	lastLimit  int
	created    []domain.IssueCreate
}

func (f *fakeGitHub) GetRepository(_ context.Context, owner, repo string) (*domain.Repository, error) {
	f.log.add("github.GetRepository:%s/%s", owner, repo)
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.repo, nil
}

func (f *fakeGitHub) ListIssues(_ context.Context, owner, repo, state string, limit int) ([]domain.Issue, error) {
	f.log.add("github.ListIssues:%s/%s", owner, repo)
	f.lastState, f.lastLimit = state, limit
	return f.issues, f.readErr
}

func (f *fakeGitHub) CreateIssue(_ context.Context, owner, repo string, issue *domain.IssueCreate) (*domain.Issue, error) {
	f.log.add("github.CreateIssue:%s/%s", owner, repo)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, *issue)
	labels := make([]domain.Label, 0, len(issue.Labels))
	for _, name := range issue.Labels {
		labels = append(labels, domain.Label{Name: name})
	}
	return &domain.Issue{
		Number:  42,
		Title:   issue.Title,
		Body:    issue.Body,
		HTMLURL: fmt.Sprintf("https://github.com/%s/%s/issues/42", owner, repo),
		User:    &domain.User{Login: "taskbridge-bot"},
		Labels:  labels,
	}, nil
}

func (f *fakeGitHub) ListCommits(_ context.Context, owner, repo, branch string, limit int) ([]domain.Commit, error) {
	f.log.add("github.ListCommits:%s/%s", owner, repo)
	f.lastBranch, f.lastLimit = branch, limit
	return f.commits, f.readErr
}

// fullServices configures credentials and defaults for every service.
func fullServices() domain.ServicesConfig {
	return domain.ServicesConfig{
		Trello: domain.TrelloConfig{APIKey: "key", Token: "token", BoardID: "b1"},
		Slack:  domain.SlackConfig{BotToken: "xoxb-test"},
		GitHub: domain.GitHubConfig{Token: "ghp_test", Owner: "acme", Repo: "widgets"},
	}
}

// testEnv wires every handler over fakes, the way main does over real clients.
type testEnv struct {
	log         *callLog
	trello      *fakeTrello
	slack       *fakeSlack
	github      *fakeGitHub
	integration *IntegrationHandler
	catalog     *Catalog
	router      *RequestRouter
}

func newTestEnv(services domain.ServicesConfig) *testEnv {
	log := &callLog{}
	trello := &fakeTrello{
		log:    log,
		boards: []domain.Board{{ID: "b1", Name: "Roadmap", URL: "https://trello.com/b/b1"}},
		board:  &domain.Board{ID: "b1", Name: "Roadmap"},
		lists:  []domain.List{{ID: "l1", Name: "To Do"}, {ID: "l2", Name: "Done"}},
		cards: []domain.Card{
			{ID: "c1", Name: "Fix login", IDList: "l1"},
			{ID: "c2", Name: "Write docs", IDList: "l1"},
			{ID: "c3", Name: "Ship", IDList: "l2"},
		},
	}
	slack := &fakeSlack{
		log: log,
		channels: []domain.Channel{
			{ID: "C1", Name: "general", NumMembers: 10},
			{ID: "C2", Name: "random", NumMembers: 5},
			{ID: "C3", Name: "dev", NumMembers: 3},
		},
		messages: []domain.Message{{User: "U1", Text: "hello", TS: "1700000000.000100"}},
	}
	github := &fakeGitHub{
		log:  log,
		repo: &domain.Repository{FullName: "acme/widgets", HTMLURL: "https://github.com/acme/widgets"},
	}

	authManager := domain.NewAuthenticationManagerFromConfig(services)
	resolver := NewResolver(trello, services)
	trelloHandler := NewTrelloHandler(trello, resolver, authManager, time.UTC)
	slackHandler := NewSlackHandler(slack, authManager, time.UTC)
	githubHandler := NewGitHubHandler(github, resolver, authManager, time.UTC)
	integration := NewIntegrationHandler(trelloHandler, slackHandler, githubHandler, NewOrchestrator(nil), authManager)

	catalog := NewCatalog(trelloHandler, slackHandler, githubHandler, integration)
	return &testEnv{
		log:         log,
		trello:      trello,
		slack:       slack,
		github:      github,
		integration: integration,
		catalog:     catalog,
		router:      NewRequestRouter(catalog),
	}
}

func (e *testEnv) call(name string, args map[string]interface{}) *domain.ToolResponse {
	return e.router.Dispatch(context.Background(), &domain.ToolRequest{Name: name, Arguments: args})
}
