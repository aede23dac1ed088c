package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"popularchoice/models"
)

// memStore keeps each session as one JSON document, like the real store:
// a save either lands whole or not at all, so a torn write between two
// concurrent actions would show up as an impossible field mix.
type memStore struct {
	mu    sync.Mutex
	docs  map[string][]byte
	finds int
	saves int
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) FindByCode(_ context.Context, code string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++

	data, ok := m.docs[code]
	if !ok {
		return nil, ErrSessionNotFound
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (m *memStore) Insert(_ context.Context, session *models.Session) error {
	return m.put(session)
}

func (m *memStore) Save(_ context.Context, session *models.Session) error {
	return m.put(session)
}

func (m *memStore) put(session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.docs[session.Code] = data
	return nil
}

type broadcastCall struct {
	code        string
	messageType string
	payload     interface{}
}

type fakeBoard struct {
	mu         sync.Mutex
	watching   map[string]bool
	broadcasts []broadcastCall
}

func newFakeBoard(codes ...string) *fakeBoard {
	watching := make(map[string]bool)
	for _, code := range codes {
		watching[code] = true
	}
	return &fakeBoard{watching: watching}
}

func (b *fakeBoard) BroadcastToBoard(code, messageType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broadcasts = append(b.broadcasts, broadcastCall{code: code, messageType: messageType, payload: payload})
}

func (b *fakeBoard) HasSubscribers(code string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.watching[code]
}

func (b *fakeBoard) calls() []broadcastCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]broadcastCall{}, b.broadcasts...)
}

func TestValidateCode(t *testing.T) {
	valid := []string{"ABC123", "ZZZZZZ", "000000", "A1B2C3"}
	for _, code := range valid {
		if err := ValidateCode(code); err != nil {
			t.Errorf("ValidateCode(%q): unexpected error %v", code, err)
		}
	}

	invalid := []string{"", "ABC", "ABC1234", "abc123", "ABC12!", "AB 123"}
	for _, code := range invalid {
		if err := ValidateCode(code); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("ValidateCode(%q): want ErrInvalidCode, got %v", code, err)
		}
	}
}

func TestController_InvalidCodeNeverTouchesStore(t *testing.T) {
	store := newMemStore()
	ctrl := NewSessionController(store, newFakeBoard())

	_, err := ctrl.Configure(context.Background(), "BAD", "Finals", models.Team{Name: "Red"}, models.Team{Name: "Blue"})
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("want ErrInvalidCode, got %v", err)
	}
	if store.finds != 0 || store.saves != 0 {
		t.Fatalf("invalid code must be rejected before storage, finds=%d saves=%d", store.finds, store.saves)
	}
}

func TestController_UnwatchedUnknownCodeIsNotFound(t *testing.T) {
	store := newMemStore()
	ctrl := NewSessionController(store, newFakeBoard())

	if _, err := ctrl.Status(context.Background(), "ABC123"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("want ErrSessionNotFound, got %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("no session may be created for an unwatched code, saves=%d", store.saves)
	}
}

func TestController_LazyCreateWhenBoardIsWatching(t *testing.T) {
	store := newMemStore()
	board := newFakeBoard("ABC123")
	ctrl := NewSessionController(store, board)

	phase, err := ctrl.Status(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if phase != models.PhaseSetup {
		t.Fatalf("lazily created session must start in setup, got %q", phase)
	}

	// The code was normalized to uppercase before anything else
	if _, err := store.FindByCode(context.Background(), "ABC123"); err != nil {
		t.Fatalf("session not persisted under normalized code: %v", err)
	}

	calls := board.calls()
	if len(calls) != 1 || calls[0].messageType != "game_connected" {
		t.Fatalf("want one game_connected broadcast, got %+v", calls)
	}
}

func TestController_ConfigurePersistsAndBroadcasts(t *testing.T) {
	store := newMemStore()
	board := newFakeBoard("ABC123")
	ctrl := NewSessionController(store, board)

	session, err := ctrl.Configure(context.Background(), "ABC123", "Finals", models.Team{Name: "Red"}, models.Team{Name: "Blue"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Phase != models.PhaseSelection {
		t.Fatalf("want phase %q, got %q", models.PhaseSelection, session.Phase)
	}

	stored, err := store.FindByCode(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if stored.Title != "Finals" || stored.Phase != models.PhaseSelection {
		t.Fatalf("persisted state is stale: %+v", stored)
	}

	calls := board.calls()
	last := calls[len(calls)-1]
	if last.messageType != "game_state" || last.code != "ABC123" {
		t.Fatalf("want a game_state broadcast for ABC123, got %+v", last)
	}
	info, ok := last.payload.(models.GameInfo)
	if !ok {
		t.Fatalf("broadcast payload should be the board projection, got %T", last.payload)
	}
	if info.Title != "Finals" {
		t.Fatalf("broadcast carries stale state: %+v", info)
	}
}

func TestController_RejectedTransitionNeitherPersistsNorBroadcasts(t *testing.T) {
	store := newMemStore()
	board := newFakeBoard("ABC123")
	ctrl := NewSessionController(store, board)

	if _, err := ctrl.Configure(context.Background(), "ABC123", "Finals", models.Team{Name: "Red"}, models.Team{Name: "Blue"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	savesBefore := store.saves
	callsBefore := len(board.calls())

	// Empty answer text is invalid; phase must stay at selection
	q := models.Question{Text: "Name a pet", Answers: []models.Answer{{Text: "", Points: 10}}}
	_, err := ctrl.AddQuestion(context.Background(), "ABC123", q)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if store.saves != savesBefore {
		t.Fatalf("rejected transition must not persist, saves went %d -> %d", savesBefore, store.saves)
	}
	if len(board.calls()) != callsBefore {
		t.Fatalf("rejected transition must not broadcast")
	}

	stored, _ := store.FindByCode(context.Background(), "ABC123")
	if stored.Phase != models.PhaseSelection {
		t.Fatalf("persisted phase changed on rejection: %q", stored.Phase)
	}
}

func TestController_TeamsDoesNotLazilyCreate(t *testing.T) {
	store := newMemStore()
	board := newFakeBoard("ABC123")
	ctrl := NewSessionController(store, board)

	if _, err := ctrl.Teams(context.Background(), "ABC123"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("want ErrSessionNotFound, got %v", err)
	}
}

func TestController_FullGameFlow(t *testing.T) {
	store := newMemStore()
	board := newFakeBoard("ABC123")
	ctrl := NewSessionController(store, board)
	ctx := context.Background()

	if _, err := ctrl.Configure(ctx, "ABC123", "Finals", models.Team{Name: "Red"}, models.Team{Name: "Blue"}); err != nil {
		t.Fatalf("configure: %v", err)
	}

	q := models.Question{
		Text:    "Name a pet",
		Answers: []models.Answer{{Text: "Dog", Points: 40}, {Text: "Cat", Points: 60}},
	}
	if _, err := ctrl.AddQuestion(ctx, "ABC123", q); err != nil {
		t.Fatalf("add question: %v", err)
	}
	if _, err := ctrl.StartControl(ctx, "ABC123", 0); err != nil {
		t.Fatalf("start control: %v", err)
	}

	upd := RoundUpdate{
		TeamA:      models.Team{Name: "Red", Score: 100},
		TeamB:      models.Team{Name: "Blue"},
		Question:   q.Text,
		Answers:    q.Answers,
		RoundScore: 100,
		Strikes:    1,
	}
	if _, err := ctrl.UpdateRound(ctx, "ABC123", upd); err != nil {
		t.Fatalf("update round: %v", err)
	}

	session, err := ctrl.EndRound(ctx, "ABC123")
	if err != nil {
		t.Fatalf("end round: %v", err)
	}
	if session.Phase != models.PhaseSelection {
		t.Fatalf("want phase %q after round, got %q", models.PhaseSelection, session.Phase)
	}
	if len(session.Rounds) != 1 || len(session.UsedQuestions) != 1 {
		t.Fatalf("round not archived: %+v", session)
	}

	teams, err := ctrl.Teams(ctx, "ABC123")
	if err != nil {
		t.Fatalf("teams: %v", err)
	}
	if teams.TeamA.Score != 100 {
		t.Fatalf("team score lost across round end: %+v", teams)
	}
	if len(teams.UsedQuestions) != 1 || teams.UsedQuestions[0] != "Name a pet" {
		t.Fatalf("used questions missing from teams view: %+v", teams)
	}
}

func TestController_ConcurrentSetScoresNeverTearsAWrite(t *testing.T) {
	store := newMemStore()
	board := newFakeBoard("ABC123")
	ctrl := NewSessionController(store, board)
	ctx := context.Background()

	if _, err := ctrl.Configure(ctx, "ABC123", "Finals", models.Team{Name: "Red"}, models.Team{Name: "Blue"}); err != nil {
		t.Fatalf("configure: %v", err)
	}

	for i := 0; i < 50; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := ctrl.SetScores(ctx, "ABC123", 11, 13); err != nil {
				t.Errorf("set scores A: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := ctrl.SetScores(ctx, "ABC123", 17, 19); err != nil {
				t.Errorf("set scores B: %v", err)
			}
		}()
		wg.Wait()

		stored, err := store.FindByCode(ctx, "ABC123")
		if err != nil {
			t.Fatalf("load after concurrent writes: %v", err)
		}
		got := [2]int{stored.TeamA.Score, stored.TeamB.Score}
		if got != [2]int{11, 13} && got != [2]int{17, 19} {
			t.Fatalf("persisted state mixes two writes: %v", got)
		}
	}
}
