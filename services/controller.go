package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"popularchoice/models"
)

// Broadcaster is the fan-out side the controller pushes snapshots to.
type Broadcaster interface {
	BroadcastToBoard(code string, messageType string, payload interface{})
	HasSubscribers(code string) bool
}

// SessionController orchestrates every host action: validate the code,
// load the session, run the transition, persist, broadcast. Actions on
// the same code are serialized through a per-code mutex so two hosts can
// never interleave their read-modify-persist sequences and lose a write.
type SessionController struct {
	store SessionStore
	board Broadcaster

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionController(store SessionStore, board Broadcaster) *SessionController {
	return &SessionController{
		store: store,
		board: board,
		locks: make(map[string]*sync.Mutex),
	}
}

// ValidateCode checks the shape of a game code: exactly 6 uppercase
// alphanumeric characters.
func ValidateCode(code string) error {
	if len(code) != 6 {
		return ErrInvalidCode
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return ErrInvalidCode
		}
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c *SessionController) lockFor(code string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[code] = lock
	}
	return lock
}

// load fetches the session for a code. When none exists but at least one
// board is actively watching the code, a minimal setup-phase session is
// created lazily; a code nobody watches stays ErrSessionNotFound. The
// second return value reports whether the session was just created.
func (c *SessionController) load(ctx context.Context, code string) (*models.Session, bool, error) {
	session, err := c.store.FindByCode(ctx, code)
	if err == nil {
		return session, false, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, false, err
	}

	if !c.board.HasSubscribers(code) {
		return nil, false, ErrSessionNotFound
	}

	session = models.NewSession(code)
	if err := c.store.Insert(ctx, session); err != nil {
		return nil, false, err
	}
	log.Printf("Lazily created session %s for a connected board", code)
	return session, true, nil
}

// apply runs one transition under the code's lock: load, mutate, persist,
// broadcast. The transition sees the freshest persisted state and its
// result is visible before the next action on the same code starts.
func (c *SessionController) apply(ctx context.Context, code string, transition func(*models.Session) error) (*models.Session, error) {
	code = normalizeCode(code)
	if err := ValidateCode(code); err != nil {
		return nil, err
	}

	lock := c.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	session, _, err := c.load(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := transition(session); err != nil {
		return nil, err
	}

	if err := c.store.Save(ctx, session); err != nil {
		return nil, err
	}

	// Best effort: board delivery never fails the host's request
	c.board.BroadcastToBoard(code, "game_state", session.Info())

	return session, nil
}

// Connect confirms a host can drive the code. The session is created
// lazily if a board is already watching; a code with no board is an error.
func (c *SessionController) Connect(ctx context.Context, code string) error {
	code = normalizeCode(code)
	if err := ValidateCode(code); err != nil {
		return err
	}

	lock := c.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	if _, _, err := c.load(ctx, code); err != nil {
		return err
	}

	c.board.BroadcastToBoard(code, "game_connected", map[string]interface{}{"code": code})
	return nil
}

// Status returns the session's current phase.
func (c *SessionController) Status(ctx context.Context, code string) (models.Phase, error) {
	code = normalizeCode(code)
	if err := ValidateCode(code); err != nil {
		return "", err
	}

	lock := c.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	session, created, err := c.load(ctx, code)
	if err != nil {
		return "", err
	}
	if created {
		c.board.BroadcastToBoard(code, "game_connected", map[string]interface{}{"code": code})
	}
	return session.Phase, nil
}

// BoardStatus returns the full broadcast projection for a board client.
func (c *SessionController) BoardStatus(ctx context.Context, code string) (models.GameInfo, error) {
	code = normalizeCode(code)
	if err := ValidateCode(code); err != nil {
		return models.GameInfo{}, err
	}

	lock := c.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	session, created, err := c.load(ctx, code)
	if err != nil {
		return models.GameInfo{}, err
	}
	if created {
		c.board.BroadcastToBoard(code, "game_connected", map[string]interface{}{"code": code})
	}
	return session.Info(), nil
}

// TeamsView is what the host's team screen shows between rounds.
type TeamsView struct {
	Title         string       `json:"title"`
	TeamA         models.Team  `json:"team_a"`
	TeamB         models.Team  `json:"team_b"`
	Phase         models.Phase `json:"phase"`
	UsedQuestions []string     `json:"used_questions"`
}

// Teams returns the team snapshot plus the already-played questions.
// Read-only: no lazy creation here.
func (c *SessionController) Teams(ctx context.Context, code string) (*TeamsView, error) {
	code = normalizeCode(code)
	if err := ValidateCode(code); err != nil {
		return nil, err
	}

	session, err := c.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return &TeamsView{
		Title:         session.Title,
		TeamA:         session.TeamA,
		TeamB:         session.TeamB,
		Phase:         session.Phase,
		UsedQuestions: session.UsedQuestions,
	}, nil
}

func (c *SessionController) Configure(ctx context.Context, code, title string, teamA, teamB models.Team) (*models.Session, error) {
	return c.apply(ctx, code, func(s *models.Session) error {
		return applyConfigure(s, title, teamA, teamB)
	})
}

func (c *SessionController) AddQuestion(ctx context.Context, code string, q models.Question) (*models.Session, error) {
	return c.apply(ctx, code, func(s *models.Session) error {
		return applyAddQuestion(s, q)
	})
}

func (c *SessionController) SetScores(ctx context.Context, code string, scoreA, scoreB int) (*models.Session, error) {
	return c.apply(ctx, code, func(s *models.Session) error {
		return applySetScores(s, scoreA, scoreB)
	})
}

func (c *SessionController) SetCountdown(ctx context.Context, code string, seconds int) (*models.Session, error) {
	return c.apply(ctx, code, func(s *models.Session) error {
		return applySetCountdown(s, seconds)
	})
}

func (c *SessionController) StartControl(ctx context.Context, code string, activeTeam int) (*models.Session, error) {
	return c.apply(ctx, code, func(s *models.Session) error {
		return applyStartControl(s, activeTeam)
	})
}

func (c *SessionController) UpdateRound(ctx context.Context, code string, upd RoundUpdate) (*models.Session, error) {
	return c.apply(ctx, code, func(s *models.Session) error {
		return applyUpdateRound(s, upd)
	})
}

func (c *SessionController) EndRound(ctx context.Context, code string) (*models.Session, error) {
	return c.apply(ctx, code, func(s *models.Session) error {
		return applyEndRound(s)
	})
}
