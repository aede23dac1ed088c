package models

// Phase is the stage a game session is in. It governs which host actions
// are accepted by the state machine.
type Phase string

const (
	PhaseSetup     Phase = "game-setup"
	PhaseSelection Phase = "game-selection"
	PhaseInit      Phase = "game-init"
	PhaseControl   Phase = "game-control"
)

// Team is one side of the board.
type Team struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Answer is one survey answer with its point value.
type Answer struct {
	Text   string `json:"text"`
	Points int    `json:"points"`
}

// Question is a survey question together with its ordered answers. The
// answer order is preserved as given, never re-sorted.
type Question struct {
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}

// RoundRecord is the snapshot of a finished round, appended to the
// session history when the host ends a round. Never mutated afterwards.
type RoundRecord struct {
	TeamA         Team     `json:"team_a"`
	TeamB         Team     `json:"team_b"`
	Question      string   `json:"question"`
	Answers       []Answer `json:"answers"`
	RoundScore    int      `json:"round_score"`
	ActiveTeam    int      `json:"active_team"`
	Strikes       int      `json:"strikes"`
	StealEligible bool     `json:"steal_eligible"`
}

// Session is one game identified by a 6-character code. It is stored as a
// single document in the session store, keyed by code.
type Session struct {
	Code          string        `json:"code"`
	Phase         Phase         `json:"phase"`
	Title         string        `json:"title"`
	TeamA         Team          `json:"team_a"`
	TeamB         Team          `json:"team_b"`
	Question      string        `json:"question"`
	Answers       []Answer      `json:"answers"`
	RoundScore    int           `json:"round_score"`
	ActiveTeam    int           `json:"active_team"`
	Strikes       int           `json:"strikes"`
	StealEligible bool          `json:"steal_eligible"`
	Countdown     *int          `json:"countdown"`
	UsedQuestions []string      `json:"used_questions"`
	Rounds        []RoundRecord `json:"rounds"`
}

// NewSession returns a minimal session in the setup phase.
func NewSession(code string) *Session {
	return &Session{
		Code:          code,
		Phase:         PhaseSetup,
		Answers:       []Answer{},
		UsedQuestions: []string{},
		Rounds:        []RoundRecord{},
	}
}

// GameInfo is the broadcast-relevant projection of a session: what the
// boards need to render, without the round history or used-question list.
type GameInfo struct {
	Code          string   `json:"code"`
	Phase         Phase    `json:"phase"`
	Title         string   `json:"title"`
	TeamA         Team     `json:"team_a"`
	TeamB         Team     `json:"team_b"`
	Question      string   `json:"question"`
	Answers       []Answer `json:"answers"`
	RoundScore    int      `json:"round_score"`
	ActiveTeam    int      `json:"active_team"`
	Strikes       int      `json:"strikes"`
	StealEligible bool     `json:"steal_eligible"`
	Countdown     *int     `json:"countdown"`
}

// Info projects the session into its broadcast form.
func (s *Session) Info() GameInfo {
	return GameInfo{
		Code:          s.Code,
		Phase:         s.Phase,
		Title:         s.Title,
		TeamA:         s.TeamA,
		TeamB:         s.TeamB,
		Question:      s.Question,
		Answers:       s.Answers,
		RoundScore:    s.RoundScore,
		ActiveTeam:    s.ActiveTeam,
		Strikes:       s.Strikes,
		StealEligible: s.StealEligible,
		Countdown:     s.Countdown,
	}
}
