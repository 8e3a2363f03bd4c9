// Package engine implements the quiz session state machine: question
// sequencing, the per-question countdown, single-shot answer locking, and the
// transition into a scored terminal result.
package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"ggquiz-engine/internal/domain"
)

// QuestionSource provides the ordered question batch for a session.
// An empty batch is a valid "no content" response, not an error.
type QuestionSource interface {
	Fetch(ctx context.Context, mode domain.Mode, regionID int64) ([]domain.Question, error)
}

// Submitter is the scoring authority a finished session reports to.
// It must apply the scoring package formula to the outcome.
type Submitter interface {
	Submit(ctx context.Context, playerID string, out domain.Outcome) (float64, error)
}

// Phase is the lifecycle stage of a session. Transitions are linear:
// Setup -> Playing -> Result. A terminal session is discarded, never reused.
type Phase int

const (
	PhaseSetup Phase = iota
	PhasePlaying
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhasePlaying:
		return "playing"
	case PhaseResult:
		return "result"
	}
	return "unknown"
}

// Config tunes session timing. Zero QuestionSeconds and BatchSize fall back
// to the defaults below; a zero AdvanceDelay advances synchronously, which is
// what tests want.
type Config struct {
	QuestionSeconds int           // countdown budget per question
	AdvanceDelay    time.Duration // feedback pause between locking an answer and advancing
	BatchSize       int           // upper bound on questions per session
	Clock           func() time.Time
}

const (
	defaultQuestionSeconds = 20
	defaultBatchSize       = 10
)

func (c Config) withDefaults() Config {
	if c.QuestionSeconds <= 0 {
		c.QuestionSeconds = defaultQuestionSeconds
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Session is one quiz attempt. All transitions run under a single mutex so
// racing triggers (a countdown expiry and a user pick for the same question)
// are serialized through the per-question pick lock.
type Session struct {
	cfg       Config
	source    QuestionSource
	submitter Submitter

	mu       sync.Mutex
	playerID string
	mode     domain.Mode
	regionID int64

	phase      Phase
	questions  []domain.Question
	index      int
	correctIDs []int64
	selected   string
	picked     bool
	remaining  int
	startedAt  time.Time
	elapsed    int
	wrongID    int64
	computing  bool
	submitted  bool
	result     *domain.Result

	events chan Event
}

// New builds a session in the Setup phase. Each attempt gets its own Session;
// once terminal it cannot be restarted.
func New(cfg Config, source QuestionSource, submitter Submitter) *Session {
	return &Session{
		cfg:       cfg.withDefaults(),
		source:    source,
		submitter: submitter,
		phase:     PhaseSetup,
		events:    make(chan Event, 32),
	}
}

// Events returns the session's event stream. The channel is closed once the
// final result has been published.
func (s *Session) Events() <-chan Event { return s.events }

// Start fetches the question batch and moves the session into Playing.
// It fails with domain.ErrUnauthenticated when no player is signed in and
// domain.ErrNoQuestions when the provider has no content for the mode/region;
// in both cases the session stays in Setup.
func (s *Session) Start(ctx context.Context, playerID string, mode domain.Mode, regionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhasePlaying:
		return domain.ErrSessionActive
	case PhaseResult:
		return domain.ErrSessionFinished
	}
	if playerID == "" {
		return domain.ErrUnauthenticated
	}
	if !mode.Valid() {
		return fmt.Errorf("invalid mode %q", mode)
	}
	if mode == domain.ModeRegional && regionID <= 0 {
		return domain.ErrRegionNotFound
	}
	if mode == domain.ModeGlobal {
		regionID = 0
	}

	questions, err := s.source.Fetch(ctx, mode, regionID)
	if err != nil {
		return fmt.Errorf("fetch questions: %w", err)
	}
	if len(questions) == 0 {
		return domain.ErrNoQuestions
	}
	if len(questions) > s.cfg.BatchSize {
		questions = questions[:s.cfg.BatchSize]
	}

	s.playerID = playerID
	s.mode = mode
	s.regionID = regionID
	s.questions = questions
	s.index = 0
	s.correctIDs = nil
	s.selected = ""
	s.picked = false
	s.elapsed = 0
	s.wrongID = 0
	s.remaining = s.cfg.QuestionSeconds
	s.startedAt = s.cfg.Clock()
	s.phase = PhasePlaying

	s.publish(Event{Type: EventQuestion, Question: s.questionViewLocked()})
	return nil
}

// Pick records the player's answer for the current question. An empty option
// means "time expired with no selection" and is always incorrect. Duplicate
// picks for an already-locked question are silently ignored.
func (s *Session) Pick(ctx context.Context, option string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pickLocked(ctx, option)
}

// Tick advances the countdown by one second. Ticks are ignored while an
// answer is locked or the session is not playing, so a stale timer firing
// after the round advanced cannot double-fire the timeout pick.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying || s.picked {
		return
	}
	s.remaining--
	if s.remaining > 0 {
		s.publish(Event{Type: EventTick, Remaining: s.remaining})
		return
	}
	s.remaining = 0
	s.publish(Event{Type: EventTick, Remaining: 0})
	s.pickLocked(ctx, "")
}

// Run drives the countdown from a one-second ticker until the session is
// terminal or ctx is cancelled. Tests bypass it and call Tick directly.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Phase() == PhaseResult {
				return
			}
			s.Tick(ctx)
		}
	}
}

func (s *Session) pickLocked(ctx context.Context, option string) {
	if s.phase != PhasePlaying || s.picked {
		return
	}
	s.picked = true
	s.selected = option

	// Wall-clock answer time, rounded, floored at one second so instant
	// answers cannot distort the rating.
	now := s.cfg.Clock()
	secs := int(math.Round(now.Sub(s.startedAt).Seconds()))
	if secs < 1 {
		secs = 1
	}
	s.elapsed += secs

	question := s.questions[s.index]
	correct := option != "" && strings.EqualFold(option, question.CorrectOption)

	s.publish(Event{Type: EventAnswer, Answer: &Answer{
		QuestionID:    question.ID,
		Selected:      option,
		Correct:       correct,
		CorrectOption: question.CorrectOption,
	}})

	// The feedback pause is presentation only; the next question's clock
	// starts when the advance actually happens.
	if s.cfg.AdvanceDelay > 0 {
		time.AfterFunc(s.cfg.AdvanceDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.advanceLocked(ctx, correct)
		})
		return
	}
	s.advanceLocked(ctx, correct)
}

func (s *Session) advanceLocked(ctx context.Context, correct bool) {
	if s.phase != PhasePlaying {
		return
	}
	question := s.questions[s.index]

	if !correct {
		s.finishLocked(ctx, question.ID)
		return
	}

	s.correctIDs = append(s.correctIDs, question.ID)
	if s.index+1 >= len(s.questions) {
		s.finishLocked(ctx, 0)
		return
	}

	s.index++
	s.picked = false
	s.selected = ""
	s.remaining = s.cfg.QuestionSeconds
	s.startedAt = s.cfg.Clock()
	s.publish(Event{Type: EventQuestion, Question: s.questionViewLocked()})
}

func (s *Session) finishLocked(ctx context.Context, wrongID int64) {
	s.phase = PhaseResult
	s.wrongID = wrongID
	if s.submitted {
		return
	}
	s.submitted = true
	s.computing = true

	out := s.outcomeLocked()
	s.publish(Event{Type: EventComputing})

	// The submission is the only suspending operation; it runs off the lock
	// so local reads stay responsive while awaiting confirmation.
	go s.submit(ctx, out)
}

func (s *Session) submit(ctx context.Context, out domain.Outcome) {
	rating, err := s.submitter.Submit(ctx, s.playerID, out)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.computing = false
	if err != nil {
		// Played but unscored: terminal either way, never retried here.
		s.result = &domain.Result{Rating: 0, Failed: true}
	} else {
		s.result = &domain.Result{Rating: rating}
	}
	s.publish(Event{Type: EventResult, Result: s.result})
	close(s.events)
}

func (s *Session) outcomeLocked() domain.Outcome {
	duration := s.elapsed
	if duration < 1 {
		duration = 1
	}
	ids := make([]int64, len(s.correctIDs))
	copy(ids, s.correctIDs)
	return domain.Outcome{
		Mode:               s.mode,
		DurationSeconds:    duration,
		CorrectQuestionIDs: ids,
		RegionID:           s.regionID,
		WrongQuestionID:    s.wrongID,
	}
}

func (s *Session) questionViewLocked() *QuestionView {
	q := s.questions[s.index]
	return &QuestionView{
		ID:         q.ID,
		Index:      s.index,
		Total:      len(s.questions),
		Statement:  q.Statement,
		OptionA:    q.OptionA,
		OptionB:    q.OptionB,
		OptionC:    q.OptionC,
		OptionD:    q.OptionD,
		Difficulty: q.Difficulty,
		Remaining:  s.remaining,
	}
}

func (s *Session) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
		// Drop the oldest pending event rather than block a transition on a
		// slow consumer.
		select {
		case <-s.events:
		default:
		}
		s.events <- ev
	}
}

// Phase returns the current lifecycle stage.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Remaining returns the countdown seconds left on the current question.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// ElapsedSeconds returns the accumulated answer time so far.
func (s *Session) ElapsedSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// SelectedOption returns the locked option for the current question, or ""
// when no selection has been made.
func (s *Session) SelectedOption() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// CorrectIDs returns a copy of the correctly answered question ids in order.
func (s *Session) CorrectIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, len(s.correctIDs))
	copy(ids, s.correctIDs)
	return ids
}

// CurrentIndex returns the position of the active question.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// WrongQuestionID returns the id of the question that ended the session, or
// zero when the session cleared every question (or is still running).
func (s *Session) WrongQuestionID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wrongID
}

// Computing reports whether the session is awaiting the scoring authority.
func (s *Session) Computing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computing
}

// Result returns the scored outcome once available.
func (s *Session) Result() (domain.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.Result{}, false
	}
	return *s.result, true
}
