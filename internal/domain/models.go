package domain

// Mode selects the question pool for a session.
type Mode string

const (
	ModeGlobal   Mode = "GLOBAL"
	ModeRegional Mode = "REGIONAL"
)

// Valid reports whether the mode is one of the known pools.
func (m Mode) Valid() bool {
	return m == ModeGlobal || m == ModeRegional
}

// Period is a ranking aggregation window.
type Period string

const (
	PeriodDaily   Period = "DAILY"
	PeriodWeekly  Period = "WEEKLY"
	PeriodMonthly Period = "MONTHLY"
	PeriodAllTime Period = "ALLTIME"
)

// Valid reports whether the period is a known window.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return true
	}
	return false
}

// Periods lists every window a finished session contributes to.
func Periods() []Period {
	return []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime}
}

// Question models a timed MCQ question with exactly one correct option.
// Difficulty is in [1,10] and feeds the rating formula.
type Question struct {
	ID            int64  `json:"id"`
	Statement     string `json:"statement"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectOption string `json:"correctOption"` // "A".."D"
	Difficulty    int    `json:"difficulty"`
	RegionID      int64  `json:"regionId,omitempty"` // 0 for pool-wide questions
}

// Region is a selectable league for REGIONAL sessions.
type Region struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Outcome is the immutable record a finished session hands to the scoring
// authority. RegionID and WrongQuestionID use zero for "absent"; question and
// region ids are always positive.
type Outcome struct {
	Mode               Mode    `json:"mode"`
	DurationSeconds    int     `json:"durationSeconds"` // floored at 1
	CorrectQuestionIDs []int64 `json:"correctQuestionIds"`
	RegionID           int64   `json:"regionId,omitempty"`
	WrongQuestionID    int64   `json:"wrongQuestionId,omitempty"`
}

// Result is the scored outcome of a session. Failed marks an attempt that
// reached the result phase but could not be saved; its zero rating is not a
// genuine score.
type Result struct {
	Rating float64 `json:"rating"`
	Failed bool    `json:"failed,omitempty"`
}

// RankingEntry is one row of a period leaderboard: the best rating a player
// achieved within the window, plus how many attempts they submitted.
type RankingEntry struct {
	PlayerID   string  `json:"playerId"`
	BestRating float64 `json:"bestRating"`
	Attempts   int     `json:"totalAttempts"`
}
