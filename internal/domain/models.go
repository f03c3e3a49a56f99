package domain

import "time"

// Address holds the mailing address portion of a user profile.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// UserRecord is the single persisted document per registered user.
// Points and the completed-mission/opened-chest sets are mutated only
// through the store's atomic award primitives.
type UserRecord struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone,omitempty"`
	Bio          string  `json:"bio,omitempty"`
	PhotoURL     string  `json:"photoUrl,omitempty"`
	Address      Address `json:"address"`

	Points            int      `json:"points"`
	MissionsCompleted []string `json:"missionsCompleted"`
	ChestsOpened      []string `json:"chestsOpened"`

	// ProfileMissionCompleted mirrors membership of "profile" in
	// MissionsCompleted for readers that predate the set.
	ProfileMissionCompleted bool `json:"profileMissionCompleted"`

	// Seq is the store-assigned creation sequence; it is the stable
	// leaderboard tie-break for equal point totals.
	Seq       int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// MissionProfile is the identifier of the fixed profile-completion mission.
const MissionProfile = "profile"

// HasMission reports whether missionID is already in the completed set.
// The legacy boolean keeps "profile" readable on records written before
// the set existed.
func (u UserRecord) HasMission(missionID string) bool {
	for _, id := range u.MissionsCompleted {
		if id == missionID {
			return true
		}
	}
	return missionID == MissionProfile && u.ProfileMissionCompleted
}

// HasChest reports whether chestID has already been opened.
func (u UserRecord) HasChest(chestID string) bool {
	for _, id := range u.ChestsOpened {
		if id == chestID {
			return true
		}
	}
	return false
}

// MissionKind discriminates how a mission's award is computed.
type MissionKind string

const (
	MissionFixed      MissionKind = "fixed"
	MissionQuiz       MissionKind = "quiz"
	MissionWordSearch MissionKind = "wordsearch"
)

// QuizConfig holds the per-quiz award parameters.
type QuizConfig struct {
	PointsPerCorrect    int `json:"pointsPerCorrect"`
	MaxCorrect          int `json:"maxCorrect"`
	MaxTimeBonusSeconds int `json:"maxTimeBonusSeconds"`
	MaxTimeBonusPoints  int `json:"maxTimeBonusPoints"`
	MaxTotalPoints      int `json:"maxTotalPoints"`
}

// WordSearchConfig awards a flat base plus one bonus point per full
// block of seconds saved under the bonus window.
type WordSearchConfig struct {
	BasePoints      int `json:"basePoints"`
	BonusWindowSecs int `json:"bonusWindowSeconds"`
	SecondsPerBonus int `json:"secondsPerBonusPoint"`
}

// Option represents a possible answer for a question.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Question models an MCQ question with exactly one correct option key.
type Question struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Options []Option `json:"options"`
	Correct string   `json:"correct"`
}

// Mission is a catalog entry: the static definition of a completable task.
type Mission struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Kind        MissionKind      `json:"kind"`
	FixedPoints int              `json:"fixedPoints,omitempty"`
	Quiz        QuizConfig       `json:"quiz,omitempty"`
	WordSearch  WordSearchConfig `json:"wordSearch,omitempty"`
	VideoURL    string           `json:"videoUrl,omitempty"`
	Questions   []Question       `json:"questions,omitempty"`
}

// Chest is a catalog entry: a one-time bonus gated behind missions.
type Chest struct {
	ID               string   `json:"id"`
	Points           int      `json:"points"`
	RequiredMissions []string `json:"requiredMissions"`
}

// PointsBreakdown explains how a quiz award was computed.
type PointsBreakdown struct {
	BasePoints int `json:"basePoints"`
	TimeBonus  int `json:"timeBonus"`
}

// MissionAward is the transient result of a successful mission completion.
type MissionAward struct {
	MissionID     string          `json:"missionId"`
	PointsAwarded int             `json:"pointsAwarded"`
	Breakdown     PointsBreakdown `json:"breakdown"`
	TotalPoints   int             `json:"totalPoints"`
}

// ChestAward is the transient result of a successful chest opening.
type ChestAward struct {
	ChestID       string `json:"chestId"`
	PointsAwarded int    `json:"pointsAwarded"`
	TotalPoints   int    `json:"totalPoints"`
}

// LeaderboardEntry is a derived, never-persisted ranking row. Positions
// are dense and 1-based; ties get distinct adjacent positions per the
// stable creation-order tie-break.
type LeaderboardEntry struct {
	Position int    `json:"position"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	PhotoURL string `json:"photoUrl,omitempty"`
	Level    string `json:"level"`
}

// LeaderboardView is one paginated leaderboard response.
type LeaderboardView struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Me          LeaderboardEntry   `json:"me"`
	Total       int                `json:"total"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// LevelForPoints maps a point total to its ranking level name.
func LevelForPoints(points int) string {
	switch {
	case points >= 700:
		return "Diamante"
	case points >= 400:
		return "Ouro"
	case points >= 200:
		return "Prata"
	default:
		return "Bronze"
	}
}

// MedalForPoints maps a point total to the curriculum medal shown on the
// profile dashboard. Thresholds differ from the leaderboard levels.
func MedalForPoints(points int) string {
	switch {
	case points >= 200:
		return "Ouro"
	case points >= 100:
		return "Prata"
	default:
		return "Bronze"
	}
}
