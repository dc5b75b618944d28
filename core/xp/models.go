package xp

import (
	"sort"
	"time"

	"github.com/trezcool/masomo-admin/core"
)

// Transaction sources
const (
	SourceQuiz   = "quiz"
	SourceExam   = "exam"
	SourceManual = "manual"
)

type (
	// Milestone is an XP threshold that unlocks a badge.
	Milestone struct {
		ID          string    `json:"_id"`
		Name        string    `json:"name"`
		Description string    `json:"description,omitempty"`
		XPRequired  int       `json:"xpRequired"`
		Badge       string    `json:"badge,omitempty"`
		Reward      string    `json:"reward,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// Transaction is one XP gain or loss of a user.
	Transaction struct {
		ID        string    `json:"_id"`
		UserID    string    `json:"userId"`
		UserName  string    `json:"userName,omitempty"` // server computed
		Points    int       `json:"points"`
		Reason    string    `json:"reason"`
		Source    string    `json:"source"`
		CreatedBy string    `json:"createdBy,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
	}

	LeaderboardEntry struct {
		Rank    int    `json:"rank"`
		UserID  string `json:"userId"`
		Name    string `json:"name"`
		ClassID string `json:"classId,omitempty"`
		TotalXP int    `json:"totalXp"`
		Level   int    `json:"level"`
	}

	// MilestoneForm is the create and edit form of a Milestone.
	MilestoneForm struct {
		Name        string `json:"name" validate:"required,notblank,max=50"`
		Description string `json:"description,omitempty" validate:"max=200"`
		XPRequired  int    `json:"xpRequired" validate:"min=1"`
		Badge       string `json:"badge,omitempty" validate:"omitempty,url"`
		Reward      string `json:"reward,omitempty" validate:"max=100"`
	}

	// Award is the manual XP award form; negative points take XP away.
	Award struct {
		UserID string `json:"userId" validate:"required"`
		Points int    `json:"points" validate:"required,min=-1000,max=1000"`
		Reason string `json:"reason" validate:"required,notblank,max=200"`
	}
)

func (f *MilestoneForm) Clean() {
	f.Name = core.CleanString(f.Name)
	f.Description = core.CleanString(f.Description)
	f.Badge = core.CleanString(f.Badge)
	f.Reward = core.CleanString(f.Reward)
}

func (a *Award) Clean() {
	a.UserID = core.CleanString(a.UserID)
	a.Reason = core.CleanString(a.Reason)
}

func EditForm(m Milestone) MilestoneForm {
	return MilestoneForm{
		Name:        m.Name,
		Description: m.Description,
		XPRequired:  m.XPRequired,
		Badge:       m.Badge,
		Reward:      m.Reward,
	}
}

func Patch(m Milestone, f MilestoneForm) Milestone {
	m.Name = f.Name
	m.Description = f.Description
	m.XPRequired = f.XPRequired
	m.Badge = f.Badge
	m.Reward = f.Reward
	return m
}

// NextMilestone returns the lowest milestone `totalXP` has not reached yet.
func NextMilestone(totalXP int, milestones []Milestone) (Milestone, bool) {
	sorted := append([]Milestone(nil), milestones...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].XPRequired < sorted[j].XPRequired })
	for _, m := range sorted {
		if m.XPRequired > totalXP {
			return m, true
		}
	}
	return Milestone{}, false
}

// Reached returns the milestones `totalXP` has reached, lowest first.
func Reached(totalXP int, milestones []Milestone) []Milestone {
	var out []Milestone
	for _, m := range milestones {
		if m.XPRequired <= totalXP {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].XPRequired < out[j].XPRequired })
	return out
}

func ID(m Milestone) string { return m.ID }
