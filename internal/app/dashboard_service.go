package app

import (
	"errors"
	"math"
	"time"

	"iga-community/internal/content"
)

const (
	checkInPoints   = 20
	streakBadgeID   = "badge-streak3"
	streakBadgeDays = 3

	ActionModuleCompleted = "module_completed"
	ActionEventAttended   = "event_attended"
	ActionStoryShared     = "story_shared"
)

var actionPoints = map[string]int{
	ActionModuleCompleted: 50,
	ActionEventAttended:   40,
	ActionStoryShared:     30,
}

var (
	ErrUnknownAction      = errors.New("unknown action")
	ErrRewardNotFound     = errors.New("reward not found")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrInvalidTimezone    = errors.New("invalid timezone")
)

// Ledger is the member's gamification state. The browser owns it and sends
// it with every request; the server only applies rules to it.
type Ledger struct {
	Points      int             `json:"points"`
	Streak      int             `json:"streak"`
	LastCheckIn *time.Time      `json:"lastCheckIn"`
	Claimed     map[string]bool `json:"claimed"`
}

type DashboardService struct {
	catalog *content.Catalog
	now     func() time.Time
}

func NewDashboardService(catalog *content.Catalog) *DashboardService {
	return &DashboardService{catalog: catalog, now: time.Now}
}

func (s *DashboardService) Rewards() []content.Reward {
	return s.catalog.Rewards
}

// CheckIn applies the daily check-in in the member's timezone (UTC when
// empty). A second check-in on the same day changes nothing.
func (s *DashboardService) CheckIn(ledger Ledger, timezone string) (Ledger, error) {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return ledger, ErrInvalidTimezone
		}
		loc = l
	}

	next := sanitize(ledger)
	now := s.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if next.LastCheckIn != nil {
		prev := next.LastCheckIn.In(loc)
		prevDay := time.Date(prev.Year(), prev.Month(), prev.Day(), 0, 0, 0, 0, loc)
		switch daysBetween(prevDay, today) {
		case 0:
			return next, nil
		case 1:
			next.Streak++
		default:
			next.Streak = 1
		}
	} else {
		next.Streak = 1
	}

	next.Points += checkInPoints
	next.LastCheckIn = &today
	if next.Streak == streakBadgeDays && !next.Claimed[streakBadgeID] {
		next.Claimed[streakBadgeID] = true
	}
	return next, nil
}

func (s *DashboardService) Award(ledger Ledger, action string) (Ledger, error) {
	amount, ok := actionPoints[action]
	if !ok {
		return ledger, ErrUnknownAction
	}
	next := sanitize(ledger)
	next.Points += amount
	return next, nil
}

// Claim spends points on a reward. Claiming something already owned is a
// no-op.
func (s *DashboardService) Claim(ledger Ledger, rewardID string) (Ledger, error) {
	reward := s.catalog.Reward(rewardID)
	if reward == nil {
		return ledger, ErrRewardNotFound
	}
	next := sanitize(ledger)
	if next.Claimed[reward.ID] {
		return next, nil
	}
	if next.Points < reward.Cost {
		return next, ErrInsufficientPoints
	}
	next.Points -= reward.Cost
	next.Claimed[reward.ID] = true
	return next, nil
}

// sanitize copies the ledger so callers never see their input mutated and
// clamps values a client could have tampered into negatives.
func sanitize(l Ledger) Ledger {
	claimed := make(map[string]bool, len(l.Claimed))
	for k, v := range l.Claimed {
		if v {
			claimed[k] = true
		}
	}
	l.Claimed = claimed
	if l.Points < 0 {
		l.Points = 0
	}
	if l.Streak < 0 {
		l.Streak = 0
	}
	return l
}

// daysBetween rounds so a DST shift does not turn one day into zero or two.
func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}
