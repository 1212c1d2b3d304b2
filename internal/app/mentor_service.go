package app

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"iga-community/internal/content"
)

const (
	filterAll    = "All"
	defaultTopic = "Entrepreneurship"
)

var (
	ErrMentorNotFound = errors.New("mentor not found")
	ErrInvalidTopic   = errors.New("invalid topic")
	ErrInvalidEmail   = errors.New("invalid email")
)

type MentorFilter struct {
	Query    string
	Program  string
	Language string
}

type MentorRequestInput struct {
	MentorID string
	Name     string
	Email    string
	Topic    string
	Note     string
	Under18  bool
}

// MentorRequest is handed back to the browser, which keeps it. The server
// stores nothing.
type MentorRequest struct {
	ID         string `json:"id"`
	CreatedAt  int64  `json:"created_at"`
	Status     string `json:"status"`
	MentorID   string `json:"mentor_id"`
	MentorName string `json:"mentor_name"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Topic      string `json:"topic"`
	Note       string `json:"note"`
	Under18    bool   `json:"under18"`
}

type MentorRequestResult struct {
	Request MentorRequest `json:"request"`
	Mailto  string        `json:"mailto"`
}

type MentorService struct {
	catalog      *content.Catalog
	contactEmail string
	validate     *validator.Validate
	now          func() time.Time
}

func NewMentorService(catalog *content.Catalog, contactEmail string) *MentorService {
	return &MentorService{
		catalog:      catalog,
		contactEmail: contactEmail,
		validate:     validator.New(),
		now:          time.Now,
	}
}

// List returns mentors whose name, bio or tags contain Query (case
// insensitive) and who offer Program and Language. An empty or "All" filter
// matches everyone.
func (s *MentorService) List(filter MentorFilter) []content.Mentor {
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]content.Mentor, 0, len(s.catalog.Mentors))
	for _, m := range s.catalog.Mentors {
		haystack := strings.ToLower(m.Name + " " + m.Bio + " " + strings.Join(m.Tags, " "))
		if q != "" && !strings.Contains(haystack, q) {
			continue
		}
		if !matchesFilter(filter.Program, m.Programs) || !matchesFilter(filter.Language, m.Languages) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *MentorService) Get(id string) (*content.Mentor, error) {
	m := s.catalog.Mentor(id)
	if m == nil {
		return nil, ErrMentorNotFound
	}
	return m, nil
}

func (s *MentorService) RequestSession(input MentorRequestInput) (*MentorRequestResult, error) {
	mentor, err := s.Get(strings.TrimSpace(input.MentorID))
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" {
		return nil, ErrMissingFields
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, ErrInvalidEmail
	}

	topic := strings.TrimSpace(input.Topic)
	if topic == "" {
		topic = defaultTopic
	}
	if !s.catalog.HasTopic(topic) {
		return nil, ErrInvalidTopic
	}

	req := MentorRequest{
		ID:         uuid.NewString(),
		CreatedAt:  s.now().UnixMilli(),
		Status:     "pending",
		MentorID:   mentor.ID,
		MentorName: mentor.Name,
		Name:       name,
		Email:      email,
		Topic:      topic,
		Note:       input.Note,
		Under18:    input.Under18,
	}
	return &MentorRequestResult{Request: req, Mailto: s.mailto(req)}, nil
}

func (s *MentorService) mailto(req MentorRequest) string {
	under18 := "No"
	if req.Under18 {
		under18 = "Yes"
	}
	subject := "Mentor Session Request - " + req.MentorName
	body := fmt.Sprintf("Student: %s\nEmail: %s\nUnder 18: %s\nTopic: %s\nMentor: %s\nNote:\n%s",
		req.Name, req.Email, under18, req.Topic, req.MentorName, req.Note)
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", s.contactEmail, escapeComponent(subject), escapeComponent(body))
}

func matchesFilter(want string, have []string) bool {
	want = strings.TrimSpace(want)
	if want == "" || want == filterAll {
		return true
	}
	return slices.Contains(have, want)
}

// escapeComponent percent-encodes s for a mailto query, spaces as %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
