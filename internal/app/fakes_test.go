package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"iga-community/internal/ai"
	"iga-community/internal/mailer"
	"iga-community/internal/model"
	"iga-community/internal/repository"
	"iga-community/internal/scrape"
	"iga-community/internal/vectorstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserStore struct {
	mu        sync.Mutex
	byEmail   map[string]*model.User
	nextID    uint
	createErr error
	lookupErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*model.User{}, nextID: 1}
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.byEmail[user.Email] = &copied
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if u, ok := f.byEmail[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, email, hash, salt string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return false, nil
	}
	u.PasswordHash = hash
	u.PasswordSalt = salt
	return true, nil
}

func (f *fakeUserStore) ListLocations(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	var out []string
	for _, u := range f.byEmail {
		out = append(out, u.Location)
	}
	sort.Strings(out)
	return out, nil
}

type fakeResetLedger struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeResetLedger() *fakeResetLedger {
	return &fakeResetLedger{tokens: map[string]string{}}
}

func (f *fakeResetLedger) Save(_ context.Context, jti, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[jti] = strings.ToLower(email)
	return nil
}

func (f *fakeResetLedger) Consume(_ context.Context, jti string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.tokens[jti]
	delete(f.tokens, jti)
	return email, ok, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeEmbedder struct {
	mu     sync.Mutex
	calls  []string
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	if f.vector != nil {
		return f.vector, nil
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

type fakeCompleter struct {
	got    []ai.ChatMessage
	answer string
	err    error
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.got = messages
	return f.answer, f.err
}

// fakeVectorStore keeps documents in insertion order and returns them all on
// search.
type fakeVectorStore struct {
	mu        sync.Mutex
	docs      []vectorstore.Document
	ensured   int
	dimension int
	metric    string
	searchErr error
}

func (f *fakeVectorStore) EnsureCollection(_ context.Context, dimension int, metric string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured++
	f.dimension = dimension
	f.metric = metric
	return nil
}

func (f *fakeVectorStore) Exists(_ context.Context, text string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if d.Text == text {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVectorStore) Insert(_ context.Context, doc vectorstore.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeVectorStore) Search(_ context.Context, _ []float32, limit int) ([]vectorstore.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []vectorstore.Match
	for i, d := range f.docs {
		if i == limit {
			break
		}
		out = append(out, vectorstore.Match{Text: d.Text})
	}
	return out, nil
}

func (f *fakeVectorStore) Close() error { return nil }

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*scrape.Page, error) {
	text, ok := f.pages[url]
	if !ok {
		return nil, errors.New("status 404")
	}
	return &scrape.Page{URL: url, Text: text}, nil
}

// lineSplitter emits one chunk per non-empty line.
type lineSplitter struct{}

func (lineSplitter) Split(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

type fakePublisher struct {
	jobs []model.IngestJob
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, job model.IngestJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}
