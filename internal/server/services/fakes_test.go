package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/feedbox/internal/common"
	"github.com/dmitrijs2005/feedbox/internal/dbx"
	"github.com/dmitrijs2005/feedbox/internal/server/forms"
	"github.com/dmitrijs2005/feedbox/internal/server/models"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/boxes"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/submissions"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// memStore is an in-memory stand-in for the Postgres repositories. It
// ignores the DBTX it is bound to.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	tokens   map[string]*models.RefreshToken
	boxes    map[string]*models.FeedbackBox
	subs     map[string]*models.Submission
	failOn   map[string]error
	lastLock boxes.LockMode
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]*models.User{},
		tokens: map[string]*models.RefreshToken{},
		boxes:  map[string]*models.FeedbackBox{},
		subs:   map[string]*models.Submission{},
		failOn: map[string]error{},
	}
}

func (m *memStore) fail(op string, err error) { m.failOn[op] = err }

func (m *memStore) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *memStore) Users(dbx.DBTX) users.Repository                 { return memUsers{m} }
func (m *memStore) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return memTokens{m} }
func (m *memStore) Boxes(dbx.DBTX) boxes.Repository                 { return memBoxes{m} }
func (m *memStore) Submissions(dbx.DBTX) submissions.Repository     { return memSubs{m} }

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["users.create"]; err != nil {
		return nil, err
	}
	for _, existing := range r.m.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}
	cp := *u
	cp.ID = newTestID(len(r.m.users) + 1)
	cp.CreatedAt = time.Now()
	r.m.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["users.get"]; err != nil {
		return nil, err
	}
	for _, u := range r.m.users {
		if u.UserName == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type memTokens struct{ m *memStore }

func (r memTokens) Create(_ context.Context, userID, token string, validity time.Duration) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["tokens.create"]; err != nil {
		return err
	}
	r.m.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r memTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTokens) Delete(_ context.Context, token string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["tokens.delete"]; err != nil {
		return err
	}
	delete(r.m.tokens, token)
	return nil
}

type memBoxes struct{ m *memStore }

func (r memBoxes) Create(_ context.Context, b *models.FeedbackBox) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["boxes.create"]; err != nil {
		return err
	}
	for _, existing := range r.m.boxes {
		if existing.FormID == b.FormID {
			return common.ErrorAlreadyExists
		}
	}
	cp := *b
	cp.QRCodeURL, cp.FormURL = "", ""
	r.m.boxes[b.ID] = &cp
	return nil
}

func (r memBoxes) GetByID(_ context.Context, id string, lock boxes.LockMode) (*models.FeedbackBox, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.lastLock = lock
	if err := r.m.failOn["boxes.get"]; err != nil {
		return nil, err
	}
	b, ok := r.m.boxes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *b
	return &cp, nil
}

func (r memBoxes) ListByUser(_ context.Context, userID string) ([]*models.FeedbackBox, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["boxes.list"]; err != nil {
		return nil, err
	}
	out := make([]*models.FeedbackBox, 0)
	for _, b := range r.m.boxes {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memBoxes) Update(_ context.Context, id, name, description string) (*models.FeedbackBox, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["boxes.update"]; err != nil {
		return nil, err
	}
	b, ok := r.m.boxes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	b.Name, b.Description = name, description
	cp := *b
	return &cp, nil
}

func (r memBoxes) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["boxes.delete"]; err != nil {
		return err
	}
	if _, ok := r.m.boxes[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.boxes, id)
	return nil
}

type memSubs struct{ m *memStore }

func (r memSubs) Insert(_ context.Context, s *models.Submission) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["subs.insert"]; err != nil {
		return false, err
	}
	for _, existing := range r.m.subs {
		if existing.FeedbackBoxID == s.FeedbackBoxID && existing.SubmissionID == s.SubmissionID {
			return false, nil
		}
	}
	cp := *s
	r.m.subs[s.ID] = &cp
	return true, nil
}

func (r memSubs) GetByExternalID(_ context.Context, boxID, externalID string) (*models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.subs {
		if s.FeedbackBoxID == boxID && s.SubmissionID == externalID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memSubs) ListByBox(_ context.Context, boxID string) ([]*models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["subs.list"]; err != nil {
		return nil, err
	}
	out := make([]*models.Submission, 0)
	for _, s := range r.m.subs {
		if s.FeedbackBoxID == boxID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sortSubmissions(out, func(i int) *models.Submission { return out[i] })
	return out, nil
}

func (r memSubs) CountByBox(_ context.Context, boxID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["subs.count"]; err != nil {
		return 0, err
	}
	var n int64
	for _, s := range r.m.subs {
		if s.FeedbackBoxID == boxID {
			n++
		}
	}
	return n, nil
}

func (r memSubs) DeleteByBox(_ context.Context, boxID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["subs.delete"]; err != nil {
		return 0, err
	}
	var n int64
	for id, s := range r.m.subs {
		if s.FeedbackBoxID == boxID {
			delete(r.m.subs, id)
			n++
		}
	}
	return n, nil
}

func (r memSubs) RecentByUser(_ context.Context, userID string, limit int) ([]*models.Activity, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failOn["subs.recent"]; err != nil {
		return nil, err
	}
	out := make([]*models.Activity, 0)
	for _, s := range r.m.subs {
		b, ok := r.m.boxes[s.FeedbackBoxID]
		if !ok || b.UserID != userID {
			continue
		}
		out = append(out, &models.Activity{Submission: *s, BoxName: b.Name})
	}
	sortSubmissions(out, func(i int) *models.Submission { return &out[i].Submission })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortSubmissions[T any](list []T, at func(int) *models.Submission) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := at(i), at(j)
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// newTestID returns a valid uuid string that sorts by n.
func newTestID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

// fakeProvisioner hands out F100, F101, ... unless err is set.
type fakeProvisioner struct {
	mu    sync.Mutex
	next  int
	calls []string
	err   error
}

func (p *fakeProvisioner) Provision(_ context.Context, name string) (*forms.Form, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, name)
	if p.err != nil {
		return nil, p.err
	}
	id := fmt.Sprintf("F%d", 100+p.next)
	p.next++
	return &forms.Form{FormID: id, QRCodeURL: forms.DefaultLinks().QRCodeURL(id)}, nil
}

// newTxDB returns a real database whose transactions always succeed; the
// repositories under test are in memory, so only Begin/Commit are used.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// clock returns a now func that advances by one second per call,
// starting at start.
func clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(time.Second)
		return t
	}
}
