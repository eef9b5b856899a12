package attempts_test

import (
	"context"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/quizmart/internal/app/services/attempts"
	"github.com/dalemusser/quizmart/internal/app/system/cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memCache is an in-process cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (m *memCache) Set(ctx context.Context, key, value string) error {
	return m.SetEx(ctx, key, value, 0)
}

func (m *memCache) SetEx(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memCache) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memCache) Ping(context.Context) error { return nil }
func (m *memCache) Close() error               { return nil }

func TestKeyFormat(t *testing.T) {
	user := primitive.NewObjectID()
	quiz := primitive.NewObjectID()
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	got := attempts.Key(user, quiz, at)
	want := "quiz_response:" + user.Hex() + ":" + quiz.Hex() + ":20260304T050607"
	if got != want {
		t.Errorf("Key: got %q, want %q", got, want)
	}
	if ok, _ := path.Match(attempts.Pattern(user, quiz), got); !ok {
		t.Errorf("Pattern %q does not match key %q", attempts.Pattern(user, quiz), got)
	}
}

func TestNewRecordMarksCorrectness(t *testing.T) {
	user, company, quiz := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	q1, q2 := primitive.NewObjectID(), primitive.NewObjectID()
	right, wrong := primitive.NewObjectID(), primitive.NewObjectID()

	correct := map[primitive.ObjectID]map[primitive.ObjectID]bool{
		q1: {right: true},
	}
	rec := attempts.NewRecord(user, company, quiz, time.Now(), []attempts.Submitted{
		{QuestionID: q1, AnswerIDs: []primitive.ObjectID{right, wrong}},
		{QuestionID: q2, AnswerIDs: []primitive.ObjectID{right}},
	}, correct)

	if rec.UserID != user.Hex() || rec.CompanyID != company.Hex() || rec.QuizID != quiz.Hex() {
		t.Fatalf("ids not carried: %+v", rec)
	}
	if len(rec.Answers) != 2 {
		t.Fatalf("answers: got %d, want 2", len(rec.Answers))
	}
	first := rec.Answers[0].Answers
	if !first[0].IsCorrect || first[1].IsCorrect {
		t.Errorf("q1 marks: got %+v", first)
	}
	if rec.Answers[1].Answers[0].IsCorrect {
		t.Errorf("answer to a question outside the key was marked correct")
	}
}

func TestSaveAndList(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	a := attempts.New(c, 0, zap.NewNop())
	if a.TTL() != attempts.DefaultTTL {
		t.Errorf("TTL: got %v, want %v", a.TTL(), attempts.DefaultTTL)
	}

	user, company, quiz := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		rec := attempts.NewRecord(user, company, quiz, at, nil, nil)
		key, err := a.Save(ctx, user, quiz, at, rec)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if c.ttls[key] != attempts.DefaultTTL {
			t.Errorf("ttl for %s: got %v", key, c.ttls[key])
		}
	}
	// another quiz and a corrupt entry are ignored
	other := primitive.NewObjectID()
	if _, err := a.Save(ctx, user, other, base, attempts.NewRecord(user, company, other, base, nil, nil)); err != nil {
		t.Fatalf("Save other failed: %v", err)
	}
	_ = c.Set(ctx, attempts.Pattern(user, quiz)[:len(attempts.Pattern(user, quiz))-1]+"broken", "{not json")

	got, err := a.List(ctx, user, quiz)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List: got %d records, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if strings.Compare(got[i-1].Timestamp, got[i].Timestamp) <= 0 {
			t.Errorf("not newest first: %q before %q", got[i-1].Timestamp, got[i].Timestamp)
		}
	}
}

// repeatingCache reports every key twice, the way a Redis SCAN can while
// the keyspace rehashes.
type repeatingCache struct{ *memCache }

func (r repeatingCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := r.memCache.Keys(ctx, pattern)
	return append(keys, keys...), err
}

func TestListReportsEachKeyOnce(t *testing.T) {
	ctx := context.Background()
	a := attempts.New(repeatingCache{newMemCache()}, time.Hour, zap.NewNop())

	user, company, quiz := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		if _, err := a.Save(ctx, user, quiz, at, attempts.NewRecord(user, company, quiz, at, nil, nil)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := a.List(ctx, user, quiz)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List: got %d records, want 2", len(got))
	}
	if got[0].Timestamp == got[1].Timestamp {
		t.Errorf("duplicate record %q", got[0].Timestamp)
	}
}

func TestNilArchive(t *testing.T) {
	var a *attempts.Archive
	if _, err := a.List(context.Background(), primitive.NewObjectID(), primitive.NewObjectID()); err == nil {
		t.Error("expected error from nil archive")
	}
}
