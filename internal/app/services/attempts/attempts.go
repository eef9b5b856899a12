// Package attempts archives graded quiz submissions in the cache.
//
// Each attempt is one key, quiz_response:{user}:{quiz}:{YYYYMMDDTHHMMSS},
// holding the attempt JSON. Entries expire with their TTL and are never
// written to MongoDB proper, so a missing entry is normal.
package attempts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/cache"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	KeyPrefix = "quiz_response"

	// DefaultTTL is 172800 seconds.
	DefaultTTL = 48 * time.Hour

	keyTimeLayout = "20060102T150405"

	// fixed width so timestamps sort as strings
	TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// Key returns the cache key of an attempt made at t.
func Key(userID, quizID primitive.ObjectID, t time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", KeyPrefix, userID.Hex(), quizID.Hex(), t.UTC().Format(keyTimeLayout))
}

// Pattern matches every attempt of a user on a quiz.
func Pattern(userID, quizID primitive.ObjectID) string {
	return fmt.Sprintf("%s:%s:%s:*", KeyPrefix, userID.Hex(), quizID.Hex())
}

// Submitted is one question of a submission with the option ids chosen.
type Submitted struct {
	QuestionID primitive.ObjectID
	AnswerIDs  []primitive.ObjectID
}

// NewRecord builds the snapshot of a submission. correct maps each question
// to its correct option ids; a selected id is marked correct when it is in
// that set.
func NewRecord(userID, companyID, quizID primitive.ObjectID, at time.Time, submitted []Submitted, correct map[primitive.ObjectID]map[primitive.ObjectID]bool) models.QuizAttemptRecord {
	rec := models.QuizAttemptRecord{
		UserID:    userID.Hex(),
		CompanyID: companyID.Hex(),
		QuizID:    quizID.Hex(),
		Timestamp: at.UTC().Format(TimestampLayout),
		Answers:   make([]models.AttemptQuestion, 0, len(submitted)),
	}
	for _, s := range submitted {
		q := models.AttemptQuestion{
			QuestionID: s.QuestionID.Hex(),
			Answers:    make([]models.AttemptAnswer, 0, len(s.AnswerIDs)),
		}
		set := correct[s.QuestionID]
		for _, id := range s.AnswerIDs {
			q.Answers = append(q.Answers, models.AttemptAnswer{ID: id.Hex(), IsCorrect: set[id]})
		}
		rec.Answers = append(rec.Answers, q)
	}
	return rec
}

// Archive reads and writes attempt records.
type Archive struct {
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// New returns an Archive whose entries live for ttl (DefaultTTL when zero).
func New(c cache.Cache, ttl time.Duration, log *zap.Logger) *Archive {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Archive{cache: c, ttl: ttl, log: log}
}

// TTL reports the expiry applied to new entries.
func (a *Archive) TTL() time.Duration { return a.ttl }

// Save stores rec under the key for (user, quiz, at) and returns the key.
func (a *Archive) Save(ctx context.Context, userID, quizID primitive.ObjectID, at time.Time, rec models.QuizAttemptRecord) (string, error) {
	if a == nil || a.cache == nil {
		return "", errors.New("attempts: no cache configured")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	key := Key(userID, quizID, at)
	if err := a.cache.SetEx(ctx, key, string(raw), a.ttl); err != nil {
		return "", err
	}
	return key, nil
}

// List returns a user's live attempts on a quiz, newest first, one per
// key. Entries that vanish between enumeration and read, or that do not
// parse, are skipped.
func (a *Archive) List(ctx context.Context, userID, quizID primitive.ObjectID) ([]models.QuizAttemptRecord, error) {
	if a == nil || a.cache == nil {
		return nil, errors.New("attempts: no cache configured")
	}
	keys, err := a.cache.Keys(ctx, Pattern(userID, quizID))
	if err != nil {
		return nil, err
	}

	out := make([]models.QuizAttemptRecord, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		raw, err := a.cache.Get(ctx, k)
		if errors.Is(err, cache.ErrMiss) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var rec models.QuizAttemptRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			if a.log != nil {
				a.log.Debug("skipping malformed attempt", zap.String("key", k), zap.Error(err))
			}
			continue
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}
