package export_test

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/quizmart/internal/app/features/export"
	"github.com/dalemusser/quizmart/internal/app/services/attempts"
	exportsvc "github.com/dalemusser/quizmart/internal/app/services/export"
	"github.com/dalemusser/quizmart/internal/app/system/cache"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	router  chi.Router
	fx      *testutil.Fixtures
	archive *attempts.Archive
}

func newTestEnv(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store, err := cache.NewMongo(ctx, db)
	if err != nil {
		t.Fatalf("NewMongo failed: %v", err)
	}
	archive := attempts.New(store, 0, logger)
	h := export.NewHandler(exportsvc.New(db, archive, nil, logger), logger)
	return env{router: export.Routes(h), fx: testutil.NewFixtures(t, db), archive: archive}
}

// seed stores one quiz and one attempt by taker selecting both options of
// the only question.
func (e env) seed(t *testing.T) (owner, taker models.User, quizID primitive.ObjectID) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner = e.fx.CreateUser(ctx, "Olga", "olga@example.com")
	taker = e.fx.CreateUser(ctx, "Tara", "tara@example.com")
	c := e.fx.CreateCompany(ctx, "Acme", owner.ID, true)
	full := e.fx.CreateQuiz(ctx, c.ID, owner.ID, "Basics",
		testutil.QuestionSpec{Title: "Pick", Options: []testutil.OptionSpec{{Text: "=SUM(A1)", Correct: true}, {Text: "B"}}},
	)
	q := full.Questions[0]
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	rec := attempts.NewRecord(taker.ID, c.ID, full.ID, at,
		[]attempts.Submitted{{QuestionID: q.ID, AnswerIDs: []primitive.ObjectID{q.Options[0].ID, q.Options[1].ID}}},
		map[primitive.ObjectID]map[primitive.ObjectID]bool{q.ID: {q.Options[0].ID: true}},
	)
	if _, err := e.archive.Save(ctx, taker.ID, full.ID, at, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return owner, taker, full.ID
}

func (e env) get(t *testing.T, target string, as models.User) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, target), as))
	return rec
}

func query(format string, user, quiz primitive.ObjectID) string {
	return "/quiz?format=" + format + "&user_id=" + user.Hex() + "&quiz_id=" + quiz.Hex()
}

func TestExportJSON(t *testing.T) {
	e := newTestEnv(t)
	_, taker, quizID := e.seed(t)

	rec := e.get(t, query("json", taker.ID, quizID), taker)
	rec.AssertStatus(t, http.StatusOK)
	if cd := rec.Header().Get("Content-Disposition"); cd != "" {
		t.Errorf("json should be inline, got Content-Disposition %q", cd)
	}

	var list []exportsvc.Attempt
	rec.DecodeJSON(t, &list)
	if len(list) != 1 {
		t.Fatalf("attempts: got %d, want 1", len(list))
	}
	if list[0].QuizTitle != "Basics" {
		t.Errorf("quiz_title: got %q, want %q", list[0].QuizTitle, "Basics")
	}
	sel := list[0].Answers[0].SelectedAnswers
	if len(sel) != 2 || !sel[0].IsCorrect || sel[1].IsCorrect {
		t.Errorf("selected answers: got %+v", sel)
	}
}

func TestExportCSV(t *testing.T) {
	e := newTestEnv(t)
	owner, taker, quizID := e.seed(t)

	rec := e.get(t, query("csv", taker.ID, quizID), owner)
	rec.AssertStatus(t, http.StatusOK)
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="quiz_export.csv"` {
		t.Errorf("Content-Disposition: got %q", cd)
	}
	if cl := rec.Header().Get("Content-Length"); cl != "" {
		t.Errorf("csv should stream without a Content-Length, got %q", cl)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "\ufeff") {
		t.Error("csv should start with a byte order mark")
	}
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(body, "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records: got %d, want header + 2", len(records))
	}
	if got := records[1][7]; got != "'=SUM(A1)" {
		t.Errorf("answer text: got %q, want formula-escaped", got)
	}
	if records[1][8] != "True" || records[2][8] != "False" {
		t.Errorf("is correct: got %q, %q", records[1][8], records[2][8])
	}
}

func TestExportXLSXHeaders(t *testing.T) {
	e := newTestEnv(t)
	_, taker, quizID := e.seed(t)

	rec := e.get(t, query("xlsx", taker.ID, quizID), taker)
	rec.AssertStatus(t, http.StatusOK)
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="quiz_export.xlsx"` {
		t.Errorf("Content-Disposition: got %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty workbook")
	}
}

func TestExportErrors(t *testing.T) {
	e := newTestEnv(t)
	_, taker, quizID := e.seed(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	stranger := e.fx.CreateUser(ctx, "Stan", "stan@example.com")

	tests := []struct {
		name       string
		target     string
		as         models.User
		wantStatus int
	}{
		{"unknown format", query("pdf", taker.ID, quizID), taker, http.StatusBadRequest},
		{"missing quiz id", "/quiz?user_id=" + taker.ID.Hex(), taker, http.StatusBadRequest},
		{"unknown quiz", query("json", taker.ID, primitive.NewObjectID()), taker, http.StatusNotFound},
		{"someone else's attempts", query("json", taker.ID, quizID), stranger, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.get(t, tt.target, tt.as)
			rec.AssertStatus(t, tt.wantStatus)
		})
	}
}
