package quizresults_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/quizmart/internal/app/features/quizresults"
	"github.com/dalemusser/quizmart/internal/app/services/attempts"
	"github.com/dalemusser/quizmart/internal/app/services/grading"
	"github.com/dalemusser/quizmart/internal/app/services/membership"
	"github.com/dalemusser/quizmart/internal/app/system/cache"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
	"github.com/go-chi/chi/v5"
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
	testutil.EnsureIndexes(t, db)
	logger := zap.NewNop()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store, err := cache.NewMongo(ctx, db)
	if err != nil {
		t.Fatalf("NewMongo failed: %v", err)
	}
	archive := attempts.New(store, 0, logger)
	h := quizresults.NewHandler(db,
		grading.New(db, archive, nil, logger),
		membership.New(db, nil, nil, logger),
		logger)
	return env{router: quizresults.Routes(h), fx: testutil.NewFixtures(t, db), archive: archive}
}

func (e env) send(t *testing.T, method, target string, as models.User, body any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(t, method, target, as, body))
	return rec
}

func TestHandleSubmit(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := e.fx.CreateUser(ctx, "Olga", "olga@example.com")
	taker := e.fx.CreateUser(ctx, "Tara", "tara@example.com")
	c := e.fx.CreateCompany(ctx, "Acme", owner.ID, true)
	full := e.fx.CreateQuiz(ctx, c.ID, owner.ID, "Basics",
		testutil.QuestionSpec{Title: "Q1", Options: []testutil.OptionSpec{{Text: "A", Correct: true}, {Text: "B"}}},
		testutil.QuestionSpec{Title: "Q2", Options: []testutil.OptionSpec{{Text: "C"}, {Text: "D", Correct: true}}},
	)
	q1, q2 := full.Questions[0], full.Questions[1]

	rec := e.send(t, http.MethodPost, "/", taker, map[string]any{
		"quiz_id": full.ID.Hex(),
		"question_answers": []map[string]any{
			{"question_id": q1.ID.Hex(), "answer_ids": []string{q1.Options[0].ID.Hex()}},
			{"question_id": q2.ID.Hex(), "answer_ids": []string{q2.Options[0].ID.Hex()}},
		},
	})
	rec.AssertStatus(t, http.StatusCreated)

	var res grading.Result
	rec.DecodeJSON(t, &res)
	if res.CorrectAnswers != 1 || res.TotalQuestions != 2 || res.Score != 50 {
		t.Errorf("result: got %+v, want 1/2 = 50", res)
	}

	recs, err := e.archive.List(ctx, taker.ID, full.ID)
	if err != nil {
		t.Fatalf("archive List failed: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("archived attempts: got %d, want 1", len(recs))
	}
}

func TestHandleSubmit_UnknownQuiz(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	taker := e.fx.CreateUser(ctx, "Tara", "tara@example.com")

	rec := e.send(t, http.MethodPost, "/", taker, map[string]any{
		"quiz_id":          "64b000000000000000000001",
		"question_answers": []map[string]any{},
	})
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertDetail(t, "Quiz not found")
}

func TestAverageScores(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := e.fx.CreateUser(ctx, "Olga", "olga@example.com")
	companyAdmin := e.fx.CreateUser(ctx, "Adam", "adam@example.com")
	taker := e.fx.CreateUser(ctx, "Tara", "tara@example.com")
	stranger := e.fx.CreateUser(ctx, "Stan", "stan@example.com")
	staff := e.fx.CreateManager(ctx, "Manny", "manny@example.com")

	a := e.fx.CreateCompany(ctx, "Alpha", owner.ID, true)
	b := e.fx.CreateCompany(ctx, "Beta", owner.ID, true)
	e.fx.CreateMembership(ctx, a.ID, companyAdmin.ID, models.StatusAdmin)
	qa := e.fx.CreateQuiz(ctx, a.ID, owner.ID, "QA")
	qb := e.fx.CreateQuiz(ctx, b.ID, owner.ID, "QB")
	e.fx.CreateQuizResult(ctx, qa.ID, taker.ID, a.ID, 3, 4)
	e.fx.CreateQuizResult(ctx, qb.ID, taker.ID, b.ID, 1, 4)

	rec := e.send(t, http.MethodGet, "/average-score/user/"+taker.ID.Hex(), taker, nil)
	rec.AssertStatus(t, http.StatusOK)
	var avg grading.Average
	rec.DecodeJSON(t, &avg)
	if avg.Score != 50 || avg.TotalQuestions != 8 {
		t.Errorf("overall: got %+v, want 4/8 = 50", avg)
	}

	companyPath := "/average-score/user/" + taker.ID.Hex() + "/company/" + a.ID.Hex()
	tests := []struct {
		name       string
		as         models.User
		wantStatus int
	}{
		{"self", taker, http.StatusOK},
		{"staff", staff, http.StatusOK},
		{"company admin", companyAdmin, http.StatusOK},
		{"stranger", stranger, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.send(t, http.MethodGet, companyPath, tt.as, nil)
			rec.AssertStatus(t, tt.wantStatus)
			if tt.wantStatus == http.StatusOK {
				var avg grading.Average
				rec.DecodeJSON(t, &avg)
				if avg.Score != 75 {
					t.Errorf("company score: got %v, want 75", avg.Score)
				}
			}
		})
	}

	// the user-wide average is open to any signed-in user
	rec = e.send(t, http.MethodGet, "/average-score/user/"+taker.ID.Hex(), stranger, nil)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &avg)
	if avg.Score != 50 {
		t.Errorf("overall as stranger: got %v, want 50", avg.Score)
	}

	rec = testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/average-score/user/"+taker.ID.Hex()))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
