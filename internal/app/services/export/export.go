// Package export turns archived quiz attempts into JSON, CSV and XLSX
// downloads.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/dalemusser/quizmart/internal/app/policy/companypolicy"
	"github.com/dalemusser/quizmart/internal/app/services/attempts"
	companystore "github.com/dalemusser/quizmart/internal/app/store/companies"
	membershipstore "github.com/dalemusser/quizmart/internal/app/store/memberships"
	quizstore "github.com/dalemusser/quizmart/internal/app/store/quizzes"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/csvutil"
	"github.com/dalemusser/quizmart/internal/app/system/metrics"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/tealeg/xlsx"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// SheetName is the worksheet holding XLSX exports.
const SheetName = "Quiz Export"

var (
	ErrQuizNotFound  = apperr.NotFoundf("Quiz not found")
	ErrForbidden     = apperr.Forbiddenf("You do not have permission.")
	ErrUnknownFormat = apperr.BadRequestf("Unsupported export format. Use json, csv or xlsx.")
)

// Header is the column set of CSV and XLSX exports, one row per selected
// answer.
var Header = []string{
	"User ID",
	"Quiz Title",
	"Quiz Description",
	"Timestamp",
	"Question ID",
	"Question Title",
	"Answer Option ID",
	"Answer Option Text",
	"Is Correct",
}

// ParseFormat accepts json, csv or xlsx in any case. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return JSON, nil
	case JSON, CSV, XLSX:
		return f, nil
	}
	return "", ErrUnknownFormat
}

type SelectedAnswer struct {
	ID               string `json:"id"`
	IsCorrect        bool   `json:"is_correct"`
	AnswerOptionText string `json:"answer_option_text"`
}

type AnswerDetail struct {
	QuestionID      string           `json:"question_id"`
	QuestionTitle   string           `json:"question_title"`
	SelectedAnswers []SelectedAnswer `json:"selected_answers"`
}

// Attempt is an archived attempt enriched with the quiz's current text.
type Attempt struct {
	Timestamp       string         `json:"timestamp"`
	QuizTitle       string         `json:"quiz_title"`
	QuizDescription string         `json:"quiz_description"`
	UserID          string         `json:"user_id"`
	Answers         []AnswerDetail `json:"answers"`
}

// flushEvery is how many CSV rows are buffered before they go to the client.
const flushEvery = 200

// Download is an authorized export whose attempts are loaded but not yet
// rendered.
type Download struct {
	Format      Format
	ContentType string
	// Filename is empty for JSON, which is served inline.
	Filename string
	Rows     int

	userID, quizID primitive.ObjectID
	attempts       []Attempt
}

// File is a rendered export.
type File struct {
	Format      Format
	ContentType string
	// Filename is empty for JSON, which is served inline.
	Filename string
	Body     []byte
	Rows     int
}

type Service struct {
	quizzes   *quizstore.Store
	companies *companystore.Store
	rows      *membershipstore.Store
	archive   *attempts.Archive
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func New(db *mongo.Database, archive *attempts.Archive, m *metrics.Metrics, log *zap.Logger) *Service {
	return &Service{
		quizzes:   quizstore.New(db),
		companies: companystore.New(db),
		rows:      membershipstore.New(db),
		archive:   archive,
		metrics:   m,
		log:       log,
	}
}

// authorize loads the quiz and checks that actor manages its company or is
// exporting their own attempts.
func (s *Service) authorize(ctx context.Context, actor, userID, quizID primitive.ObjectID) (models.QuizFull, error) {
	full, err := s.quizzes.LoadFull(ctx, quizID)
	if errors.Is(err, persist.ErrNotFound) {
		return models.QuizFull{}, ErrQuizNotFound
	}
	if err != nil {
		return models.QuizFull{}, apperr.Internalf(err, "load quiz")
	}
	if userID == actor {
		return full, nil
	}

	company, err := s.companies.GetByID(ctx, full.CompanyID)
	if errors.Is(err, persist.ErrNotFound) {
		return models.QuizFull{}, ErrForbidden
	}
	if err != nil {
		return models.QuizFull{}, apperr.Internalf(err, "load company")
	}
	capability, err := companypolicy.Resolve(ctx, company, s.rows, actor)
	if err != nil {
		return models.QuizFull{}, apperr.Internalf(err, "resolve capability")
	}
	if !capability.CanManage() {
		return models.QuizFull{}, ErrForbidden
	}
	return full, nil
}

// Attempts returns the user's live attempts on the quiz, newest first,
// with titles and option texts taken from the quiz as it is now. Questions
// or options deleted since the attempt come back with empty text.
func (s *Service) Attempts(ctx context.Context, actor, userID, quizID primitive.ObjectID) ([]Attempt, error) {
	full, err := s.authorize(ctx, actor, userID, quizID)
	if err != nil {
		return nil, err
	}
	recs, err := s.archive.List(ctx, userID, quizID)
	if err != nil {
		return nil, apperr.Internalf(err, "read attempt archive")
	}
	return Enrich(full, userID, recs), nil
}

// Enrich joins records with the text of full.
func Enrich(full models.QuizFull, userID primitive.ObjectID, recs []models.QuizAttemptRecord) []Attempt {
	type question struct {
		title   string
		options map[string]string
	}
	byID := make(map[string]question, len(full.Questions))
	for _, q := range full.Questions {
		opts := make(map[string]string, len(q.Options))
		for _, o := range q.Options {
			opts[o.ID.Hex()] = o.Text
		}
		byID[q.ID.Hex()] = question{title: q.Title, options: opts}
	}

	out := make([]Attempt, 0, len(recs))
	for _, rec := range recs {
		a := Attempt{
			Timestamp:       rec.Timestamp,
			QuizTitle:       full.Title,
			QuizDescription: full.Description,
			UserID:          userID.Hex(),
			Answers:         make([]AnswerDetail, 0, len(rec.Answers)),
		}
		for _, ans := range rec.Answers {
			q := byID[ans.QuestionID]
			d := AnswerDetail{
				QuestionID:      ans.QuestionID,
				QuestionTitle:   q.title,
				SelectedAnswers: make([]SelectedAnswer, 0, len(ans.Answers)),
			}
			for _, sel := range ans.Answers {
				d.SelectedAnswers = append(d.SelectedAnswers, SelectedAnswer{
					ID:               sel.ID,
					IsCorrect:        sel.IsCorrect,
					AnswerOptionText: q.options[sel.ID],
				})
			}
			a.Answers = append(a.Answers, d)
		}
		out = append(out, a)
	}
	return out
}

// eachRow calls fn with one row per selected answer, in Header order.
func eachRow(list []Attempt, fn func(row []string) error) error {
	for _, a := range list {
		for _, ans := range a.Answers {
			for _, sel := range ans.SelectedAnswers {
				if err := fn([]string{
					a.UserID,
					a.QuizTitle,
					a.QuizDescription,
					a.Timestamp,
					ans.QuestionID,
					ans.QuestionTitle,
					sel.ID,
					sel.AnswerOptionText,
					boolText(sel.IsCorrect),
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Rows flattens attempts to one row per selected answer, in Header order.
func Rows(list []Attempt) [][]string {
	var rows [][]string
	_ = eachRow(list, func(row []string) error {
		rows = append(rows, row)
		return nil
	})
	return rows
}

func countRows(list []Attempt) int {
	n := 0
	for _, a := range list {
		for _, ans := range a.Answers {
			n += len(ans.SelectedAnswers)
		}
	}
	return n
}

func boolText(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// WriteCSV writes a BOM-prefixed CRLF CSV of list to w, flushing every
// flushEvery rows.
func WriteCSV(w io.Writer, list []Attempt) error {
	cw, err := csvutil.NewWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Write(Header); err != nil {
		return err
	}
	n := 0
	err = eachRow(list, func(row []string) error {
		for i, v := range row {
			row[i] = csvutil.SanitizeField(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
		if n++; n%flushEvery == 0 {
			cw.Flush()
			return cw.Error()
		}
		return nil
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with a single sheet of list to w.
func WriteXLSX(w io.Writer, list []Attempt) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetString(h)
	}
	for _, r := range Rows(list) {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetString(v)
		}
	}
	return file.Write(w)
}

// Prepare checks that actor may export the user's attempts on the quiz and
// loads them. Nothing is written until Render, so a caller can still answer
// with an error status.
func (s *Service) Prepare(ctx context.Context, actor, userID, quizID primitive.ObjectID, format Format) (*Download, error) {
	d := &Download{Format: format, userID: userID, quizID: quizID}
	switch format {
	case JSON:
		d.ContentType = "application/json"
	case CSV:
		d.ContentType = "text/csv; charset=utf-8"
		d.Filename = "quiz_export.csv"
	case XLSX:
		d.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		d.Filename = "quiz_export.xlsx"
	default:
		return nil, ErrUnknownFormat
	}
	list, err := s.Attempts(ctx, actor, userID, quizID)
	if err != nil {
		return nil, err
	}
	d.attempts = list
	d.Rows = countRows(list)
	return d, nil
}

// Render writes d to w in its format. CSV and JSON go straight to w.
func (s *Service) Render(w io.Writer, d *Download) error {
	var err error
	switch d.Format {
	case JSON:
		err = json.NewEncoder(w).Encode(d.attempts)
	case CSV:
		err = WriteCSV(w, d.attempts)
	case XLSX:
		err = WriteXLSX(w, d.attempts)
	default:
		return ErrUnknownFormat
	}
	if err != nil {
		return apperr.Internalf(err, "render %s export", d.Format)
	}

	s.metrics.Exported(string(d.Format))
	s.log.Info("quiz attempts exported",
		zap.String("format", string(d.Format)),
		zap.String("quiz_id", d.quizID.Hex()),
		zap.String("user_id", d.userID.Hex()),
		zap.Int("rows", d.Rows))
	return nil
}

// Export renders the user's attempts on the quiz in format into memory.
func (s *Service) Export(ctx context.Context, actor, userID, quizID primitive.ObjectID, format Format) (File, error) {
	d, err := s.Prepare(ctx, actor, userID, quizID, format)
	if err != nil {
		return File{}, err
	}
	var buf bytes.Buffer
	if err := s.Render(&buf, d); err != nil {
		return File{}, err
	}
	return File{
		Format:      d.Format,
		ContentType: d.ContentType,
		Filename:    d.Filename,
		Body:        buf.Bytes(),
		Rows:        d.Rows,
	}, nil
}
