package questions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/quiz"
)

var ErrQuizFileNotFound = errors.New("quiz file not found")

// Store is the question bank: parsed quiz files kept for later sessions.
// Grading results are never written here.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Quiz Files ──────────────────────────────────────────

func (s *Store) SaveQuizFile(ctx context.Context, name, source string, questions []*quiz.Question) (*models.QuizFile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var file models.QuizFile
	err = tx.QueryRowContext(ctx,
		`INSERT INTO quiz_files (name, source, question_count)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, source, question_count, created_at`,
		name, source, len(questions),
	).Scan(&file.ID, &file.Name, &file.Source, &file.QuestionCount, &file.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert quiz file: %w", err)
	}

	for pos, q := range questions {
		answers := q.Answers
		if answers == nil {
			answers = []string{}
		}

		var questionID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO bank_questions (file_id, position, text, answers, explanation)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			file.ID, pos, q.Text, pq.Array(answers), q.Explanation,
		).Scan(&questionID)
		if err != nil {
			return nil, fmt.Errorf("insert question %d: %w", pos+1, err)
		}

		for cpos, c := range q.Choices {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO bank_choices (question_id, position, label, text)
				 VALUES ($1, $2, $3, $4)`,
				questionID, cpos, c.Label, c.Text,
			); err != nil {
				return nil, fmt.Errorf("insert choice %s of question %d: %w", c.Label, pos+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit quiz file: %w", err)
	}
	return &file, nil
}

func (s *Store) ListQuizFiles(ctx context.Context, limit, offset int) ([]models.QuizFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source, question_count, created_at
		 FROM quiz_files ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list quiz files: %w", err)
	}
	defer rows.Close()

	var files []models.QuizFile
	for rows.Next() {
		var f models.QuizFile
		if err := rows.Scan(&f.ID, &f.Name, &f.Source, &f.QuestionCount, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *Store) GetQuizFile(ctx context.Context, id int64) (*models.QuizFile, error) {
	var f models.QuizFile
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, source, question_count, created_at FROM quiz_files WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.Name, &f.Source, &f.QuestionCount, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQuizFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz file: %w", err)
	}
	return &f, nil
}

// ── Question Loading ────────────────────────────────────

// LoadQuestions rebuilds the questions of a quiz file in stored order.
// The returned questions have no choice map yet.
func (s *Store) LoadQuestions(ctx context.Context, fileID int64) ([]*quiz.Question, error) {
	if _, err := s.GetQuizFile(ctx, fileID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT q.id, q.text, q.answers, q.explanation, c.label, c.text
		 FROM bank_questions q
		 JOIN bank_choices c ON c.question_id = q.id
		 WHERE q.file_id = $1
		 ORDER BY q.position, c.position`,
		fileID,
	)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []*quiz.Question
	var lastID int64 = -1
	for rows.Next() {
		var id int64
		var text, explanation, label, choiceText string
		var answers []string
		if err := rows.Scan(&id, &text, pq.Array(&answers), &explanation, &label, &choiceText); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}

		if id != lastID {
			questions = append(questions, &quiz.Question{
				Text:        text,
				Answers:     answers,
				Explanation: explanation,
			})
			lastID = id
		}
		q := questions[len(questions)-1]
		q.Choices = append(q.Choices, quiz.Choice{Label: label, Text: choiceText})
	}
	return questions, rows.Err()
}
