package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vedlang/shabd/internal/models"
)

// ErrInvalidTranslation is returned by Upsert when a record fails the
// validation gate (missing or error-marked translations).
var ErrInvalidTranslation = errors.New("invalid translations")

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = errors.New("record not found")

// SQLiteStore persists validated word records and the conversation log.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS translations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		original_word TEXT NOT NULL,
		detected_language TEXT NOT NULL,
		translation_en TEXT,
		translation_es TEXT,
		translation_hi TEXT,
		meaning_en TEXT,
		meaning_es TEXT,
		meaning_hi TEXT,
		part_of_speech TEXT,
		example_sentence TEXT,
		synonyms TEXT,
		frequency_score REAL DEFAULT 0,
		context TEXT,
		source TEXT DEFAULT 'transcription',
		is_validated INTEGER DEFAULT 1,
		is_offline INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		validated_at TIMESTAMP,
		UNIQUE(original_word, detected_language)
	);

	CREATE INDEX IF NOT EXISTS idx_translations_language ON translations(detected_language);

	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		user_input TEXT NOT NULL,
		input_language TEXT,
		response_en TEXT,
		response_es TEXT,
		response_hi TEXT,
		translation_source TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_id, created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Upsert writes a validated record keyed by (original_word, detected_language),
// overwriting mutable fields if the key exists. The validation gate runs
// first: records with missing or error-marked translations are rejected with
// ErrInvalidTranslation and never touch the table.
func (s *SQLiteStore) Upsert(ctx context.Context, rec *models.ValidatedRecord) error {
	if err := rec.Translations().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTranslation, err)
	}

	synonymsJSON, err := json.Marshal(rec.Synonyms)
	if err != nil {
		return fmt.Errorf("failed to marshal synonyms: %w", err)
	}

	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.ValidatedAt = now
	rec.IsValidated = true

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO translations
		 (original_word, detected_language, translation_en, translation_es, translation_hi,
		  meaning_en, meaning_es, meaning_hi, part_of_speech, example_sentence, synonyms,
		  frequency_score, context, source, is_validated, is_offline, created_at, validated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
		 ON CONFLICT(original_word, detected_language) DO UPDATE SET
		  translation_en = excluded.translation_en,
		  translation_es = excluded.translation_es,
		  translation_hi = excluded.translation_hi,
		  meaning_en = excluded.meaning_en,
		  meaning_es = excluded.meaning_es,
		  meaning_hi = excluded.meaning_hi,
		  part_of_speech = excluded.part_of_speech,
		  example_sentence = excluded.example_sentence,
		  synonyms = excluded.synonyms,
		  frequency_score = excluded.frequency_score,
		  context = excluded.context,
		  source = excluded.source,
		  is_validated = 1,
		  is_offline = excluded.is_offline,
		  validated_at = excluded.validated_at`,
		rec.OriginalWord, rec.DetectedLanguage, rec.TranslationEn, rec.TranslationEs, rec.TranslationHi,
		rec.MeaningEn, rec.MeaningEs, rec.MeaningHi, rec.PartOfSpeech, rec.ExampleSentence, string(synonymsJSON),
		rec.FrequencyScore, rec.Context, rec.Source, boolToInt(rec.IsOffline), rec.CreatedAt, rec.ValidatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

// Get returns the validated record for (word, language).
func (s *SQLiteStore) Get(ctx context.Context, word, language string) (*models.ValidatedRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+` FROM translations WHERE original_word = ? AND detected_language = ?`,
		word, language,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, word, language)
	}
	return rec, err
}

// List returns validated records, newest first, optionally filtered by
// detected language.
func (s *SQLiteStore) List(ctx context.Context, language string, limit int) ([]*models.ValidatedRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var (
		rows *sql.Rows
		err  error
	)
	if language != "" {
		rows, err = s.db.QueryContext(ctx,
			selectColumns+` FROM translations WHERE detected_language = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
			language, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			selectColumns+` FROM translations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.ValidatedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CountValidated returns the number of validated records.
func (s *SQLiteStore) CountValidated(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations WHERE is_validated = 1`).Scan(&count)
	return count, err
}

// AppendConversation writes one chat exchange to the append-only log.
func (s *SQLiteStore) AppendConversation(ctx context.Context, rec *models.ConversationRecord) error {
	rec.CreatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations
		 (session_id, user_input, input_language, response_en, response_es, response_hi, translation_source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.UserInput, rec.InputLanguage,
		rec.ResponseEn, rec.ResponseEs, rec.ResponseHi, rec.TranslationSource, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append conversation: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// ListConversations returns the most recent exchanges for a session, newest first.
func (s *SQLiteStore) ListConversations(ctx context.Context, sessionID string, limit int) ([]*models.ConversationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, user_input, input_language, response_en, response_es, response_hi, translation_source, created_at
		 FROM conversations WHERE session_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.ConversationRecord
	for rows.Next() {
		var rec models.ConversationRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.UserInput, &rec.InputLanguage,
			&rec.ResponseEn, &rec.ResponseEs, &rec.ResponseHi, &rec.TranslationSource, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT id, original_word, detected_language,
	translation_en, translation_es, translation_hi,
	meaning_en, meaning_es, meaning_hi, part_of_speech, example_sentence, synonyms,
	frequency_score, context, source, is_validated, is_offline, created_at, validated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.ValidatedRecord, error) {
	var (
		rec          models.ValidatedRecord
		synonymsJSON string
		isValidated  int
		isOffline    int
	)
	err := row.Scan(&rec.ID, &rec.OriginalWord, &rec.DetectedLanguage,
		&rec.TranslationEn, &rec.TranslationEs, &rec.TranslationHi,
		&rec.MeaningEn, &rec.MeaningEs, &rec.MeaningHi, &rec.PartOfSpeech, &rec.ExampleSentence, &synonymsJSON,
		&rec.FrequencyScore, &rec.Context, &rec.Source, &isValidated, &isOffline, &rec.CreatedAt, &rec.ValidatedAt)
	if err != nil {
		return nil, err
	}
	rec.IsValidated = isValidated != 0
	rec.IsOffline = isOffline != 0
	if synonymsJSON != "" {
		_ = json.Unmarshal([]byte(synonymsJSON), &rec.Synonyms)
	}
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
