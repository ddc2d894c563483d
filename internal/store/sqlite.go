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

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/rcliao/vocab-keeper/internal/model"
)

// SQLiteStore implements Backend using SQLite.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; transactions must not race a second connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS streak (
		id                  INTEGER PRIMARY KEY CHECK (id = 1),
		current_streak      INTEGER NOT NULL DEFAULT 0,
		longest_streak      INTEGER NOT NULL DEFAULT 0,
		last_completed_date TEXT NOT NULL DEFAULT '',
		freeze_available    INTEGER NOT NULL DEFAULT 1,
		freeze_used_date    TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS streak_history (
		date            TEXT PRIMARY KEY,
		status          TEXT NOT NULL,
		words_completed INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS word_confidence (
		word_id    INTEGER PRIMARY KEY,
		level      TEXT NOT NULL CHECK (level IN ('learning', 'familiar', 'mastered')),
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_dictionary (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		english       TEXT NOT NULL,
		mongolian     TEXT NOT NULL,
		pronunciation TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bundle_words (
		id            INTEGER PRIMARY KEY,
		english       TEXT NOT NULL,
		mongolian     TEXT NOT NULL,
		pronunciation TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS word_overrides (
		word_id       INTEGER PRIMARY KEY,
		english       TEXT NOT NULL,
		mongolian     TEXT NOT NULL,
		pronunciation TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL DEFAULT '',
		updated_at    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS deleted_words (
		word_id INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS pack_status (
		pack_id    TEXT PRIMARY KEY,
		status     TEXT NOT NULL CHECK (status IN ('accepted', 'dismissed')),
		version    INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bundle_status (
		bundle_id  TEXT PRIMARY KEY,
		status     TEXT NOT NULL CHECK (status IN ('accepted', 'dismissed')),
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS daily_progress (
		id                 INTEGER PRIMARY KEY CHECK (id = 1),
		date               TEXT NOT NULL,
		en_to_mn_completed INTEGER NOT NULL DEFAULT 0,
		mn_to_en_completed INTEGER NOT NULL DEFAULT 0,
		en_to_mn_word_ids  TEXT NOT NULL DEFAULT '[]',
		mn_to_en_word_ids  TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS extra_session (
		id                 INTEGER PRIMARY KEY CHECK (id = 1),
		session_id         TEXT NOT NULL,
		date               TEXT NOT NULL,
		word_ids           TEXT NOT NULL DEFAULT '[]',
		en_to_mn_completed INTEGER NOT NULL DEFAULT 0,
		mn_to_en_completed INTEGER NOT NULL DEFAULT 0,
		en_to_mn_word_ids  TEXT NOT NULL DEFAULT '[]',
		mn_to_en_word_ids  TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS migration (
		id           INTEGER PRIMARY KEY CHECK (id = 1),
		completed_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Kind() string { return KindSQLite }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// --- streak ---

type streakRow struct {
	CurrentStreak     int    `db:"current_streak"`
	LongestStreak     int    `db:"longest_streak"`
	LastCompletedDate string `db:"last_completed_date"`
	FreezeAvailable   bool   `db:"freeze_available"`
	FreezeUsedDate    string `db:"freeze_used_date"`
}

func (s *SQLiteStore) Streak(ctx context.Context) (model.StreakData, error) {
	data := model.NewStreakData()

	var row streakRow
	err := s.db.GetContext(ctx, &row,
		`SELECT current_streak, longest_streak, last_completed_date, freeze_available, freeze_used_date
		 FROM streak WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return data, nil
	}
	if err != nil {
		return data, fmt.Errorf("read streak: %w", err)
	}

	data.CurrentStreak = row.CurrentStreak
	data.LongestStreak = row.LongestStreak
	data.LastCompletedDate = model.Date(row.LastCompletedDate)
	data.StreakFreezeAvailable = row.FreezeAvailable
	data.StreakFreezeUsedDate = model.Date(row.FreezeUsedDate)

	if err := s.db.SelectContext(ctx, &data.History,
		`SELECT date, status, words_completed FROM streak_history ORDER BY date`); err != nil {
		return model.NewStreakData(), fmt.Errorf("read streak history: %w", err)
	}
	if data.History == nil {
		data.History = []model.DayRecord{}
	}
	return data, nil
}

func (s *SQLiteStore) SaveStreak(ctx context.Context, data model.StreakData) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveStreakTx(ctx, tx, data); err != nil {
		return err
	}
	return tx.Commit()
}

func saveStreakTx(ctx context.Context, tx *sqlx.Tx, data model.StreakData) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO streak (id, current_streak, longest_streak, last_completed_date, freeze_available, freeze_used_date)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_completed_date = excluded.last_completed_date,
			freeze_available = excluded.freeze_available,
			freeze_used_date = excluded.freeze_used_date`,
		data.CurrentStreak, data.LongestStreak, string(data.LastCompletedDate),
		data.StreakFreezeAvailable, string(data.StreakFreezeUsedDate))
	if err != nil {
		return fmt.Errorf("save streak: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM streak_history`); err != nil {
		return fmt.Errorf("clear streak history: %w", err)
	}
	for _, r := range data.History {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO streak_history (date, status, words_completed) VALUES (?, ?, ?)`,
			string(r.Date), string(r.Status), r.WordsCompleted)
		if err != nil {
			return fmt.Errorf("save streak history: %w", err)
		}
	}
	return nil
}

// --- confidence ---

func (s *SQLiteStore) Confidences(ctx context.Context) (map[int]model.Confidence, error) {
	var rows []struct {
		WordID int    `db:"word_id"`
		Level  string `db:"level"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT word_id, level FROM word_confidence`); err != nil {
		return map[int]model.Confidence{}, fmt.Errorf("read confidence: %w", err)
	}
	out := make(map[int]model.Confidence, len(rows))
	for _, r := range rows {
		out[r.WordID] = model.Confidence(r.Level)
	}
	return out, nil
}

func (s *SQLiteStore) SetConfidence(ctx context.Context, wordID int, c model.Confidence) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO word_confidence (word_id, level, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(word_id) DO UPDATE SET level = excluded.level, updated_at = excluded.updated_at`,
		wordID, string(c), s.stamp())
	return err
}

func (s *SQLiteStore) DeleteConfidence(ctx context.Context, wordID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM word_confidence WHERE word_id = ?`, wordID)
	return err
}

// --- user dictionary ---

func (s *SQLiteStore) CustomWords(ctx context.Context) ([]model.Word, error) {
	var words []model.Word
	err := s.db.SelectContext(ctx, &words,
		`SELECT id + ? AS id, english, mongolian, pronunciation, category
		 FROM user_dictionary ORDER BY id`, model.CustomIDShift)
	if err != nil {
		return nil, fmt.Errorf("read user dictionary: %w", err)
	}
	return words, nil
}

func (s *SQLiteStore) AddCustomWord(ctx context.Context, f model.WordFields) (model.Word, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Word{}, err
	}
	defer tx.Rollback()

	w, err := s.addCustomWordTx(ctx, tx, f)
	if err != nil {
		return model.Word{}, err
	}
	return w, tx.Commit()
}

func (s *SQLiteStore) addCustomWordTx(ctx context.Context, tx *sqlx.Tx, f model.WordFields) (model.Word, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO user_dictionary (english, mongolian, pronunciation, category, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		f.English, f.Mongolian, f.Pronunciation, f.Category, s.stamp())
	if err != nil {
		return model.Word{}, fmt.Errorf("insert custom word: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return model.Word{}, err
	}
	id := int(rowID) + model.CustomIDShift
	if id > model.CustomIDMax {
		return model.Word{}, ErrCustomIDsExhausted
	}
	return f.WithID(id), nil
}

func (s *SQLiteStore) PutCustomWord(ctx context.Context, w model.Word) error {
	return putCustomWordTx(ctx, s.db, w, s.stamp())
}

func putCustomWordTx(ctx context.Context, ex sqlx.ExecerContext, w model.Word, stamp string) error {
	if !model.IsCustomID(w.ID) {
		return fmt.Errorf("word id %d is outside the custom range", w.ID)
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO user_dictionary (id, english, mongolian, pronunciation, category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			english = excluded.english,
			mongolian = excluded.mongolian,
			pronunciation = excluded.pronunciation,
			category = excluded.category`,
		w.ID-model.CustomIDShift, w.English, w.Mongolian, w.Pronunciation, w.Category, stamp)
	return err
}

func (s *SQLiteStore) DeleteCustomWord(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user_dictionary WHERE id = ?`, id-model.CustomIDShift)
	return err
}

// --- bundle words ---

func (s *SQLiteStore) BundleWords(ctx context.Context) ([]model.Word, error) {
	var words []model.Word
	err := s.db.SelectContext(ctx, &words,
		`SELECT id, english, mongolian, pronunciation, category FROM bundle_words ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read bundle words: %w", err)
	}
	return words, nil
}

func (s *SQLiteStore) PutBundleWord(ctx context.Context, w model.Word) error {
	if model.ClassifyID(w.ID) != model.RangeBundle {
		return fmt.Errorf("word id %d is outside the bundle range", w.ID)
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT OR REPLACE INTO bundle_words (id, english, mongolian, pronunciation, category)
		 VALUES (:id, :english, :mongolian, :pronunciation, :category)`, w)
	return err
}

// --- overrides ---

func (s *SQLiteStore) Overrides(ctx context.Context) (map[int]model.Word, error) {
	var words []model.Word
	err := s.db.SelectContext(ctx, &words,
		`SELECT word_id AS id, english, mongolian, pronunciation, category FROM word_overrides`)
	if err != nil {
		return map[int]model.Word{}, fmt.Errorf("read overrides: %w", err)
	}
	out := make(map[int]model.Word, len(words))
	for _, w := range words {
		out[w.ID] = w
	}
	return out, nil
}

func (s *SQLiteStore) SetOverride(ctx context.Context, w model.Word) error {
	return setOverrideTx(ctx, s.db, w, s.stamp())
}

func setOverrideTx(ctx context.Context, ex sqlx.ExecerContext, w model.Word, stamp string) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO word_overrides (word_id, english, mongolian, pronunciation, category, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(word_id) DO UPDATE SET
			english = excluded.english,
			mongolian = excluded.mongolian,
			pronunciation = excluded.pronunciation,
			category = excluded.category,
			updated_at = excluded.updated_at`,
		w.ID, w.English, w.Mongolian, w.Pronunciation, w.Category, stamp)
	return err
}

func (s *SQLiteStore) DeleteOverride(ctx context.Context, wordID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM word_overrides WHERE word_id = ?`, wordID)
	return err
}

// --- deleted ids ---

func (s *SQLiteStore) DeletedIDs(ctx context.Context) (map[int]bool, error) {
	var ids []int
	if err := s.db.SelectContext(ctx, &ids, `SELECT word_id FROM deleted_words`); err != nil {
		return map[int]bool{}, fmt.Errorf("read deleted ids: %w", err)
	}
	out := make(map[int]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (s *SQLiteStore) AddDeletedID(ctx context.Context, wordID int) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO deleted_words (word_id) VALUES (?)`, wordID)
	return err
}

func (s *SQLiteStore) RemoveDeletedID(ctx context.Context, wordID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM deleted_words WHERE word_id = ?`, wordID)
	return err
}

// --- pack and bundle status ---

type packRow struct {
	PackID    string `db:"pack_id"`
	Version   int    `db:"version"`
	Status    string `db:"status"`
	UpdatedAt string `db:"updated_at"`
}

func (s *SQLiteStore) PackStatuses(ctx context.Context) ([]model.PackStatus, error) {
	var rows []packRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT pack_id, version, status, updated_at FROM pack_status ORDER BY pack_id`)
	if err != nil {
		return nil, fmt.Errorf("read pack status: %w", err)
	}
	out := make([]model.PackStatus, 0, len(rows))
	for _, r := range rows {
		t, _ := time.Parse(time.RFC3339, r.UpdatedAt)
		out = append(out, model.PackStatus{
			PackID: r.PackID, Version: r.Version, Status: model.PackState(r.Status), UpdatedAt: t,
		})
	}
	return out, nil
}

func (s *SQLiteStore) SetPackStatus(ctx context.Context, p model.PackStatus) error {
	return setPackStatusTx(ctx, s.db, p, s.now())
}

func setPackStatusTx(ctx context.Context, ex sqlx.ExecerContext, p model.PackStatus, now time.Time) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO pack_status (pack_id, status, version, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(pack_id) DO UPDATE SET
			status = excluded.status,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		p.PackID, string(p.Status), p.Version, p.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *SQLiteStore) BundleStatuses(ctx context.Context) ([]model.BundleStatus, error) {
	var rows []struct {
		BundleID  string `db:"bundle_id"`
		Status    string `db:"status"`
		UpdatedAt string `db:"updated_at"`
	}
	err := s.db.SelectContext(ctx, &rows,
		`SELECT bundle_id, status, updated_at FROM bundle_status ORDER BY bundle_id`)
	if err != nil {
		return nil, fmt.Errorf("read bundle status: %w", err)
	}
	out := make([]model.BundleStatus, 0, len(rows))
	for _, r := range rows {
		t, _ := time.Parse(time.RFC3339, r.UpdatedAt)
		out = append(out, model.BundleStatus{BundleID: r.BundleID, Status: model.PackState(r.Status), UpdatedAt: t})
	}
	return out, nil
}

func (s *SQLiteStore) SetBundleStatus(ctx context.Context, b model.BundleStatus) error {
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bundle_status (bundle_id, status, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(bundle_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		b.BundleID, string(b.Status), b.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

// --- daily progress and extra session ---

type progressRow struct {
	Date            string `db:"date"`
	EnToMnCompleted bool   `db:"en_to_mn_completed"`
	MnToEnCompleted bool   `db:"mn_to_en_completed"`
	EnToMnWordIDs   string `db:"en_to_mn_word_ids"`
	MnToEnWordIDs   string `db:"mn_to_en_word_ids"`
}

func (r progressRow) decode() (model.DailyProgress, error) {
	p := model.DailyProgress{
		Date:            model.Date(r.Date),
		EnToMnCompleted: r.EnToMnCompleted,
		MnToEnCompleted: r.MnToEnCompleted,
	}
	if err := json.Unmarshal([]byte(r.EnToMnWordIDs), &p.EnToMnWordIDs); err != nil {
		return p, fmt.Errorf("decode en_to_mn_word_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(r.MnToEnWordIDs), &p.MnToEnWordIDs); err != nil {
		return p, fmt.Errorf("decode mn_to_en_word_ids: %w", err)
	}
	return p, nil
}

func encodeIDs(ids []int) string {
	if ids == nil {
		ids = []int{}
	}
	b, _ := json.Marshal(ids)
	return string(b)
}

func (s *SQLiteStore) DailyProgress(ctx context.Context) (*model.DailyProgress, error) {
	var row progressRow
	err := s.db.GetContext(ctx, &row,
		`SELECT date, en_to_mn_completed, mn_to_en_completed, en_to_mn_word_ids, mn_to_en_word_ids
		 FROM daily_progress WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read daily progress: %w", err)
	}
	p, err := row.decode()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) SaveDailyProgress(ctx context.Context, p model.DailyProgress) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO daily_progress
			(id, date, en_to_mn_completed, mn_to_en_completed, en_to_mn_word_ids, mn_to_en_word_ids)
		 VALUES (1, ?, ?, ?, ?, ?)`,
		string(p.Date), p.EnToMnCompleted, p.MnToEnCompleted,
		encodeIDs(p.EnToMnWordIDs), encodeIDs(p.MnToEnWordIDs))
	return err
}

func (s *SQLiteStore) ExtraSession(ctx context.Context) (*model.ExtraWordsSession, error) {
	var row struct {
		progressRow
		SessionID string `db:"session_id"`
		WordIDs   string `db:"word_ids"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT session_id, date, word_ids, en_to_mn_completed, mn_to_en_completed, en_to_mn_word_ids, mn_to_en_word_ids
		 FROM extra_session WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read extra session: %w", err)
	}
	p, err := row.progressRow.decode()
	if err != nil {
		return nil, err
	}
	sess := &model.ExtraWordsSession{DailyProgress: p, SessionID: row.SessionID}
	if err := json.Unmarshal([]byte(row.WordIDs), &sess.WordIDs); err != nil {
		return nil, fmt.Errorf("decode word_ids: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) SaveExtraSession(ctx context.Context, sess model.ExtraWordsSession) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO extra_session
			(id, session_id, date, word_ids, en_to_mn_completed, mn_to_en_completed, en_to_mn_word_ids, mn_to_en_word_ids)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
		sess.SessionID, string(sess.Date), encodeIDs(sess.WordIDs),
		sess.EnToMnCompleted, sess.MnToEnCompleted,
		encodeIDs(sess.EnToMnWordIDs), encodeIDs(sess.MnToEnWordIDs))
	return err
}

func (s *SQLiteStore) ClearExtraSession(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM extra_session`)
	return err
}

// --- pack upgrade ---

func (s *SQLiteStore) ApplyPackUpgrade(ctx context.Context, u PackUpgrade) (PackUpgradeResult, error) {
	res := PackUpgradeResult{PromotedIDs: map[int]int{}}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer tx.Rollback()

	stamp := s.stamp()
	for _, p := range u.Promotions {
		w, err := s.addCustomWordTx(ctx, tx, p.Fields)
		if err != nil {
			return PackUpgradeResult{}, fmt.Errorf("promote override %d: %w", p.OverrideID, err)
		}
		res.AddedCustom++
		res.PromotedIDs[p.OverrideID] = w.ID

		if p.Confidence != "" {
			_, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO word_confidence (word_id, level, updated_at) VALUES (?, ?, ?)`,
				w.ID, string(p.Confidence), stamp)
			if err != nil {
				return PackUpgradeResult{}, fmt.Errorf("transfer confidence: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM word_confidence WHERE word_id = ?`, p.OverrideID); err != nil {
				return PackUpgradeResult{}, err
			}
		}

		n, err := execCount(ctx, tx, `DELETE FROM word_overrides WHERE word_id = ?`, p.OverrideID)
		if err != nil {
			return PackUpgradeResult{}, err
		}
		res.RemovedOverrides += n
	}

	for _, id := range u.DropOverrides {
		n, err := execCount(ctx, tx, `DELETE FROM word_overrides WHERE word_id = ?`, id)
		if err != nil {
			return PackUpgradeResult{}, err
		}
		res.RemovedOverrides += n
	}
	for _, id := range u.RestoreDeleted {
		n, err := execCount(ctx, tx, `DELETE FROM deleted_words WHERE word_id = ?`, id)
		if err != nil {
			return PackUpgradeResult{}, err
		}
		res.RestoredDeletes += n
	}
	for _, id := range u.ClearConfidences {
		n, err := execCount(ctx, tx, `DELETE FROM word_confidence WHERE word_id = ?`, id)
		if err != nil {
			return PackUpgradeResult{}, err
		}
		res.ResetConfidences += n
	}

	if err := setPackStatusTx(ctx, tx, u.Accept, s.now()); err != nil {
		return PackUpgradeResult{}, fmt.Errorf("accept pack: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return PackUpgradeResult{}, err
	}
	return res, nil
}

func execCount(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (int, error) {
	r, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := r.RowsAffected()
	return int(n), err
}

// --- snapshot restore and legacy migration ---

func (s *SQLiteStore) Restore(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.restoreTx(ctx, tx, snap); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) restoreTx(ctx context.Context, tx *sqlx.Tx, snap Snapshot) error {
	stamp := s.stamp()

	if err := saveStreakTx(ctx, tx, snap.Streak); err != nil {
		return err
	}
	for id, c := range snap.Confidences {
		if !c.Valid() {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO word_confidence (word_id, level, updated_at) VALUES (?, ?, ?)`,
			id, string(c), stamp)
		if err != nil {
			return fmt.Errorf("restore confidence: %w", err)
		}
	}
	for _, w := range snap.CustomWords {
		if err := putCustomWordTx(ctx, tx, w, stamp); err != nil {
			return fmt.Errorf("restore custom word %d: %w", w.ID, err)
		}
	}
	for _, w := range snap.BundleWords {
		if model.ClassifyID(w.ID) != model.RangeBundle {
			continue
		}
		_, err := tx.NamedExecContext(ctx,
			`INSERT OR REPLACE INTO bundle_words (id, english, mongolian, pronunciation, category)
			 VALUES (:id, :english, :mongolian, :pronunciation, :category)`, w)
		if err != nil {
			return fmt.Errorf("restore bundle word %d: %w", w.ID, err)
		}
	}
	for _, w := range snap.Overrides {
		if err := setOverrideTx(ctx, tx, w, stamp); err != nil {
			return fmt.Errorf("restore override %d: %w", w.ID, err)
		}
	}
	for _, id := range snap.DeletedIDs {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO deleted_words (word_id) VALUES (?)`, id); err != nil {
			return fmt.Errorf("restore deleted id: %w", err)
		}
	}
	for _, p := range snap.Packs {
		if err := setPackStatusTx(ctx, tx, p, s.now()); err != nil {
			return fmt.Errorf("restore pack %s: %w", p.PackID, err)
		}
	}
	for _, b := range snap.Bundles {
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = s.now()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO bundle_status (bundle_id, status, updated_at) VALUES (?, ?, ?)`,
			b.BundleID, string(b.Status), b.UpdatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("restore bundle %s: %w", b.BundleID, err)
		}
	}
	if p := snap.DailyProgress; p != nil {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO daily_progress
				(id, date, en_to_mn_completed, mn_to_en_completed, en_to_mn_word_ids, mn_to_en_word_ids)
			 VALUES (1, ?, ?, ?, ?, ?)`,
			string(p.Date), p.EnToMnCompleted, p.MnToEnCompleted,
			encodeIDs(p.EnToMnWordIDs), encodeIDs(p.MnToEnWordIDs))
		if err != nil {
			return fmt.Errorf("restore daily progress: %w", err)
		}
	}
	if e := snap.ExtraSession; e != nil {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO extra_session
				(id, session_id, date, word_ids, en_to_mn_completed, mn_to_en_completed, en_to_mn_word_ids, mn_to_en_word_ids)
			 VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
			e.SessionID, string(e.Date), encodeIDs(e.WordIDs),
			e.EnToMnCompleted, e.MnToEnCompleted,
			encodeIDs(e.EnToMnWordIDs), encodeIDs(e.MnToEnWordIDs))
		if err != nil {
			return fmt.Errorf("restore extra session: %w", err)
		}
	}
	return nil
}

// Migrated reports whether the one-time legacy migration already ran.
func (s *SQLiteStore) Migrated(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM migration`); err != nil {
		return false, err
	}
	return n > 0, nil
}

// MigrateFrom copies every record of legacy into this store and sets the
// migration flag in the same transaction. It is a no-op once the flag is set.
// A nil legacy store only sets the flag.
func (s *SQLiteStore) MigrateFrom(ctx context.Context, legacy Backend) (bool, error) {
	done, err := s.Migrated(ctx)
	if err != nil {
		return false, fmt.Errorf("check migration flag: %w", err)
	}
	if done {
		return false, nil
	}

	var snap *Snapshot
	if legacy != nil {
		dumped, err := Dump(ctx, legacy)
		if err != nil {
			return false, fmt.Errorf("read legacy store: %w", err)
		}
		snap = &dumped
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if snap != nil {
		if err := s.restoreTx(ctx, tx, *snap); err != nil {
			return false, err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO migration (id, completed_at) VALUES (1, ?)`, s.stamp()); err != nil {
		return false, fmt.Errorf("set migration flag: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return snap != nil, nil
}
