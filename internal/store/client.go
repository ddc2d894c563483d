package store

import (
	"context"

	"github.com/rcliao/vocab-keeper/internal/logger"
	"github.com/rcliao/vocab-keeper/internal/model"
)

// Client is the storage handle shared by the services. Reads never fail:
// a storage or decode error is logged and the zero value is returned.
// Writes log their error and also return it so callers that report counts
// can tell whether anything changed.
type Client struct {
	b Backend
}

// NewClient wraps b.
func NewClient(b Backend) *Client {
	return &Client{b: b}
}

// Kind names the active backend.
func (c *Client) Kind() string { return c.b.Kind() }

// Close closes the backend.
func (c *Client) Close() error { return c.b.Close() }

func (c *Client) readFailed(op string, err error) {
	logger.Warn("storage read failed, using default", "op", op, "backend", c.b.Kind(), "error", err)
}

func (c *Client) write(op string, err error) error {
	if err != nil {
		logger.Error("storage write failed", "op", op, "backend", c.b.Kind(), "error", err)
	}
	return err
}

func (c *Client) Streak(ctx context.Context) model.StreakData {
	s, err := c.b.Streak(ctx)
	if err != nil {
		c.readFailed("streak", err)
		return model.NewStreakData()
	}
	return s
}

func (c *Client) SaveStreak(ctx context.Context, s model.StreakData) error {
	return c.write("save streak", c.b.SaveStreak(ctx, s))
}

func (c *Client) Confidences(ctx context.Context) map[int]model.Confidence {
	m, err := c.b.Confidences(ctx)
	if err != nil || m == nil {
		if err != nil {
			c.readFailed("confidences", err)
		}
		return map[int]model.Confidence{}
	}
	return m
}

func (c *Client) SetConfidence(ctx context.Context, wordID int, level model.Confidence) error {
	return c.write("set confidence", c.b.SetConfidence(ctx, wordID, level))
}

func (c *Client) DeleteConfidence(ctx context.Context, wordID int) error {
	return c.write("delete confidence", c.b.DeleteConfidence(ctx, wordID))
}

func (c *Client) CustomWords(ctx context.Context) []model.Word {
	words, err := c.b.CustomWords(ctx)
	if err != nil {
		c.readFailed("custom words", err)
		return nil
	}
	return words
}

func (c *Client) AddCustomWord(ctx context.Context, f model.WordFields) (model.Word, error) {
	w, err := c.b.AddCustomWord(ctx, f)
	return w, c.write("add custom word", err)
}

func (c *Client) PutCustomWord(ctx context.Context, w model.Word) error {
	return c.write("put custom word", c.b.PutCustomWord(ctx, w))
}

func (c *Client) DeleteCustomWord(ctx context.Context, id int) error {
	return c.write("delete custom word", c.b.DeleteCustomWord(ctx, id))
}

func (c *Client) BundleWords(ctx context.Context) []model.Word {
	words, err := c.b.BundleWords(ctx)
	if err != nil {
		c.readFailed("bundle words", err)
		return nil
	}
	return words
}

func (c *Client) PutBundleWord(ctx context.Context, w model.Word) error {
	return c.write("put bundle word", c.b.PutBundleWord(ctx, w))
}

func (c *Client) Overrides(ctx context.Context) map[int]model.Word {
	m, err := c.b.Overrides(ctx)
	if err != nil || m == nil {
		if err != nil {
			c.readFailed("overrides", err)
		}
		return map[int]model.Word{}
	}
	return m
}

func (c *Client) SetOverride(ctx context.Context, w model.Word) error {
	return c.write("set override", c.b.SetOverride(ctx, w))
}

func (c *Client) DeleteOverride(ctx context.Context, wordID int) error {
	return c.write("delete override", c.b.DeleteOverride(ctx, wordID))
}

func (c *Client) DeletedIDs(ctx context.Context) map[int]bool {
	m, err := c.b.DeletedIDs(ctx)
	if err != nil || m == nil {
		if err != nil {
			c.readFailed("deleted ids", err)
		}
		return map[int]bool{}
	}
	return m
}

func (c *Client) AddDeletedID(ctx context.Context, wordID int) error {
	return c.write("add deleted id", c.b.AddDeletedID(ctx, wordID))
}

func (c *Client) RemoveDeletedID(ctx context.Context, wordID int) error {
	return c.write("remove deleted id", c.b.RemoveDeletedID(ctx, wordID))
}

func (c *Client) PackStatuses(ctx context.Context) []model.PackStatus {
	list, err := c.b.PackStatuses(ctx)
	if err != nil {
		c.readFailed("pack statuses", err)
		return nil
	}
	return list
}

func (c *Client) SetPackStatus(ctx context.Context, p model.PackStatus) error {
	return c.write("set pack status", c.b.SetPackStatus(ctx, p))
}

func (c *Client) BundleStatuses(ctx context.Context) []model.BundleStatus {
	list, err := c.b.BundleStatuses(ctx)
	if err != nil {
		c.readFailed("bundle statuses", err)
		return nil
	}
	return list
}

func (c *Client) SetBundleStatus(ctx context.Context, b model.BundleStatus) error {
	return c.write("set bundle status", c.b.SetBundleStatus(ctx, b))
}

func (c *Client) DailyProgress(ctx context.Context) *model.DailyProgress {
	p, err := c.b.DailyProgress(ctx)
	if err != nil {
		c.readFailed("daily progress", err)
		return nil
	}
	return p
}

func (c *Client) SaveDailyProgress(ctx context.Context, p model.DailyProgress) error {
	return c.write("save daily progress", c.b.SaveDailyProgress(ctx, p))
}

func (c *Client) ExtraSession(ctx context.Context) *model.ExtraWordsSession {
	s, err := c.b.ExtraSession(ctx)
	if err != nil {
		c.readFailed("extra session", err)
		return nil
	}
	return s
}

func (c *Client) SaveExtraSession(ctx context.Context, s model.ExtraWordsSession) error {
	return c.write("save extra session", c.b.SaveExtraSession(ctx, s))
}

func (c *Client) ClearExtraSession(ctx context.Context) error {
	return c.write("clear extra session", c.b.ClearExtraSession(ctx))
}

func (c *Client) ApplyPackUpgrade(ctx context.Context, u PackUpgrade) (PackUpgradeResult, error) {
	res, err := c.b.ApplyPackUpgrade(ctx, u)
	return res, c.write("apply pack upgrade", err)
}

// Export dumps all records. Unlike the typed getters it reports errors so a
// backup is never silently partial.
func (c *Client) Export(ctx context.Context) (Snapshot, error) {
	return Dump(ctx, c.b)
}

func (c *Client) Import(ctx context.Context, snap Snapshot) error {
	return c.write("import snapshot", c.b.Restore(ctx, snap))
}
