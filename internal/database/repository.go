package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nocookies/internal/agent"
)

// SettingsRepository implements settings.Store.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetBool(ctx context.Context, key string) (bool, bool, error) {
	var s Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	v, err := strconv.ParseBool(s.Value)
	if err != nil {
		return false, false, fmt.Errorf("setting %s: %w", key, err)
	}
	return v, true, nil
}

func (r *SettingsRepository) SetBool(ctx context.Context, key string, value bool) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&Setting{Key: key, Value: strconv.FormatBool(value)}).Error
}

// RunRepository implements agent.Recorder.
type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) RecordRun(ctx context.Context, o agent.Outcome) error {
	return r.db.WithContext(ctx).Create(runFromOutcome(o)).Error
}

func (r *RunRepository) ListRuns(ctx context.Context, limit, offset int) ([]ConsentRun, error) {
	var runs []ConsentRun
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Offset(offset).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func runFromOutcome(o agent.Outcome) *ConsentRun {
	trace := make([]string, 0, len(o.Trace))
	for _, s := range o.Trace {
		trace = append(trace, string(s))
	}
	return &ConsentRun{
		URL:            o.URL,
		Origin:         o.Origin,
		State:          string(o.State),
		Trace:          strings.Join(trace, ","),
		Clicks:         o.Clicks,
		TogglesOff:     o.TogglesOff,
		StorageRemoved: o.StorageRemoved,
		DurationMS:     o.Duration.Milliseconds(),
		StartedAt:      o.StartedAt,
	}
}
