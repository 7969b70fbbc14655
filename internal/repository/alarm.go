package repository

import (
	"context"
	"database/sql"
	"fmt"

	"waguri-alarm/internal/models"

	"go.uber.org/zap"
)

// AlarmRepository 闹钟记录仓库
type AlarmRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlarmRepository 创建闹钟仓库
func NewAlarmRepository(db *sql.DB, logger *zap.Logger) *AlarmRepository {
	return &AlarmRepository{
		db:     db,
		logger: logger,
	}
}

// GetAllAlarms 获取全部闹钟（按时间排序）
func (r *AlarmRepository) GetAllAlarms(ctx context.Context) ([]models.Alarm, error) {
	query := `
		SELECT id, hour, minute, label, active, vibrate, days_of_week, challenge
		FROM alarms
		ORDER BY hour, minute, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alarms: %w", err)
	}
	defer rows.Close()

	var alarms []models.Alarm
	for rows.Next() {
		alarm, err := scanAlarm(rows)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, alarm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alarms: %w", err)
	}

	return alarms, nil
}

// GetAlarmByID 根据 ID 获取闹钟
func (r *AlarmRepository) GetAlarmByID(ctx context.Context, id int) (*models.Alarm, error) {
	if id <= 0 {
		return nil, fmt.Errorf("alarm id is required")
	}

	query := `
		SELECT id, hour, minute, label, active, vibrate, days_of_week, challenge
		FROM alarms
		WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	alarm, err := scanAlarm(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("alarm not found: %d", id)
		}
		return nil, err
	}

	return &alarm, nil
}

// InsertAlarm 插入闹钟，返回存储分配的 ID
func (r *AlarmRepository) InsertAlarm(ctx context.Context, alarm *models.Alarm) (int, error) {
	if err := validateAlarm(alarm); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO alarms (hour, minute, label, active, vibrate, days_of_week, challenge)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id int
	err := r.db.QueryRowContext(ctx, query,
		alarm.Hour,
		alarm.Minute,
		alarm.Label,
		alarm.Active,
		alarm.Vibrate,
		alarm.DaysOfWeek,
		alarm.Challenge.Encode(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alarm: %w", err)
	}

	r.logger.Debug("Inserted alarm",
		zap.Int("alarm_id", id),
		zap.Int("hour", alarm.Hour),
		zap.Int("minute", alarm.Minute),
	)

	return id, nil
}

// UpdateAlarm 更新闹钟
func (r *AlarmRepository) UpdateAlarm(ctx context.Context, alarm models.Alarm) error {
	if alarm.ID <= 0 {
		return fmt.Errorf("alarm id is required")
	}
	if err := validateAlarm(&alarm); err != nil {
		return err
	}

	query := `
		UPDATE alarms
		SET hour = $1, minute = $2, label = $3, active = $4, vibrate = $5,
		    days_of_week = $6, challenge = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		alarm.Hour,
		alarm.Minute,
		alarm.Label,
		alarm.Active,
		alarm.Vibrate,
		alarm.DaysOfWeek,
		alarm.Challenge.Encode(),
		alarm.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alarm: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alarm not found: %d", alarm.ID)
	}

	return nil
}

// DeleteAlarm 删除闹钟
// 注意：调用方必须先取消对应的平台定时器再删除记录（见 service 层）
func (r *AlarmRepository) DeleteAlarm(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("alarm id is required")
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM alarms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alarm: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alarm not found: %d", id)
	}

	return nil
}

func validateAlarm(alarm *models.Alarm) error {
	if alarm.Hour < 0 || alarm.Hour > 23 {
		return fmt.Errorf("hour out of range: %d", alarm.Hour)
	}
	if alarm.Minute < 0 || alarm.Minute > 59 {
		return fmt.Errorf("minute out of range: %d", alarm.Minute)
	}
	if alarm.Label == "" {
		alarm.Label = models.DefaultLabel
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlarm(row rowScanner) (models.Alarm, error) {
	var alarm models.Alarm
	var challenge string

	err := row.Scan(
		&alarm.ID,
		&alarm.Hour,
		&alarm.Minute,
		&alarm.Label,
		&alarm.Active,
		&alarm.Vibrate,
		&alarm.DaysOfWeek,
		&challenge,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Alarm{}, err
		}
		return models.Alarm{}, fmt.Errorf("failed to scan alarm: %w", err)
	}

	// 未知或损坏的编码解码为 None，不报错
	alarm.Challenge = models.DecodeChallenge(challenge)
	return alarm, nil
}
