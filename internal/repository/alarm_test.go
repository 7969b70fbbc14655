package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"waguri-alarm/internal/models"
)

func setupMockAlarmDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *AlarmRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := NewAlarmRepository(db, logger)

	return db, mock, repo
}

func alarmColumns() []string {
	return []string{"id", "hour", "minute", "label", "active", "vibrate", "days_of_week", "challenge"}
}

// ============================================
// 查询测试
// ============================================

func TestGetAllAlarms_Success(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	rows := sqlmock.NewRows(alarmColumns()).
		AddRow(1, 7, 0, "Wake up", true, true, "", "Shake|5").
		AddRow(2, 22, 30, "Sleep reminder", false, false, "1,2,3", "None")

	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	alarms, err := repo.GetAllAlarms(context.Background())

	require.NoError(t, err)
	require.Len(t, alarms, 2)
	assert.Equal(t, 1, alarms[0].ID)
	assert.Equal(t, 7, alarms[0].Hour)
	assert.Equal(t, models.ChallengeShake, alarms[0].Challenge.Kind)
	assert.Equal(t, 5, alarms[0].Challenge.ShakesRequired)
	assert.Equal(t, "1,2,3", alarms[1].DaysOfWeek)
	assert.Equal(t, models.ChallengeNone, alarms[1].Challenge.Kind)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAlarmByID_Success(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	rows := sqlmock.NewRows(alarmColumns()).
		AddRow(3, 6, 45, "Alarm", true, true, "", "Math|HARD")

	mock.ExpectQuery(`SELECT`).WithArgs(3).WillReturnRows(rows)

	alarm, err := repo.GetAlarmByID(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 3, alarm.ID)
	assert.Equal(t, models.ChallengeMath, alarm.Challenge.Kind)
	assert.Equal(t, models.MathHard, alarm.Challenge.Difficulty)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAlarmByID_NotFound(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WithArgs(99).WillReturnError(sql.ErrNoRows)

	alarm, err := repo.GetAlarmByID(context.Background(), 99)

	assert.Error(t, err)
	assert.Nil(t, alarm)
	assert.Contains(t, err.Error(), "not found")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAlarmByID_InvalidID(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	alarm, err := repo.GetAlarmByID(context.Background(), 0)

	assert.Error(t, err)
	assert.Nil(t, alarm)
	assert.Contains(t, err.Error(), "alarm id is required")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAlarmByID_CorruptChallengeDecodesToNone(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	// 持久化数据中的未知编码必须解码为 None，不报错
	rows := sqlmock.NewRows(alarmColumns()).
		AddRow(4, 8, 0, "Alarm", true, true, "", "Puzzle|9000")

	mock.ExpectQuery(`SELECT`).WithArgs(4).WillReturnRows(rows)

	alarm, err := repo.GetAlarmByID(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, models.ChallengeNone, alarm.Challenge.Kind)

	require.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// 写入测试
// ============================================

func TestInsertAlarm_Success(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	alarm := models.NewAlarm(7, 0)
	alarm.Label = "Wake up"
	alarm.Challenge = models.Challenge{Kind: models.ChallengeShake, ShakesRequired: 5}

	mock.ExpectQuery(`INSERT INTO alarms`).
		WithArgs(7, 0, "Wake up", true, true, "", "Shake|5").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := repo.InsertAlarm(context.Background(), &alarm)

	require.NoError(t, err)
	assert.Equal(t, 42, id)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAlarm_DefaultLabel(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	alarm := models.NewAlarm(9, 15)
	alarm.Label = ""

	mock.ExpectQuery(`INSERT INTO alarms`).
		WithArgs(9, 15, "Alarm", true, true, "", "None").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	_, err := repo.InsertAlarm(context.Background(), &alarm)

	require.NoError(t, err)
	assert.Equal(t, "Alarm", alarm.Label)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAlarm_InvalidTime(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	alarm := models.NewAlarm(24, 0)

	_, err := repo.InsertAlarm(context.Background(), &alarm)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "hour out of range")

	alarm = models.NewAlarm(7, 60)
	_, err = repo.InsertAlarm(context.Background(), &alarm)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "minute out of range")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAlarm_Success(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	alarm := models.NewAlarm(7, 30)
	alarm.ID = 5
	alarm.Active = false

	mock.ExpectExec(`UPDATE alarms`).
		WithArgs(7, 30, "Alarm", false, true, "", "None", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateAlarm(context.Background(), alarm)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAlarm_NotFound(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	alarm := models.NewAlarm(7, 30)
	alarm.ID = 77

	mock.ExpectExec(`UPDATE alarms`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAlarm(context.Background(), alarm)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAlarm_Success(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM alarms`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DeleteAlarm(context.Background(), 5)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAlarm_InvalidID(t *testing.T) {
	db, mock, repo := setupMockAlarmDB(t)
	defer db.Close()

	err := repo.DeleteAlarm(context.Background(), -1)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "alarm id is required")

	require.NoError(t, mock.ExpectationsWereMet())
}
