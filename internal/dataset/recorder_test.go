package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
)

func newMockRecorder(t *testing.T) (*Recorder, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectPing()
	rec, err := New(context.Background(), mock, "action_records", zap.NewNop())
	require.NoError(t, err)
	return rec, mock
}

func TestNewRequiresReachableDatabase(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	_, err = New(context.Background(), mock, "", zap.NewNop())
	assert.ErrorContains(t, err, "ping")
}

func TestNewRejectsNilPool(t *testing.T) {
	_, err := New(context.Background(), nil, "", zap.NewNop())
	assert.Error(t, err)
}

func TestEnsureSchema(t *testing.T) {
	rec, mock := newMockRecorder(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS action_records").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, rec.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordActionInsertsRow(t *testing.T) {
	rec, mock := newMockRecorder(t)

	started := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	res := &schemas.ActionResult{
		Description:        "click login.submit",
		Success:            true,
		CompletedSequences: 2,
		StartTime:          started,
		Duration:           1500 * time.Millisecond,
	}
	res.AddMatch(schemas.Match{Region: schemas.NewRegion(1, 2, 3, 4), Score: 0.9, StateName: "login", ObjectName: "submit"})

	mock.ExpectExec("INSERT INTO action_records").
		WithArgs(
			"click login.submit",
			true,
			pgxmock.AnyArg(),
			2,
			started,
			int64(1500),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, rec.RecordAction(context.Background(), res))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordActionEmptyMatchesBecomesJSONArray(t *testing.T) {
	rec, mock := newMockRecorder(t)

	res := &schemas.ActionResult{Description: "probe", StartTime: time.Now()}

	mock.ExpectExec("INSERT INTO action_records").
		WithArgs("probe", false, []byte("[]"), 0, pgxmock.AnyArg(), int64(0)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, rec.RecordAction(context.Background(), res))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordActionInsertFailure(t *testing.T) {
	rec, mock := newMockRecorder(t)

	mock.ExpectExec("INSERT INTO action_records").
		WillReturnError(errors.New("table gone"))

	err := rec.RecordAction(context.Background(), &schemas.ActionResult{Description: "x"})
	assert.ErrorContains(t, err, "insert")
}
