package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLoggerWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}) })

	ctx := context.Background()
	query := func() (string, int64) { return "SELECT * FROM contents", 0 }
	l := NewGormLogger(gormlogger.Warn)

	l.Trace(ctx, time.Now(), query, errors.New("relation does not exist"))
	assert.Contains(t, buf.String(), `"component":"gorm"`)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "SELECT * FROM contents")

	buf.Reset()
	l.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), query, nil)
	l.Info(ctx, "ignored at warn level")
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	assert.Contains(t, buf.String(), "slow query")

	buf.Reset()
	l.LogMode(gormlogger.Silent).Error(ctx, "silenced")
	assert.Empty(t, buf.String())
}
