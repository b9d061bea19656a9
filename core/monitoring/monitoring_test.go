package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordMonitor struct {
	errs    []error
	tags    []map[string]string
	flushed bool
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) { r.flushed = true }

func TestCaptureException(t *testing.T) {
	rec := &recordMonitor{}
	Init(rec)
	defer Init(NopMonitor{})

	CaptureException(nil, nil)
	CaptureException(errors.New("boom"), map[string]string{"module": "api"})
	require.Len(t, rec.errs, 1)
	assert.Equal(t, "api", rec.tags[0]["module"])

	Init(nil)
	CaptureException(errors.New("again"), nil)
	assert.Len(t, rec.errs, 2)
}

func TestRecoverRepanics(t *testing.T) {
	rec := &recordMonitor{}
	Init(rec)
	defer Init(NopMonitor{})

	assert.PanicsWithValue(t, "kaboom", func() {
		defer Recover()
		panic("kaboom")
	})
	require.Len(t, rec.errs, 1)
	assert.Equal(t, "panic: kaboom", rec.errs[0].Error())
	assert.True(t, rec.flushed)
}
