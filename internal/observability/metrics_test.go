package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rthefinder/USDG/internal/storage"
)

func TestObserveDBQuery_CountsOnlyRealErrors(t *testing.T) {
	start := time.Now()

	errCounter := func(op string) float64 {
		return testutil.ToFloat64(DefaultMetrics.DBQueryErrors.WithLabelValues("postgres", op))
	}

	var err error
	ObserveDBQuery("postgres", "op_ok", start, &err)
	if got := errCounter("op_ok"); got != 0 {
		t.Errorf("nil error counted as query error: %v", got)
	}

	err = storage.ErrNotFound
	ObserveDBQuery("postgres", "op_miss", start, &err)
	err = storage.ErrDuplicateKey
	ObserveDBQuery("postgres", "op_dup", start, &err)
	if got := errCounter("op_miss") + errCounter("op_dup"); got != 0 {
		t.Errorf("sentinel outcomes counted as query errors: %v", got)
	}

	err = errors.New("connection reset")
	ObserveDBQuery("postgres", "op_fail", start, &err)
	ObserveDBQuery("postgres", "op_fail", start, &err)
	if got := errCounter("op_fail"); got != 2 {
		t.Errorf("error counter = %v, want 2", got)
	}
}

func TestObserveDBQuery_NilErrorPointer(t *testing.T) {
	ObserveDBQuery("postgres", "op_nil_ptr", time.Now(), nil)
	if got := testutil.ToFloat64(DefaultMetrics.DBQueryErrors.WithLabelValues("postgres", "op_nil_ptr")); got != 0 {
		t.Errorf("nil error pointer counted as query error: %v", got)
	}
}
