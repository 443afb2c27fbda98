package exportobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"earnings-tracker/internal/earnings"
)

type fakeExporter struct {
	path string
	err  error
}

func (f *fakeExporter) Export(_ context.Context, _ *earnings.Report, path string) error {
	f.path = path
	return f.err
}

func TestWrapPassesThrough(t *testing.T) {
	inner := &fakeExporter{}
	err := Wrap(inner).Export(context.Background(), earnings.Aggregate(nil), "out.csv")

	assert.NoError(t, err)
	assert.Equal(t, "out.csv", inner.path)
}

func TestWrapReturnsError(t *testing.T) {
	want := errors.New("disk full")
	err := Wrap(&fakeExporter{err: want}).Export(context.Background(), nil, "out.csv")

	assert.ErrorIs(t, err, want)
}
