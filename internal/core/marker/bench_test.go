package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTime(t *testing.T) {
	t.Parallel()

	t.Run("returns last result", func(t *testing.T) {
		t.Parallel()

		calls := 0
		got := Time(func() int {
			calls++
			return calls
		}, 5)

		assert.Equal(t, 5, calls)
		assert.Equal(t, 5, got.Result)
		assert.GreaterOrEqual(t, got.Micros, 0.0)
	})

	t.Run("non positive iterations run once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		got := Time(func() string {
			calls++
			return "x"
		}, 0)

		assert.Equal(t, 1, calls)
		assert.Equal(t, "x", got.Result)
	})
}

func BenchmarkScans(b *testing.B) {
	output := "$ " + CommandStart + "some output\n" + CommandFinished + ";0\x07"
	tier := DefaultTiers()[1]

	b.Run("regex", func(b *testing.B) {
		for b.Loop() {
			_ = regexScan(output, tier)
		}
	})
	b.Run("index", func(b *testing.B) {
		for b.Loop() {
			_ = indexScan(output, tier)
		}
	})
}
