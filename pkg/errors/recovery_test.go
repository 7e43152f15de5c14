package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, As(err, &panicErr), "expected PanicError, got %T", err)
	assert.Equal(t, "TestOperation", panicErr.Operation)
	assert.Equal(t, "test panic message", panicErr.PanicValue)
	assert.NotEmpty(t, panicErr.StackTrace)
	assert.Equal(t, "panic in TestOperation: test panic message", panicErr.Error())
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	assert.NoError(t, testFunc())
}

func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "panic in TestOperation"), err.Error())
	assert.True(t, strings.Contains(err.Error(), "original error"), err.Error())
	assert.True(t, Is(err, originalErr))
}

func TestRecover_ErrorPanicValueUnwraps(t *testing.T) {
	sentinel := New("sentinel")
	err := SafeExecute("op", func() error {
		panic(sentinel)
	})

	require.Error(t, err)
	assert.True(t, Is(err, sentinel))
}

func TestSafeExecute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		assert.NoError(t, SafeExecute("ok", func() error { return nil }))
	})

	t.Run("function error passes through", func(t *testing.T) {
		want := fmt.Errorf("boom")
		err := SafeExecute("fails", func() error { return want })
		assert.Equal(t, want, err)
	})

	t.Run("panic", func(t *testing.T) {
		err := SafeExecute("index", func() error {
			var s []int
			_ = s[3]
			return nil
		})
		var panicErr *PanicError
		require.True(t, As(err, &panicErr))
		assert.Equal(t, "index", panicErr.Operation)
	})
}

func BenchmarkSafeExecute_NoPanic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = SafeExecute("bench", func() error { return nil })
	}
}
