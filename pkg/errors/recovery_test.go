package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverPanic_Nil(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))
}

func TestRecoverPanic_Error(t *testing.T) {
	cause := errors.New("original")

	err := RecoverPanic(cause)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestRecoverPanic_String(t *testing.T) {
	err := RecoverPanic("something broke")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: something broke")
}

func TestRecoverPanic_CapturesStack(t *testing.T) {
	var err error
	func() {
		defer func() {
			err = RecoverPanic(recover())
		}()
		panic("inside")
	}()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "goroutine")
}

func TestRecoverPanicWithCallback(t *testing.T) {
	var seen error
	err := RecoverPanicWithCallback("boom", func(e error) { seen = e })

	require.Error(t, err)
	assert.Equal(t, err, seen)

	assert.Nil(t, RecoverPanicWithCallback(nil, func(e error) { t.Fatal("callback on nil") }))
}
