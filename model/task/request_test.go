package task

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/boque/model/types"
)

func TestDecodeRequest(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expected    *Request
		shouldError bool
	}{
		{
			description: "name and command",
			input:       `{"name":"A","cmd":"sleep 1"}`,
			expected:    &Request{Name: "A", Cmd: "sleep 1"},
		},
		{
			description: "with resource",
			input:       `{"name":"train","cmd":"python train.py --gpu {{gpu}}","resource":"gpu"}`,
			expected:    &Request{Name: "train", Cmd: "python train.py --gpu {{gpu}}", Resource: "gpu"},
		},
		{
			description: "unknown fields are ignored",
			input:       `{"name":"B","cmd":"echo hi","priority":3}`,
			expected:    &Request{Name: "B", Cmd: "echo hi"},
		},
		{
			description: "not json",
			input:       `name=A`,
			shouldError: true,
		},
		{
			description: "missing name",
			input:       `{"cmd":"echo hi"}`,
			shouldError: true,
		},
		{
			description: "missing cmd",
			input:       `{"name":"A"}`,
			shouldError: true,
		},
		{
			description: "name escaping log folder",
			input:       `{"name":"../etc/passwd","cmd":"echo hi"}`,
			shouldError: true,
		},
	}

	for _, testCase := range testCases {
		actual, err := DecodeRequest([]byte(testCase.input))
		if testCase.shouldError {
			assert.Error(t, err, testCase.description)
			assert.True(t, errors.Is(err, types.ErrMalformedRequest), testCase.description)
			continue
		}
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expected, actual, testCase.description)
	}
}

type fakeProcess struct{}

func (f *fakeProcess) HasExited() (int, bool) { return 0, false }

func (f *fakeProcess) Signal(_ os.Signal) error { return nil }

func (f *fakeProcess) Pid() int { return 1 }

func TestTask_Start(t *testing.T) {
	aTask := (&Request{Name: "A", Cmd: "sleep 1"}).Task()
	assert.Equal(t, StatePending, aTask.State)
	assert.Nil(t, aTask.Process())

	assert.NoError(t, aTask.Start(&fakeProcess{}, ""))
	assert.Equal(t, StateRunning, aTask.State)
	assert.ErrorIs(t, aTask.Start(&fakeProcess{}, ""), types.ErrAlreadyStarted)

	aTask.Finish(3)
	assert.Equal(t, StateFinished, aTask.State)
	assert.Equal(t, 3, aTask.ExitCode)
	assert.True(t, aTask.State.IsTerminal())
	assert.Nil(t, aTask.Clone().Process())
}
