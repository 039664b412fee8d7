package testcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchema_AcceptsMinimalSuite(t *testing.T) {
	err := ValidateSchema([]byte(`
flow: register
cases:
  - id: fresh
    name: "fresh username registers"
    inputs:
      username: newuser
      password: Password123
      confirmPassword: Password123
    expected_state: registered
`))
	require.NoError(t, err)
}

func TestValidateSchema_RejectsNonStringExpectedState(t *testing.T) {
	err := ValidateSchema([]byte(`
flow: login
cases:
  - id: a
    name: "a"
    inputs: {}
    expected_state: 7
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected_state")
}

func TestValidateSchema_RejectsUnknownCaseField(t *testing.T) {
	err := ValidateSchema([]byte(`
flow: login
cases:
  - id: a
    name: "a"
    inputs: {}
    expected_state: done
    retries: 3
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries")
}

func TestValidateSchema_ErrorCarriesPosition(t *testing.T) {
	err := ValidateSchema([]byte(`
flow: login
cases:
  - id: "NOT OK"
    name: "bad id"
    inputs: {}
    expected_state: done
`))
	require.Error(t, err)

	var serr *SchemaError
	if assert.ErrorAs(t, err, &serr) {
		assert.True(t, serr.Pos.IsValid())
		assert.NotZero(t, serr.Pos.Line())
	}
}
