package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticationReport_NoHeader(t *testing.T) {
	data, err := json.Marshal(AuthenticationReport{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"header_present":false}`, string(data))
}

func TestAuthenticationReport_HeaderKeepsNulls(t *testing.T) {
	valid := false
	msg := "invalid JWT"
	data, err := json.Marshal(AuthenticationReport{HeaderPresent: true, ValidToken: &valid, Error: &msg})
	require.NoError(t, err)
	assert.JSONEq(t, `{"header_present":true,"valid_token":false,"user_id":null,"user_email":null,"error":"invalid JWT"}`, string(data))
}
